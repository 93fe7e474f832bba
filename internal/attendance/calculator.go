package attendance

import "math"

// Zone is the qualitative bucket of a subject's attendance relative to its minimum.
type Zone string

const (
	ZoneDanger  Zone = "danger"
	ZoneWarning Zone = "warning"
	ZoneSafe    Zone = "safe"
)

const (
	// DefaultMinimumAttendance is applied when a subject is created without a minimum.
	DefaultMinimumAttendance = 75

	// WarningMargin is the number of points above the minimum that still counts as warning.
	WarningMargin = 5

	// BunkReferencePercent is the fixed threshold used for bunkable classes.
	// It does not follow the subject's configured minimum.
	BunkReferencePercent = 75
)

// Observation is the computed view of a subject at a point in time.
// It is recomputed on every read and never stored.
type Observation struct {
	Percentage           int     `json:"percentage"`
	PercentageOneDecimal float64 `json:"percentage_one_decimal"`
	Zone                 Zone    `json:"zone"`
	ClassesNeeded        int     `json:"classes_needed"`
	BunkableClasses      int     `json:"bunkable_classes"`
}

// Evaluate computes percentage, zone, classes needed and bunkable classes.
//
// Negative counts are clamped to zero and the minimum is clamped into 0..100.
// attended > total is not rejected: the percentage simply exceeds 100.
func Evaluate(attended, total, minimumAttendance int) Observation {
	attended = max(attended, 0)
	total = max(total, 0)
	minimumAttendance = ClampMinimum(minimumAttendance)

	obs := Observation{
		Percentage:           Percentage(attended, total),
		PercentageOneDecimal: PercentageOneDecimal(attended, total),
	}
	obs.Zone = Classify(float64(obs.Percentage), minimumAttendance)

	if obs.Zone == ZoneDanger {
		obs.ClassesNeeded = ClassesNeeded(attended, total, minimumAttendance)
	}
	if obs.Percentage > BunkReferencePercent {
		obs.BunkableClasses = BunkableClasses(attended, total)
	}
	return obs
}

// Percentage returns attended/total as a whole percentage, rounded half up.
func Percentage(attended, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(float64(attended)/float64(total)*100) + 0.5))
}

// PercentageOneDecimal returns attended/total as a percentage rounded half up to one decimal.
// It rounds the unrounded percentage times ten, not Percentage, and the
// percentage is scaled by 100 before the 10 so .x5 boundaries round the same way.
func PercentageOneDecimal(attended, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(attended) / float64(total) * 100
	// The explicit conversion keeps the compiler from fusing the multiply-add.
	return math.Floor(float64(pct*10)+0.5) / 10
}

// Classify buckets a percentage against a minimum.
func Classify(percentage float64, minimumAttendance int) Zone {
	switch {
	case percentage < float64(minimumAttendance):
		return ZoneDanger
	case percentage < float64(minimumAttendance+WarningMargin):
		return ZoneWarning
	default:
		return ZoneSafe
	}
}

// ClassesNeeded is the number of consecutive attended classes required so that
// (attended+k)/(total+k) reaches minimumAttendance percent.
func ClassesNeeded(attended, total, minimumAttendance int) int {
	if minimumAttendance >= 100 {
		if attended > total {
			return 0
		}
		return total + 1 - attended
	}

	num := minimumAttendance*total - 100*attended
	if num <= 0 {
		return 0
	}
	den := 100 - minimumAttendance
	return (num + den - 1) / den
}

// BunkableClasses is the number of further classes that can be missed while
// attended/(total+k) stays at or above BunkReferencePercent.
func BunkableClasses(attended, total int) int {
	// (attended - 0.75*total) / 0.75 == (4*attended - 3*total) / 3
	num := 4*attended - 3*total
	if num <= 0 {
		return 0
	}
	return num / 3
}

// ClampMinimum forces a minimum attendance into 0..100.
func ClampMinimum(minimumAttendance int) int {
	return min(max(minimumAttendance, 0), 100)
}
