package alert

import (
	"fmt"
	"strconv"

	"github.com/bunkmate/bunkmate-backend/internal/attendance"
)

// Kind identifies which zone a notification announces.
type Kind string

const (
	KindDanger  Kind = "danger"
	KindWarning Kind = "warning"
)

// Event is emitted when a subject enters the danger or warning zone.
type Event struct {
	Kind              Kind    `json:"kind"`
	SubjectID         string  `json:"subject_id"`
	SubjectName       string  `json:"subject_name"`
	Percentage        float64 `json:"percentage"`
	MinimumAttendance int     `json:"minimum_attendance"`
}

// Title is the short headline shown with the notification.
func (e Event) Title() string {
	if e.Kind == KindDanger {
		return "Danger zone!"
	}
	return "Warning!"
}

// Message is the notification body.
func (e Event) Message() string {
	pct := strconv.FormatFloat(e.Percentage, 'f', -1, 64)
	if e.Kind == KindDanger {
		return fmt.Sprintf("You are BELOW the minimum attendance in %s (%s%%/%d%%).",
			e.SubjectName, pct, e.MinimumAttendance)
	}
	return fmt.Sprintf("Your attendance in %s is getting close to the minimum (%s%%/%d%%).",
		e.SubjectName, pct, e.MinimumAttendance)
}

// Notifier remembers the last zone seen per subject and decides when a
// zone change should be announced.
//
// A Notifier is not safe for concurrent use. Observations for one subject must
// arrive in the order the underlying percentage changes happened.
type Notifier struct {
	memory map[string]attendance.Zone
}

// NewNotifier returns a Notifier with empty zone memory.
func NewNotifier() *Notifier {
	return &Notifier{memory: make(map[string]attendance.Zone)}
}

// Observe classifies the percentage and returns an event when the subject moved
// into danger or warning. Moving into safe updates memory silently.
// An empty subject id is ignored.
func (n *Notifier) Observe(subjectID, subjectName string, percentage float64, minimumAttendance int) *Event {
	if subjectID == "" {
		return nil
	}

	zone := attendance.Classify(percentage, minimumAttendance)
	if last, ok := n.memory[subjectID]; ok && last == zone {
		return nil
	}
	n.memory[subjectID] = zone

	var kind Kind
	switch zone {
	case attendance.ZoneDanger:
		kind = KindDanger
	case attendance.ZoneWarning:
		kind = KindWarning
	default:
		return nil
	}

	return &Event{
		Kind:              kind,
		SubjectID:         subjectID,
		SubjectName:       subjectName,
		Percentage:        percentage,
		MinimumAttendance: minimumAttendance,
	}
}

// Zone returns the last recorded zone for a subject.
func (n *Notifier) Zone(subjectID string) (attendance.Zone, bool) {
	z, ok := n.memory[subjectID]
	return z, ok
}

// Forget drops the memory for a subject, e.g. after it is deleted.
func (n *Notifier) Forget(subjectID string) {
	delete(n.memory, subjectID)
}

// Len returns the number of subjects with a recorded zone.
func (n *Notifier) Len() int {
	return len(n.memory)
}
