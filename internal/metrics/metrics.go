package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	AttendanceMarks  *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	RecordsPersisted prometheus.Counter
	RecordFailures   prometheus.Counter
	ActiveSessions   prometheus.GaugeFunc
	requestDuration  *prometheus.HistogramVec
}

// New registers collectors on a fresh registry. sessions reports the number of
// live notifier sessions and may be nil.
func New(sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		AttendanceMarks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bunkmate_attendance_marks_total",
			Help: "Attendance actions recorded, by outcome.",
		}, []string{"outcome"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bunkmate_zone_notifications_total",
			Help: "Zone notifications emitted, by kind.",
		}, []string{"kind"}),
		RecordsPersisted: f.NewCounter(prometheus.CounterOpts{
			Name: "bunkmate_attendance_records_persisted_total",
			Help: "Attendance records written by the record worker.",
		}),
		RecordFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "bunkmate_attendance_record_failures_total",
			Help: "Attendance record writes that failed and were re-queued.",
		}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bunkmate_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	if sessions != nil {
		m.ActiveSessions = f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "bunkmate_notifier_sessions",
			Help: "Sessions holding zone memory.",
		}, func() float64 { return float64(sessions()) })
	}
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware observes request latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
