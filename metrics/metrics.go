package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	EntriesSubmitted        prometheus.Counter
	ValidationFailures      *prometheus.CounterVec
	PapaDuplicatesCollapsed prometheus.Counter
	PublishFailures         prometheus.Counter
	SnapshotExports         *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EntriesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partybets_entries_submitted_total",
			Help: "Entries committed to storage.",
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partybets_validation_failures_total",
			Help: "Rejected submissions by violated rule.",
		}, []string{"kind"}),
		PapaDuplicatesCollapsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partybets_papa_duplicates_collapsed_total",
			Help: "Duplicate game 1 picks dropped before storage.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "partybets_event_publish_failures_total",
			Help: "entry.submitted events that could not be published.",
		}),
		SnapshotExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partybets_snapshot_exports_total",
			Help: "Snapshot export runs by result.",
		}, []string{"result"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "partybets_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.EntriesSubmitted,
		m.ValidationFailures,
		m.PapaDuplicatesCollapsed,
		m.PublishFailures,
		m.SnapshotExports,
		m.HTTPRequestDuration,
	)
	return m
}

func (m *Metrics) EntrySubmitted() {
	if m == nil {
		return
	}
	m.EntriesSubmitted.Inc()
}

func (m *Metrics) ValidationFailed(kind string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) DuplicatesCollapsed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PapaDuplicatesCollapsed.Add(float64(n))
}

func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}

func (m *Metrics) SnapshotExported(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SnapshotExports.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
