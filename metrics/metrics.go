// Package metrics holds the Prometheus instrumentation of the timecard engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	EditsApplied      prometheus.Counter
	EditsEmpty        prometheus.Counter
	EditsRejected     *prometheus.CounterVec
	AuditEntries      *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EditsApplied: f.NewCounter(prometheus.CounterOpts{
			Name: "timecard_edits_applied_total",
			Help: "Edit batches committed with at least one change",
		}),
		EditsEmpty: f.NewCounter(prometheus.CounterOpts{
			Name: "timecard_edits_empty_total",
			Help: "Edit batches that resolved to no change",
		}),
		EditsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timecard_edits_rejected_total",
			Help: "Edit batches aborted, by error kind",
		}, []string{"kind"}),
		AuditEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timecard_audit_entries_total",
			Help: "Audit log entries written, by action type",
		}, []string{"action_type"}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "timecard_status_transitions_total",
			Help: "Status transitions committed",
		}, []string{"from", "to"}),
		RecomputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "timecard_recompute_duration_seconds",
			Help:    "Time spent recomputing header totals",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncEditApplied() {
	if m == nil {
		return
	}
	m.EditsApplied.Inc()
}

func (m *Metrics) IncEditEmpty() {
	if m == nil {
		return
	}
	m.EditsEmpty.Inc()
}

func (m *Metrics) IncEditRejected(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "internal"
	}
	m.EditsRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddAuditEntries(actionType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.AuditEntries.WithLabelValues(actionType).Add(float64(n))
}

func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

// ObserveRecompute records the time since start.
func (m *Metrics) ObserveRecompute(start time.Time) {
	if m == nil {
		return
	}
	m.RecomputeDuration.Observe(time.Since(start).Seconds())
}
