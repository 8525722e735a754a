package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncEditApplied()
		m.IncEditEmpty()
		m.IncEditRejected("InvalidSequence")
		m.AddAuditEntries("self_edit", 3)
		m.IncTransition("draft", "submitted")
		m.ObserveRecompute(time.Now())
	})
}

func TestMetricsAreRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncEditApplied()
	m.IncEditRejected("")
	m.AddAuditEntries("rejection_edit", 2)
	m.AddAuditEntries("rejection_edit", 0)
	m.ObserveRecompute(time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EditsApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EditsRejected.WithLabelValues("internal")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuditEntries.WithLabelValues("rejection_edit")))

	n, err := testutil.GatherAndCount(reg, "timecard_recompute_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
