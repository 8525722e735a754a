package timecard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/timecard-engine/timecard"
	"github.com/warp/timecard-engine/timecard/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func clk(s string) *timecard.ClockTime {
	return timecard.MustParseClockTime(s).Ptr()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got, fmt.Sprint(msgAndArgs...))
}

func hourly(rate string) timecard.PayConfig {
	return timecard.PayConfig{
		PayRate:      dec(rate),
		TimeType:     timecard.TimeTypeHourly,
		DefaultBreak: 30 * time.Minute,
		GracePeriod:  5 * time.Minute,
	}
}

func daily(rate string) timecard.PayConfig {
	cfg := hourly(rate)
	cfg.TimeType = timecard.TimeTypeDaily
	return cfg
}

func march(day int) timecard.Date {
	return timecard.NewDate(2025, time.March, day)
}

// testEngine is an engine over an in-memory store with a deterministic
// clock and sequential IDs.
type testEngine struct {
	*timecard.Engine
	store *store.TxMemory
	now   time.Time
}

func newTestEngine(t *testing.T, opts ...timecard.Option) *testEngine {
	t.Helper()
	te := &testEngine{
		store: store.NewTxMemory(),
		now:   time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC),
	}
	seq := 0
	base := []timecard.Option{
		timecard.WithClock(func() time.Time {
			te.now = te.now.Add(time.Second)
			return te.now
		}),
		timecard.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
	}
	te.Engine = timecard.NewEngine(te.store, append(base, opts...)...)
	return te
}

// startWeek opens a three-day hourly timecard (March 10-12, 2025) at 20/h.
func (te *testEngine) startWeek(t *testing.T) *timecard.Header {
	t.Helper()
	rate := dec("20")
	h, err := te.StartPeriod(context.Background(), timecard.StartPeriodInput{
		WorkerID:  "worker-1",
		ProjectID: "project-1",
		Start:     march(10),
		End:       march(12),
		PayRate:   &rate,
		TimeType:  timecard.TimeTypeHourly,
	})
	require.NoError(t, err)
	return h
}

func (te *testEngine) edit(t *testing.T, id timecard.HeaderID, action timecard.ActionType, reason string, changes map[string]any) *timecard.EditResult {
	t.Helper()
	res, err := te.ApplyEdit(context.Background(), id, timecard.EditInput{
		Changes:    changes,
		Actor:      "worker-1",
		ActionType: action,
		Reason:     reason,
	})
	require.NoError(t, err)
	return res
}

// fillWeek records two complete days on a fresh draft.
func (te *testEngine) fillWeek(t *testing.T, id timecard.HeaderID) {
	t.Helper()
	te.edit(t, id, timecard.ActionSelfEdit, "", map[string]any{
		"day_0": map[string]any{
			"check_in_time":    "09:00",
			"break_start_time": "12:00",
			"break_end_time":   "12:30",
			"check_out_time":   "17:00",
		},
		"day_1": map[string]any{
			"check_in_time":  "09:00",
			"check_out_time": "17:00",
		},
	})
}

func (te *testEngine) auditCount(t *testing.T, id timecard.HeaderID) int {
	t.Helper()
	entries, err := te.store.ListAudit(context.Background(), timecard.AuditFilter{HeaderID: &id})
	require.NoError(t, err)
	return len(entries)
}

func (te *testEngine) transition(t *testing.T, id timecard.HeaderID, to timecard.Status, reason string) *timecard.Header {
	t.Helper()
	h, err := te.TransitionStatus(context.Background(), id, to, "admin-1", reason)
	require.NoError(t, err)
	return h
}
