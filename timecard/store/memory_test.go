package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timecard-engine/timecard"
	"github.com/warp/timecard-engine/timecard/store"
)

func day(d int) timecard.Date {
	return timecard.NewDate(2025, time.March, d)
}

func seedHeader(t *testing.T, s *store.TxMemory) timecard.Header {
	t.Helper()
	h := timecard.Header{
		ID:       "h1",
		WorkerID: "worker-1",
		Period:   timecard.Period{Start: day(10), End: day(12)},
		Status:   timecard.StatusDraft,
	}
	require.NoError(t, s.CreateHeader(context.Background(), h))
	return h
}

func TestMemory_HeaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewTxMemory()
	h := seedHeader(t, s)

	got, err := s.GetHeader(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.WorkerID, got.WorkerID)

	assert.Error(t, s.CreateHeader(ctx, h), "duplicate header id")

	_, err = s.GetHeader(ctx, "missing")
	assert.ErrorIs(t, err, timecard.ErrNotFound)
	assert.ErrorIs(t, s.SaveHeader(ctx, timecard.Header{ID: "missing"}), timecard.ErrNotFound)
}

func TestMemory_SaveEntriesKeepsDateOrder(t *testing.T) {
	ctx := context.Background()
	s := store.NewTxMemory()
	h := seedHeader(t, s)

	require.NoError(t, s.SaveEntries(ctx, []timecard.DailyEntry{
		{ID: "e3", HeaderID: h.ID, WorkDate: day(12)},
		{ID: "e1", HeaderID: h.ID, WorkDate: day(10)},
		{ID: "e2", HeaderID: h.ID, WorkDate: day(11)},
	}))

	// Upsert by id
	in := timecard.MustParseClockTime("09:00")
	require.NoError(t, s.SaveEntries(ctx, []timecard.DailyEntry{{ID: "e2", HeaderID: h.ID, WorkDate: day(11), CheckIn: &in}}))

	entries, err := s.ListEntries(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []timecard.EntryID{"e1", "e2", "e3"}, []timecard.EntryID{entries[0].ID, entries[1].ID, entries[2].ID})
	require.NotNil(t, entries[1].CheckIn)
	assert.Equal(t, in, *entries[1].CheckIn)
}

func TestMemory_SaveEntriesIsAllOrNothing(t *testing.T) {
	// GIVEN: A stored entry for March 10
	// WHEN: A batch adds March 11 and a second, different entry for March 10
	// THEN: DuplicateDay, and March 11 was not stored either

	ctx := context.Background()
	s := store.NewTxMemory()
	h := seedHeader(t, s)
	require.NoError(t, s.SaveEntries(ctx, []timecard.DailyEntry{{ID: "e1", HeaderID: h.ID, WorkDate: day(10)}}))

	err := s.SaveEntries(ctx, []timecard.DailyEntry{
		{ID: "e2", HeaderID: h.ID, WorkDate: day(11)},
		{ID: "other", HeaderID: h.ID, WorkDate: day(10)},
	})
	assert.ErrorIs(t, err, timecard.ErrDuplicateDay)
	assert.Equal(t, timecard.KindDuplicateDay, timecard.KindOf(err))
	var tcErr *timecard.Error
	require.ErrorAs(t, err, &tcErr)
	require.NotNil(t, tcErr.WorkDate)
	assert.Equal(t, "2025-03-10", tcErr.WorkDate.String())

	entries, err := s.ListEntries(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	err = s.SaveEntries(ctx, []timecard.DailyEntry{{ID: "x", HeaderID: "missing", WorkDate: day(10)}})
	assert.ErrorIs(t, err, timecard.ErrNotFound)
}

func TestTxMemory_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := store.NewTxMemory()
	h := seedHeader(t, s)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx timecard.Store) error {
		if err := tx.SaveEntries(ctx, []timecard.DailyEntry{{ID: "e1", HeaderID: h.ID, WorkDate: day(10)}}); err != nil {
			return err
		}
		if err := tx.AppendAudit(ctx, []timecard.AuditLogEntry{{ID: "a1", HeaderID: h.ID}}); err != nil {
			return err
		}
		updated := h
		updated.AdminNotes = "changed"
		if err := tx.SaveHeader(ctx, updated); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, _ := s.ListEntries(ctx, h.ID)
	assert.Empty(t, entries)
	audit, _ := s.ListAudit(ctx, timecard.AuditFilter{})
	assert.Empty(t, audit)
	got, _ := s.GetHeader(ctx, h.ID)
	assert.Empty(t, got.AdminNotes)
}

func TestTxMemory_CommitOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := store.NewTxMemory()
	h := seedHeader(t, s)

	require.NoError(t, s.WithTx(ctx, func(tx timecard.Store) error {
		return tx.AppendAudit(ctx, []timecard.AuditLogEntry{
			{ID: "a1", HeaderID: h.ID, ChangeID: "c1", ActionType: timecard.ActionSelfEdit},
			{ID: "a2", HeaderID: h.ID, ChangeID: "c1", ActionType: timecard.ActionSelfEdit},
			{ID: "a3", HeaderID: h.ID, ChangeID: "c2", ActionType: timecard.ActionStatusChange},
		})
	}))

	change := timecard.ChangeID("c1")
	byChange, err := s.ListAudit(ctx, timecard.AuditFilter{ChangeID: &change})
	require.NoError(t, err)
	assert.Len(t, byChange, 2)

	byAction, err := s.ListAudit(ctx, timecard.AuditFilter{Actions: []timecard.ActionType{timecard.ActionStatusChange}})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, timecard.AuditID("a3"), byAction[0].ID)
}
