package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/warp/timecard-engine/timecard"
)

type SQLiteSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	now   time.Time
}

func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteSuite))
}

func (s *SQLiteSuite) SetupTest() {
	store, err := New(":memory:")
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
	s.now = time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
}

func (s *SQLiteSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *SQLiteSuite) day(d int) timecard.Date {
	return timecard.NewDate(2025, time.March, d)
}

func (s *SQLiteSuite) header() timecard.Header {
	h := timecard.Header{
		ID:        "h1",
		WorkerID:  "worker-1",
		ProjectID: "project-1",
		Period:    timecard.Period{Start: s.day(10), End: s.day(12)},
		Status:    timecard.StatusDraft,
		PayRate:   decimal.RequireFromString("22.50"),
		TimeType:  timecard.TimeTypeHourly,
		Totals:    timecard.RecomputeTotals(nil),
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.store.CreateHeader(s.ctx, h))
	return h
}

func (s *SQLiteSuite) TestHeaderRoundTrip() {
	h := s.header()

	got, err := s.store.GetHeader(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Equal(h.WorkerID, got.WorkerID)
	s.Equal(h.ProjectID, got.ProjectID)
	s.Equal("2025-03-10", got.Period.Start.String())
	s.Equal("2025-03-12", got.Period.End.String())
	s.True(h.PayRate.Equal(got.PayRate))
	s.Equal(timecard.TimeTypeHourly, got.TimeType)
	s.True(got.CreatedAt.Equal(s.now))
	s.Nil(got.ApprovedBy)

	approver := timecard.ActorID("admin-1")
	reason := "late"
	got.Status = timecard.StatusApproved
	got.ApprovedAt = &s.now
	got.ApprovedBy = &approver
	got.RejectionReason = &reason
	got.AdminNotes = "checked"
	got.AdminEdited = true
	got.Totals.TotalPay = decimal.RequireFromString("310.00")
	s.Require().NoError(s.store.SaveHeader(s.ctx, *got))

	again, err := s.store.GetHeader(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Equal(timecard.StatusApproved, again.Status)
	s.Require().NotNil(again.ApprovedBy)
	s.Equal(approver, *again.ApprovedBy)
	s.Equal("checked", again.AdminNotes)
	s.True(again.AdminEdited)
	s.True(again.Totals.TotalPay.Equal(decimal.RequireFromString("310")))
}

func (s *SQLiteSuite) TestHeaderNotFound() {
	_, err := s.store.GetHeader(s.ctx, "missing")
	s.ErrorIs(err, timecard.ErrNotFound)
	s.ErrorIs(s.store.SaveHeader(s.ctx, timecard.Header{ID: "missing"}), timecard.ErrNotFound)
}

func (s *SQLiteSuite) TestEntriesUpsertAndOrder() {
	h := s.header()
	in := timecard.NewClockTime(9, 0)
	out := timecard.NewClockTime(17, 30)

	s.Require().NoError(s.store.SaveEntries(s.ctx, []timecard.DailyEntry{
		{ID: "e2", HeaderID: h.ID, WorkDate: s.day(11), UpdatedAt: s.now},
		{ID: "e1", HeaderID: h.ID, WorkDate: s.day(10), CheckIn: &in, CheckOut: &out,
			HoursWorked: decimal.RequireFromString("8.5"), DailyPay: decimal.RequireFromString("191.25"), UpdatedAt: s.now},
	}))
	s.Require().NoError(s.store.SaveEntries(s.ctx, []timecard.DailyEntry{
		{ID: "e2", HeaderID: h.ID, WorkDate: s.day(11), CheckIn: &in, UpdatedAt: s.now},
	}))

	entries, err := s.store.ListEntries(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(timecard.EntryID("e1"), entries[0].ID)
	s.Require().NotNil(entries[0].CheckOut)
	s.Equal(out, *entries[0].CheckOut)
	s.Nil(entries[0].BreakStart)
	s.True(entries[0].DailyPay.Equal(decimal.RequireFromString("191.25")))
	s.Require().NotNil(entries[1].CheckIn)
	s.Nil(entries[1].CheckOut)
}

func (s *SQLiteSuite) TestEntriesDuplicateDay() {
	h := s.header()
	s.Require().NoError(s.store.SaveEntries(s.ctx, []timecard.DailyEntry{
		{ID: "e1", HeaderID: h.ID, WorkDate: s.day(10), UpdatedAt: s.now},
	}))

	err := s.store.SaveEntries(s.ctx, []timecard.DailyEntry{
		{ID: "e2", HeaderID: h.ID, WorkDate: s.day(11), UpdatedAt: s.now},
		{ID: "e3", HeaderID: h.ID, WorkDate: s.day(10), UpdatedAt: s.now},
	})
	s.ErrorIs(err, timecard.ErrDuplicateDay)
	var tcErr *timecard.Error
	s.Require().ErrorAs(err, &tcErr)
	s.Equal(timecard.KindDuplicateDay, tcErr.Kind)
	s.Require().NotNil(tcErr.WorkDate)
	s.Equal("2025-03-10", tcErr.WorkDate.String())

	entries, err := s.store.ListEntries(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Len(entries, 1, "the failed batch left nothing behind")

	err = s.store.SaveEntries(s.ctx, []timecard.DailyEntry{
		{ID: "e9", HeaderID: "missing", WorkDate: s.day(10), UpdatedAt: s.now},
	})
	s.ErrorIs(err, timecard.ErrNotFound)
}

func (s *SQLiteSuite) TestCorruptTimestampsAreReported() {
	// GIVEN: Rows whose timestamps were written outside the store
	// WHEN: Reading them back
	// THEN: The read fails instead of returning a zero time

	h := s.header()
	s.Require().NoError(s.store.SaveEntries(s.ctx, []timecard.DailyEntry{
		{ID: "e1", HeaderID: h.ID, WorkDate: s.day(10), UpdatedAt: s.now},
	}))
	_, err := s.store.db.ExecContext(s.ctx, `INSERT INTO audit_log
		(id, header_id, change_id, field, changed_by, changed_at, action_type)
		VALUES ('a1', 'h1', 'c1', 'check_in', 'admin-1', 'yesterday', 'self_edit')`)
	s.Require().NoError(err)

	_, err = s.store.ListAudit(s.ctx, timecard.AuditFilter{HeaderID: &h.ID})
	s.ErrorContains(err, "changed_at")

	_, err = s.store.db.ExecContext(s.ctx, "UPDATE daily_entries SET updated_at = 'soon' WHERE id = 'e1'")
	s.Require().NoError(err)
	_, err = s.store.ListEntries(s.ctx, h.ID)
	s.ErrorContains(err, "updated_at")

	_, err = s.store.db.ExecContext(s.ctx, "UPDATE timecard_headers SET submitted_at = 'never' WHERE id = 'h1'")
	s.Require().NoError(err)
	_, err = s.store.GetHeader(s.ctx, h.ID)
	s.ErrorContains(err, "submitted_at")
}

func (s *SQLiteSuite) TestAuditIsAppendOnly() {
	h := s.header()
	d := s.day(10)
	oldVal, newVal := "09:00", "09:30"
	s.Require().NoError(s.store.AppendAudit(s.ctx, []timecard.AuditLogEntry{
		{ID: "a1", HeaderID: h.ID, ChangeID: "c1", Field: timecard.FieldCheckIn, OldValue: &oldVal, NewValue: &newVal,
			ChangedBy: "admin-1", ChangedAt: s.now, ActionType: timecard.ActionRejectionEdit, WorkDate: &d, Reason: "badge"},
		{ID: "a2", HeaderID: h.ID, ChangeID: "c2", Field: timecard.FieldStatus, NewValue: &newVal,
			ChangedBy: "admin-1", ChangedAt: s.now.Add(time.Minute), ActionType: timecard.ActionStatusChange},
	}))

	_, err := s.store.db.ExecContext(s.ctx, "UPDATE audit_log SET reason = 'tampered' WHERE id = 'a1'")
	s.Error(err)
	_, err = s.store.db.ExecContext(s.ctx, "DELETE FROM audit_log WHERE id = 'a1'")
	s.Error(err)

	all, err := s.store.ListAudit(s.ctx, timecard.AuditFilter{HeaderID: &h.ID})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(timecard.AuditID("a1"), all[0].ID)
	s.Equal("badge", all[0].Reason)
	s.Require().NotNil(all[0].WorkDate)
	s.Equal("2025-03-10", all[0].WorkDate.String())
	s.Nil(all[1].WorkDate)
	s.Nil(all[1].OldValue)

	from := s.now.Add(30 * time.Second)
	later, err := s.store.ListAudit(s.ctx, timecard.AuditFilter{From: &from})
	s.Require().NoError(err)
	s.Require().Len(later, 1)
	s.Equal(timecard.AuditID("a2"), later[0].ID)

	edits, err := s.store.ListAudit(s.ctx, timecard.AuditFilter{Actions: []timecard.ActionType{timecard.ActionRejectionEdit}})
	s.Require().NoError(err)
	s.Len(edits, 1)
}

func (s *SQLiteSuite) TestWithTxRollsBack() {
	h := s.header()
	boom := errors.New("boom")

	err := s.store.WithTx(s.ctx, func(tx timecard.Store) error {
		if err := tx.SaveEntries(s.ctx, []timecard.DailyEntry{{ID: "e1", HeaderID: h.ID, WorkDate: s.day(10), UpdatedAt: s.now}}); err != nil {
			return err
		}
		updated, err := tx.GetHeader(s.ctx, h.ID)
		if err != nil {
			return err
		}
		updated.Status = timecard.StatusSubmitted
		if err := tx.SaveHeader(s.ctx, *updated); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	entries, err := s.store.ListEntries(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Empty(entries)
	got, err := s.store.GetHeader(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Equal(timecard.StatusDraft, got.Status)
}

func (s *SQLiteSuite) TestProjectConfig() {
	_, found, err := s.store.ProjectConfigJSON(s.ctx, "project-1")
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(s.store.SaveProjectConfig(s.ctx, "project-1", `{"pay_rate":"20"}`))
	s.Require().NoError(s.store.SaveProjectConfig(s.ctx, "project-1", `{"pay_rate":"25"}`))

	raw, found, err := s.store.ProjectConfigJSON(s.ctx, "project-1")
	s.Require().NoError(err)
	s.True(found)
	s.JSONEq(`{"pay_rate":"25"}`, raw)
}

func (s *SQLiteSuite) TestEngineOverSQLite() {
	// GIVEN: An engine backed by SQLite
	// WHEN: A timecard is started, edited and submitted
	// THEN: Entries, totals and audit rows all survive the round trip

	engine := timecard.NewEngine(s.store)
	rate := decimal.RequireFromString("20")
	h, err := engine.StartPeriod(s.ctx, timecard.StartPeriodInput{
		WorkerID: "worker-1", ProjectID: "project-1", Start: s.day(10), End: s.day(11), PayRate: &rate,
	})
	s.Require().NoError(err)

	res, err := engine.ApplyEdit(s.ctx, h.ID, timecard.EditInput{
		Changes: map[string]any{
			"day_0": map[string]any{"check_in_time": "08:00", "break_start_time": "12:00", "break_end_time": "12:32", "check_out_time": "17:00"},
		},
		Actor:      "worker-1",
		ActionType: timecard.ActionSelfEdit,
	})
	s.Require().NoError(err)
	s.Len(res.AuditEntries, 4)

	_, err = engine.TransitionStatus(s.ctx, h.ID, timecard.StatusSubmitted, "worker-1", "")
	s.Require().NoError(err)

	tc, err := engine.GetTimecard(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Equal(timecard.StatusSubmitted, tc.Header.Status)
	s.True(tc.Header.Totals.TotalHours.Equal(decimal.RequireFromString("8.5")))
	s.True(tc.Header.Totals.TotalPay.Equal(decimal.RequireFromString("170")))

	groups, err := engine.AuditTrail(s.ctx, h.ID)
	s.Require().NoError(err)
	s.Require().Len(groups, 2)
	s.Len(groups[0].Entries, 4)
	s.Equal(timecard.ActionStatusChange, groups[1].ActionType)
}
