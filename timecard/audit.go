/*
audit.go - Edit pipeline and audit trail generation

PURPOSE:
  Turns one edit request into staged daily-entry mutations, recomputed
  header totals and one batch of field-level audit entries. The batch is
  committed by the Engine inside a single store transaction.

PHASES:
  1. normalize + diff   NormalizeEdit, then compare against stored values
  2. validate + compute Recalculate every touched entry, RecomputeTotals
  3. stage + commit     Engine writes entries, header and audit rows in WithTx

  Any failure in phase 1 or 2 returns before anything is staged, so a batch
  can never half-commit. A failure in phase 3 rolls back the transaction.

INVARIANTS:
  - An audit entry exists only where old value != new value.
  - Every entry of one batch shares one ChangeID and one ChangedAt.
  - Audit entries are append-only.

EXAMPLE:
  res, err := engine.ApplyEdit(ctx, headerID, timecard.EditInput{
      Changes:    map[string]any{"check_in_time_day_0": "09:30"},
      Actor:      "admin-1",
      ActionType: timecard.ActionRejectionEdit,
      Reason:     "badge reader was down",
  })
*/
package timecard

import (
	"sort"
	"strings"
	"time"
)

// EditInput is one edit request.
type EditInput struct {
	// Changes is either request shape, typically decoded straight from JSON.
	Changes    map[string]any
	Actor      ActorID
	ActionType ActionType
	Reason     string
}

// EditResult is returned by ApplyEdit.
type EditResult struct {
	Header       Header
	Entries      []DailyEntry
	AuditEntries []AuditLogEntry
	ChangeID     ChangeID

	// Empty is true when every requested value already matched the stored
	// one. Nothing was written.
	Empty bool
}

// batchStamp is shared by every audit entry of one batch.
type batchStamp struct {
	changeID ChangeID
	at       time.Time
	newID    func() string
}

// editPlan is the fully computed, not yet persisted outcome of an edit.
type editPlan struct {
	header  Header
	entries []DailyEntry // every entry of the header after the edit
	touched []DailyEntry // entries to upsert
	audit   []AuditLogEntry
}

// effectiveAction returns the action recorded for an edit. Any edit of a
// timecard that is no longer a draft is a rejection edit.
func effectiveAction(status Status, requested ActionType) ActionType {
	if status != StatusDraft {
		return ActionRejectionEdit
	}
	return requested
}

// planEdit diffs changes against the current entries and computes the result.
// It performs no I/O.
func planEdit(h Header, current []DailyEntry, changes []FieldChange, action ActionType,
	in EditInput, cfg PayConfig, stamp batchStamp) (*editPlan, error) {

	entries := make([]DailyEntry, len(current))
	copy(entries, current)
	index, err := indexByDate(entries)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(in.Reason)
	touched := make(map[Date]bool)
	var audit []AuditLogEntry

	for _, c := range changes {
		i, ok := index[c.WorkDate]
		var old *ClockTime
		if ok {
			old = entries[i].Get(c.Field)
		}
		if sameClock(old, c.NewValue) {
			continue
		}
		if !ok {
			entries = append(entries, DailyEntry{
				ID:       EntryID(stamp.newID()),
				HeaderID: h.ID,
				WorkDate: c.WorkDate,
			})
			i = len(entries) - 1
			index[c.WorkDate] = i
		}
		entries[i].Set(c.Field, c.NewValue)
		touched[c.WorkDate] = true

		day := c.WorkDate
		audit = append(audit, AuditLogEntry{
			ID:         AuditID(stamp.newID()),
			HeaderID:   h.ID,
			ChangeID:   stamp.changeID,
			Field:      c.Field,
			OldValue:   FormatClock(old),
			NewValue:   FormatClock(c.NewValue),
			ChangedBy:  in.Actor,
			ChangedAt:  stamp.at,
			ActionType: action,
			WorkDate:   &day,
			Reason:     reason,
		})
	}

	if len(audit) == 0 {
		return nil, nil
	}

	var staged []DailyEntry
	for i := range entries {
		if !touched[entries[i].WorkDate] {
			continue
		}
		if err := Recalculate(&entries[i], cfg); err != nil {
			return nil, err
		}
		entries[i].UpdatedAt = stamp.at
		staged = append(staged, entries[i])
	}

	h.Totals = RecomputeTotals(entries)
	h.UpdatedAt = stamp.at
	actor := in.Actor
	h.LastEditedBy = &actor
	h.EditType = string(action)
	if action == ActionRejectionEdit {
		h.AdminEdited = true
	}
	if h.Status == StatusRejected {
		h.Status = StatusDraft
		h.EditType = EditTypeEditAndReturn
	}

	sortEntries(entries)
	return &editPlan{header: h, entries: entries, touched: staged, audit: audit}, nil
}

func sortEntries(entries []DailyEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WorkDate.Before(entries[j].WorkDate)
	})
}

// indexByDate maps work dates to positions and rejects duplicate days.
func indexByDate(entries []DailyEntry) (map[Date]int, error) {
	index := make(map[Date]int, len(entries))
	for i, e := range entries {
		if _, dup := index[e.WorkDate]; dup {
			return nil, newError(KindDuplicateDay, "", "header %s has two entries", e.HeaderID).at(e.WorkDate)
		}
		index[e.WorkDate] = i
	}
	return index, nil
}

// statusAuditEntry records a lifecycle transition. Returning a rejected
// timecard to draft is logged as a rejection edit; everything else is a
// status change.
func statusAuditEntry(h Header, from, to Status, actor ActorID, reason string, stamp batchStamp) AuditLogEntry {
	action := ActionStatusChange
	if from == StatusRejected && to == StatusDraft {
		action = ActionRejectionEdit
	}
	oldVal, newVal := string(from), string(to)
	return AuditLogEntry{
		ID:         AuditID(stamp.newID()),
		HeaderID:   h.ID,
		ChangeID:   stamp.changeID,
		Field:      FieldStatus,
		OldValue:   &oldVal,
		NewValue:   &newVal,
		ChangedBy:  actor,
		ChangedAt:  stamp.at,
		ActionType: action,
		Reason:     strings.TrimSpace(reason),
	}
}

// =============================================================================
// GROUPING - One group per user action
// =============================================================================

// ChangeGroup is every audit entry produced by one user action.
type ChangeGroup struct {
	ChangeID   ChangeID
	ChangedAt  time.Time
	ChangedBy  ActorID
	ActionType ActionType
	Reason     string
	Entries    []AuditLogEntry
}

// GroupByChange groups entries by ChangeID, keeping first-seen order.
func GroupByChange(entries []AuditLogEntry) []ChangeGroup {
	var groups []ChangeGroup
	pos := make(map[ChangeID]int)
	for _, e := range entries {
		i, ok := pos[e.ChangeID]
		if !ok {
			groups = append(groups, ChangeGroup{
				ChangeID:   e.ChangeID,
				ChangedAt:  e.ChangedAt,
				ChangedBy:  e.ChangedBy,
				ActionType: e.ActionType,
				Reason:     e.Reason,
			})
			i = len(groups) - 1
			pos[e.ChangeID] = i
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}
