/*
Package timecard is the timecard calculation and audit engine.

PURPOSE:
  Converts recorded check-in/out and break punches into payable hours,
  keeps pay-period totals in lockstep with their daily entries, drives the
  timecard status lifecycle, and writes an append-only, field-level audit
  trail for every correction made to submitted time data.

KEY CONCEPTS IN THIS FILE (types.go):
  - Header: one worker's pay-period record on one project
  - DailyEntry: one calendar day's punches and derived values
  - AuditLogEntry: one field-level change, grouped by ChangeID
  - PayConfig: rate, time type and break policy used by the calculator

DESIGN PRINCIPLES:
  1. Daily entries are the source of truth; header totals are a projection
     recomputed wholesale after every mutation, never incremented.
  2. Precision: hours and pay are decimal.Decimal, rounded once per day.
  3. Atomicity: an edit commits its entries, totals and audit rows together.
  4. Auditability: audit entries are append-only and never rewritten.

SEE ALSO:
  - calculator.go: Daily entry calculation
  - aggregate.go: Period totals
  - lifecycle.go: Status transitions
  - audit.go: Edit pipeline and audit generation
*/
package timecard

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type HeaderID string
type EntryID string
type AuditID string
type ChangeID string
type WorkerID string
type ProjectID string
type ActorID string

// =============================================================================
// ENUMERATIONS
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type TimeType string

const (
	TimeTypeHourly TimeType = "hourly" // pay = hours worked * rate
	TimeTypeDaily  TimeType = "daily"  // pay = rate once per complete day
)

func (t TimeType) Valid() bool {
	return t == TimeTypeHourly || t == TimeTypeDaily
}

type ActionType string

const (
	ActionSelfEdit      ActionType = "self_edit"
	ActionRejectionEdit ActionType = "rejection_edit"
	ActionStatusChange  ActionType = "status_change"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionSelfEdit, ActionRejectionEdit, ActionStatusChange:
		return true
	}
	return false
}

// Field is a canonical audited field name.
type Field string

const (
	FieldCheckIn    Field = "check_in"
	FieldBreakStart Field = "break_start"
	FieldBreakEnd   Field = "break_end"
	FieldCheckOut   Field = "check_out"

	// FieldStatus is only written by status_change entries.
	FieldStatus Field = "status"
)

// TimeFields lists the editable punch fields in display order.
var TimeFields = []Field{FieldCheckIn, FieldBreakStart, FieldBreakEnd, FieldCheckOut}

// EditTypeEditAndReturn marks an edit that sent a rejected timecard back to draft.
const EditTypeEditAndReturn = "edit_and_return"

// =============================================================================
// HEADER - One pay period for one worker on one project
// =============================================================================

type Header struct {
	ID        HeaderID
	WorkerID  WorkerID
	ProjectID ProjectID
	Period    Period
	Status    Status

	PayRate  decimal.Decimal
	TimeType TimeType

	// Derived from daily entries. Never authoritative.
	Totals AggregateTotals

	AdminNotes string // privileged-only

	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *ActorID
	RejectionReason *string

	AdminEdited  bool
	LastEditedBy *ActorID
	EditType     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AggregateTotals are the header-level sums of the daily entries.
type AggregateTotals struct {
	TotalHours         decimal.Decimal
	TotalBreakDuration decimal.Decimal
	TotalPay           decimal.Decimal
}

// Equal compares totals by value (scale-insensitive).
func (a AggregateTotals) Equal(b AggregateTotals) bool {
	return a.TotalHours.Equal(b.TotalHours) &&
		a.TotalBreakDuration.Equal(b.TotalBreakDuration) &&
		a.TotalPay.Equal(b.TotalPay)
}

// =============================================================================
// DAILY ENTRY - One day's punches within a header
// =============================================================================

type DailyEntry struct {
	ID       EntryID
	HeaderID HeaderID
	WorkDate Date

	CheckIn    *ClockTime
	CheckOut   *ClockTime
	BreakStart *ClockTime
	BreakEnd   *ClockTime

	HoursWorked   decimal.Decimal
	BreakDuration decimal.Decimal
	DailyPay      decimal.Decimal

	Notes    string
	Location string

	UpdatedAt time.Time
}

// Punches returns the raw punch values of the entry.
func (e DailyEntry) Punches() Punches {
	return Punches{CheckIn: e.CheckIn, CheckOut: e.CheckOut, BreakStart: e.BreakStart, BreakEnd: e.BreakEnd}
}

// Get returns the stored value of a time field.
func (e DailyEntry) Get(f Field) *ClockTime {
	switch f {
	case FieldCheckIn:
		return e.CheckIn
	case FieldCheckOut:
		return e.CheckOut
	case FieldBreakStart:
		return e.BreakStart
	case FieldBreakEnd:
		return e.BreakEnd
	}
	return nil
}

// Set overwrites a time field.
func (e *DailyEntry) Set(f Field, v *ClockTime) {
	switch f {
	case FieldCheckIn:
		e.CheckIn = v
	case FieldCheckOut:
		e.CheckOut = v
	case FieldBreakStart:
		e.BreakStart = v
	case FieldBreakEnd:
		e.BreakEnd = v
	}
}

// IsComplete reports whether both check-in and check-out are recorded.
func (e DailyEntry) IsComplete() bool {
	return e.CheckIn != nil && e.CheckOut != nil
}

// =============================================================================
// AUDIT LOG ENTRY - Append-only field-level change record
// =============================================================================

type AuditLogEntry struct {
	ID         AuditID
	HeaderID   HeaderID
	ChangeID   ChangeID // shared by every entry of one user action
	Field      Field
	OldValue   *string
	NewValue   *string
	ChangedBy  ActorID
	ChangedAt  time.Time
	ActionType ActionType
	WorkDate   *Date // nil for status_change entries
	Reason     string
}

// =============================================================================
// PAY CONFIGURATION
// =============================================================================

// PayConfig is what the calculator needs to price one day.
type PayConfig struct {
	PayRate      decimal.Decimal
	TimeType     TimeType
	DefaultBreak time.Duration // configured policy break
	GracePeriod  time.Duration // tolerance around DefaultBreak
}
