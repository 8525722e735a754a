/*
errors.go - Centralized error types for the timecard engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Every validation failure is returned as a *Error carrying the kind and,
  when known, the (work_date, field) pair that caused it, so the calling
  layer can point the actor at the exact cell that was rejected.

ERROR CATEGORIES:
  1. Calculation errors - InvalidSequence, NegativeHours, NegativeBreak
  2. Edit errors - UnmappedField, InvalidTime, OutOfPeriod, ConflictingChange
  3. Lifecycle errors - ImmutableState, InvalidTransition, ReasonRequired
     (plus InvalidPeriod and InvalidConfig when a period is started)
  4. Store errors - DuplicateDay, NotFound

EMPTY BATCHES:
  An edit that resolves to zero changes is NOT an error. ApplyEdit returns
  an EditResult with Empty set to true.

USAGE:
  if errors.Is(err, timecard.ErrImmutableState) {
      // header is approved, reopen first
  }

  var tcErr *timecard.Error
  if errors.As(err, &tcErr) {
      fmt.Println(tcErr.WorkDate, tcErr.Field)
  }
*/
package timecard

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSequence is returned when an end time precedes its start time
	// (check-out before check-in, or a break outside the shift).
	ErrInvalidSequence = errors.New("invalid time sequence")

	// ErrNegativeHours is returned when the break is longer than the shift.
	ErrNegativeHours = errors.New("negative hours worked")

	// ErrNegativeBreak is returned when break end precedes break start.
	ErrNegativeBreak = errors.New("negative break duration")

	// ErrImmutableState is returned when editing an approved timecard.
	ErrImmutableState = errors.New("timecard is approved and cannot be edited")

	// ErrDuplicateDay is returned when two entries exist for the same header and work date.
	ErrDuplicateDay = errors.New("duplicate entry for work date")

	// ErrUnmappedField is returned when an edit names a field outside the four time fields.
	ErrUnmappedField = errors.New("unmapped field")

	ErrInvalidTime        = errors.New("invalid time value")
	ErrOutOfPeriod        = errors.New("work date outside timecard period")
	ErrConflictingChange  = errors.New("conflicting values for the same field")
	ErrInvalidAction      = errors.New("invalid action type")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrReasonRequired     = errors.New("reason required")
	ErrIncompleteTimecard = errors.New("timecard has no complete daily entry")
	ErrInvalidConfig      = errors.New("invalid pay configuration")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNotFound is returned when a referenced header doesn't exist.
	ErrNotFound = errors.New("timecard not found")
)

// =============================================================================
// STRUCTURED ERROR - Carries the failing (work_date, field)
// =============================================================================

// ErrorKind names the taxonomy entry of an Error.
type ErrorKind string

const (
	KindInvalidSequence   ErrorKind = "InvalidSequence"
	KindNegativeHours     ErrorKind = "NegativeHours"
	KindNegativeBreak     ErrorKind = "NegativeBreak"
	KindImmutableState    ErrorKind = "ImmutableState"
	KindDuplicateDay      ErrorKind = "DuplicateDay"
	KindUnmappedField     ErrorKind = "UnmappedField"
	KindInvalidTime       ErrorKind = "InvalidTime"
	KindOutOfPeriod       ErrorKind = "OutOfPeriod"
	KindConflictingChange ErrorKind = "ConflictingChange"
	KindInvalidAction     ErrorKind = "InvalidAction"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindReasonRequired    ErrorKind = "ReasonRequired"
	KindIncomplete        ErrorKind = "IncompleteTimecard"
	KindInvalidPeriod     ErrorKind = "InvalidPeriod"
	KindInvalidConfig     ErrorKind = "InvalidConfig"
	KindNotFound          ErrorKind = "NotFound"
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidSequence:   ErrInvalidSequence,
	KindNegativeHours:     ErrNegativeHours,
	KindNegativeBreak:     ErrNegativeBreak,
	KindImmutableState:    ErrImmutableState,
	KindDuplicateDay:      ErrDuplicateDay,
	KindUnmappedField:     ErrUnmappedField,
	KindInvalidTime:       ErrInvalidTime,
	KindOutOfPeriod:       ErrOutOfPeriod,
	KindConflictingChange: ErrConflictingChange,
	KindInvalidAction:     ErrInvalidAction,
	KindInvalidTransition: ErrInvalidTransition,
	KindReasonRequired:    ErrReasonRequired,
	KindIncomplete:        ErrIncompleteTimecard,
	KindInvalidPeriod:     ErrInvalidPeriod,
	KindInvalidConfig:     ErrInvalidConfig,
	KindNotFound:          ErrNotFound,
}

// Error is the typed result returned for every engine failure.
// WorkDate and Field are set when the failure is attributable to one cell.
type Error struct {
	Kind     ErrorKind
	WorkDate *Date
	Field    Field // canonical field, or the raw key for UnmappedField
	Message  string
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.WorkDate != nil {
		msg += " on " + e.WorkDate.String()
	}
	if e.Field != "" {
		msg += " (" + string(e.Field) + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *Error) Unwrap() error {
	return kindSentinels[e.Kind]
}

func newError(kind ErrorKind, field Field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// at returns a copy of e attributed to the given work date.
func (e *Error) at(d Date) *Error {
	c := *e
	c.WorkDate = &d
	return &c
}

// DuplicateDayError reports a second entry for a work date that already has one.
func DuplicateDayError(d Date) *Error {
	return newError(KindDuplicateDay, "", "an entry for %s already exists", d).at(d)
}

// KindOf returns the kind of err, or "" when err is not an engine error.
func KindOf(err error) ErrorKind {
	var tcErr *Error
	if errors.As(err, &tcErr) {
		return tcErr.Kind
	}
	return ""
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case "", KindNotFound:
		return false
	}
	return true
}

// IsConflict returns true if the request is valid but the timecard's state forbids it.
func IsConflict(err error) bool {
	return errors.Is(err, ErrImmutableState) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDuplicateDay)
}

// IsNotFound returns true if the error indicates a missing timecard.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
