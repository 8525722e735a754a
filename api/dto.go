/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NUMERICS:
  Hours and money are decimal.Decimal and serialize as JSON strings
  ("7.50"), never as floats.

TIME VALUES:
  Clock times use the request field names (check_in_time, ...) as "HH:MM"
  strings. A null or absent value means "not recorded".

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/payconfig.go: PayConfigJSON type
*/
package api

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timecard-engine/factory"
	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateTimecardRequest opens a pay period. PayRate and TimeType override
// the project configuration.
type CreateTimecardRequest struct {
	WorkerID    string           `json:"worker_id"`
	ProjectID   string           `json:"project_id"`
	PeriodStart string           `json:"period_start"`
	PeriodEnd   string           `json:"period_end"`
	PayRate     *decimal.Decimal `json:"pay_rate,omitempty"`
	TimeType    string           `json:"time_type,omitempty"`
}

// EditRequest carries either the day-indexed or the flat change shape.
type EditRequest struct {
	Changes    map[string]any `json:"changes"`
	Actor      string         `json:"actor"`
	ActionType string         `json:"action_type"`
	Reason     string         `json:"reason,omitempty"`
}

// StatusRequest moves a timecard along its lifecycle.
type StatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

// NotesRequest replaces the admin notes of a timecard.
type NotesRequest struct {
	Actor string `json:"actor"`
	Notes string `json:"notes"`
}

// CalculateRequest prices one day without touching storage.
type CalculateRequest struct {
	CheckIn             *string         `json:"check_in_time"`
	BreakStart          *string         `json:"break_start_time"`
	BreakEnd            *string         `json:"break_end_time"`
	CheckOut            *string         `json:"check_out_time"`
	PayRate             decimal.Decimal `json:"pay_rate"`
	TimeType            string          `json:"time_type,omitempty"`
	DefaultBreakMinutes *int            `json:"default_break_minutes,omitempty"`
	GraceMinutes        *int            `json:"grace_minutes,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// HeaderDTO represents a timecard header in API responses.
type HeaderDTO struct {
	ID                 string          `json:"id"`
	WorkerID           string          `json:"worker_id"`
	ProjectID          string          `json:"project_id"`
	PeriodStart        string          `json:"period_start"`
	PeriodEnd          string          `json:"period_end"`
	Status             string          `json:"status"`
	PayRate            decimal.Decimal `json:"pay_rate"`
	TimeType           string          `json:"time_type"`
	TotalHours         decimal.Decimal `json:"total_hours"`
	TotalBreakDuration decimal.Decimal `json:"total_break_duration"`
	TotalPay           decimal.Decimal `json:"total_pay"`
	AdminNotes         string          `json:"admin_notes,omitempty"`
	SubmittedAt        *string         `json:"submitted_at,omitempty"`
	ApprovedAt         *string         `json:"approved_at,omitempty"`
	ApprovedBy         *string         `json:"approved_by,omitempty"`
	RejectionReason    *string         `json:"rejection_reason,omitempty"`
	AdminEdited        bool            `json:"admin_edited"`
	LastEditedBy       *string         `json:"last_edited_by,omitempty"`
	EditType           string          `json:"edit_type,omitempty"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

// DailyEntryDTO represents one day of a timecard.
type DailyEntryDTO struct {
	ID            string          `json:"id"`
	WorkDate      string          `json:"work_date"`
	CheckIn       *string         `json:"check_in_time"`
	BreakStart    *string         `json:"break_start_time"`
	BreakEnd      *string         `json:"break_end_time"`
	CheckOut      *string         `json:"check_out_time"`
	HoursWorked   decimal.Decimal `json:"hours_worked"`
	BreakDuration decimal.Decimal `json:"break_duration"`
	DailyPay      decimal.Decimal `json:"daily_pay"`
	Notes         string          `json:"notes,omitempty"`
	Location      string          `json:"location,omitempty"`
}

// SummaryDTO is the multi-day reporting view.
type SummaryDTO struct {
	DaysInPeriod             int             `json:"days_in_period"`
	DaysWorked               int             `json:"days_worked"`
	ShowDay                  string          `json:"show_day"`
	RehearsalDays            []string        `json:"rehearsal_days"`
	AverageHoursPerDay       decimal.Decimal `json:"average_hours_per_day"`
	AveragePayPerDay         decimal.Decimal `json:"average_pay_per_day"`
	AverageHoursPerWorkedDay decimal.Decimal `json:"average_hours_per_worked_day"`
	AveragePayPerWorkedDay   decimal.Decimal `json:"average_pay_per_worked_day"`
}

// TimecardDTO is a header with its entries.
type TimecardDTO struct {
	Header  HeaderDTO       `json:"header"`
	Entries []DailyEntryDTO `json:"entries"`
	Summary *SummaryDTO     `json:"summary,omitempty"`
}

// AuditEntryDTO represents one field-level change.
type AuditEntryDTO struct {
	ID         string  `json:"id"`
	ChangeID   string  `json:"change_id"`
	Field      string  `json:"field"`
	WorkDate   *string `json:"work_date,omitempty"`
	OldValue   *string `json:"old_value"`
	NewValue   *string `json:"new_value"`
	ChangedBy  string  `json:"changed_by"`
	ChangedAt  string  `json:"changed_at"`
	ActionType string  `json:"action_type"`
	Reason     string  `json:"reason,omitempty"`
}

// ChangeGroupDTO groups the audit entries of one user action.
type ChangeGroupDTO struct {
	ChangeID   string          `json:"change_id"`
	ChangedAt  string          `json:"changed_at"`
	ChangedBy  string          `json:"changed_by"`
	ActionType string          `json:"action_type"`
	Reason     string          `json:"reason,omitempty"`
	Entries    []AuditEntryDTO `json:"entries"`
}

// EditResponse is returned by the edit endpoint.
type EditResponse struct {
	ChangeID     string          `json:"change_id,omitempty"`
	Empty        bool            `json:"empty"`
	Timecard     TimecardDTO     `json:"timecard"`
	AuditEntries []AuditEntryDTO `json:"audit_entries"`
}

// TotalsDTO is returned by the recompute endpoint.
type TotalsDTO struct {
	TotalHours         decimal.Decimal `json:"total_hours"`
	TotalBreakDuration decimal.Decimal `json:"total_break_duration"`
	TotalPay           decimal.Decimal `json:"total_pay"`
}

// CalculateResponse is the result of a stateless day calculation.
type CalculateResponse struct {
	HoursWorked      decimal.Decimal `json:"hours_worked"`
	BreakDuration    decimal.Decimal `json:"break_duration"`
	DailyPay         decimal.Decimal `json:"daily_pay"`
	IsComplete       bool            `json:"is_complete"`
	IsValid          bool            `json:"is_valid"`
	ValidationErrors []ErrorResponse `json:"validation_errors"`
}

// ProjectConfigDTO wraps a project's pay configuration.
type ProjectConfigDTO = factory.PayConfigJSON

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	WorkDate string `json:"work_date,omitempty"`
	Field    string `json:"field,omitempty"`
	Details  string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toHeaderDTO(h timecard.Header) HeaderDTO {
	return HeaderDTO{
		ID:                 string(h.ID),
		WorkerID:           string(h.WorkerID),
		ProjectID:          string(h.ProjectID),
		PeriodStart:        h.Period.Start.String(),
		PeriodEnd:          h.Period.End.String(),
		Status:             string(h.Status),
		PayRate:            h.PayRate,
		TimeType:           string(h.TimeType),
		TotalHours:         h.Totals.TotalHours,
		TotalBreakDuration: h.Totals.TotalBreakDuration,
		TotalPay:           h.Totals.TotalPay,
		AdminNotes:         h.AdminNotes,
		SubmittedAt:        timePtr(h.SubmittedAt),
		ApprovedAt:         timePtr(h.ApprovedAt),
		ApprovedBy:         actorPtr(h.ApprovedBy),
		RejectionReason:    h.RejectionReason,
		AdminEdited:        h.AdminEdited,
		LastEditedBy:       actorPtr(h.LastEditedBy),
		EditType:           h.EditType,
		CreatedAt:          h.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          h.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toEntryDTOs(entries []timecard.DailyEntry) []DailyEntryDTO {
	out := make([]DailyEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, DailyEntryDTO{
			ID:            string(e.ID),
			WorkDate:      e.WorkDate.String(),
			CheckIn:       timecard.FormatClock(e.CheckIn),
			BreakStart:    timecard.FormatClock(e.BreakStart),
			BreakEnd:      timecard.FormatClock(e.BreakEnd),
			CheckOut:      timecard.FormatClock(e.CheckOut),
			HoursWorked:   e.HoursWorked,
			BreakDuration: e.BreakDuration,
			DailyPay:      e.DailyPay,
			Notes:         e.Notes,
			Location:      e.Location,
		})
	}
	return out
}

func toSummaryDTO(s timecard.Summary) *SummaryDTO {
	rehearsals := make([]string, 0, len(s.Classification.RehearsalDays))
	for _, d := range s.Classification.RehearsalDays {
		rehearsals = append(rehearsals, d.String())
	}
	return &SummaryDTO{
		DaysInPeriod:             s.DaysInPeriod,
		DaysWorked:               s.DaysWorked,
		ShowDay:                  s.Classification.ShowDay.String(),
		RehearsalDays:            rehearsals,
		AverageHoursPerDay:       s.AverageHoursPerDay,
		AveragePayPerDay:         s.AveragePayPerDay,
		AverageHoursPerWorkedDay: s.AverageHoursPerWorkedDay,
		AveragePayPerWorkedDay:   s.AveragePayPerWorkedDay,
	}
}

func toAuditDTOs(entries []timecard.AuditLogEntry) []AuditEntryDTO {
	out := make([]AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		var workDate *string
		if e.WorkDate != nil {
			s := e.WorkDate.String()
			workDate = &s
		}
		out = append(out, AuditEntryDTO{
			ID:         string(e.ID),
			ChangeID:   string(e.ChangeID),
			Field:      string(e.Field),
			WorkDate:   workDate,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			ChangedBy:  string(e.ChangedBy),
			ChangedAt:  e.ChangedAt.UTC().Format(time.RFC3339Nano),
			ActionType: string(e.ActionType),
			Reason:     e.Reason,
		})
	}
	return out
}

func toChangeGroupDTOs(groups []timecard.ChangeGroup) []ChangeGroupDTO {
	out := make([]ChangeGroupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, ChangeGroupDTO{
			ChangeID:   string(g.ChangeID),
			ChangedAt:  g.ChangedAt.UTC().Format(time.RFC3339Nano),
			ChangedBy:  string(g.ChangedBy),
			ActionType: string(g.ActionType),
			Reason:     g.Reason,
			Entries:    toAuditDTOs(g.Entries),
		})
	}
	return out
}

func toErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	var tcErr *timecard.Error
	if errors.As(err, &tcErr) {
		if tcErr.Message != "" {
			resp.Error = tcErr.Message
		}
		resp.Kind = string(tcErr.Kind)
		resp.Field = string(tcErr.Field)
		if tcErr.WorkDate != nil {
			resp.WorkDate = tcErr.WorkDate.String()
		}
	}
	return resp
}

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func actorPtr(a *timecard.ActorID) *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}
