/*
handlers.go - HTTP API handlers for the timecard engine

PURPOSE:
  Exposes the timecard engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to timecard.Engine.

ENDPOINTS:
  Timecards:
    POST   /api/timecards                 Open a pay period (draft header)
    GET    /api/timecards/{id}            Header, entries and summary
    POST   /api/timecards/{id}/edits      Apply an edit batch
    POST   /api/timecards/{id}/status     Lifecycle transition
    POST   /api/timecards/{id}/recompute  Recompute header totals
    GET    /api/timecards/{id}/audit      Audit trail grouped by change
    PUT    /api/timecards/{id}/notes      Replace admin notes

  Calculation:
    POST   /api/calculate                 Price one day, no storage

  Projects:
    GET    /api/projects/{id}/config      Effective pay configuration
    PUT    /api/projects/{id}/config      Store pay configuration

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Engine: timecard operations, all transactional
  - Projects: project configuration persistence
  - Defaults: break policy for projects without configuration

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call the engine
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (kind, work_date and field identify the cell)
  - 404: Timecard not found
  - 409: Conflict (approved timecard, illegal transition, duplicate day)
  - 500: Internal errors

SECURITY NOTE:
  Actors are taken from the request body. Authentication belongs to the
  deployment in front of this service.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/warp/timecard-engine/factory"
	"github.com/warp/timecard-engine/timecard"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// ProjectStore persists raw project configuration.
type ProjectStore interface {
	factory.ConfigSource
	SaveProjectConfig(ctx context.Context, id timecard.ProjectID, configJSON string) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *timecard.Engine
	Projects ProjectStore
	Defaults factory.Defaults

	logger *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(engine *timecard.Engine, projects ProjectStore, defaults factory.Defaults, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Engine:   engine,
		Projects: projects,
		Defaults: defaults,
		logger:   logger,
	}
}

// =============================================================================
// TIMECARD HANDLERS
// =============================================================================

// CreateTimecard opens a new pay period.
func (h *Handler) CreateTimecard(w http.ResponseWriter, r *http.Request) {
	var req CreateTimecardRequest
	if !decode(w, r, &req) {
		return
	}
	if req.WorkerID == "" || req.ProjectID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "worker_id and project_id are required"})
		return
	}

	start, err := timecard.ParseDate(req.PeriodStart)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid period_start", Details: err.Error()})
		return
	}
	end, err := timecard.ParseDate(req.PeriodEnd)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid period_end", Details: err.Error()})
		return
	}

	header, err := h.Engine.StartPeriod(r.Context(), timecard.StartPeriodInput{
		WorkerID:  timecard.WorkerID(req.WorkerID),
		ProjectID: timecard.ProjectID(req.ProjectID),
		Start:     start,
		End:       end,
		PayRate:   req.PayRate,
		TimeType:  timecard.TimeType(req.TimeType),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, TimecardDTO{
		Header:  toHeaderDTO(*header),
		Entries: []DailyEntryDTO{},
	})
}

// GetTimecard returns a header with its entries and summary.
func (h *Handler) GetTimecard(w http.ResponseWriter, r *http.Request) {
	tc, err := h.Engine.GetTimecard(r.Context(), headerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TimecardDTO{
		Header:  toHeaderDTO(tc.Header),
		Entries: toEntryDTOs(tc.Entries),
		Summary: toSummaryDTO(tc.Summary),
	})
}

// ApplyEdit applies one edit batch.
func (h *Handler) ApplyEdit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Actor == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "actor is required"})
		return
	}

	res, err := h.Engine.ApplyEdit(r.Context(), headerID(r), timecard.EditInput{
		Changes:    req.Changes,
		Actor:      timecard.ActorID(req.Actor),
		ActionType: timecard.ActionType(req.ActionType),
		Reason:     req.Reason,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, EditResponse{
		ChangeID: string(res.ChangeID),
		Empty:    res.Empty,
		Timecard: TimecardDTO{
			Header:  toHeaderDTO(res.Header),
			Entries: toEntryDTOs(res.Entries),
		},
		AuditEntries: toAuditDTOs(res.AuditEntries),
	})
}

// TransitionStatus moves a timecard along its lifecycle.
func (h *Handler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Actor == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "actor is required"})
		return
	}

	header, err := h.Engine.TransitionStatus(r.Context(), headerID(r),
		timecard.Status(req.Status), timecard.ActorID(req.Actor), req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHeaderDTO(*header))
}

// RecomputeTotals rebuilds header totals from the daily entries.
func (h *Handler) RecomputeTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Engine.RecomputeHeaderTotals(r.Context(), headerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TotalsDTO{
		TotalHours:         totals.TotalHours,
		TotalBreakDuration: totals.TotalBreakDuration,
		TotalPay:           totals.TotalPay,
	})
}

// GetAuditTrail returns the audit trail grouped by change.
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Engine.AuditTrail(r.Context(), headerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangeGroupDTOs(groups))
}

// UpdateNotes replaces the admin notes of a timecard.
func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Actor == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "actor is required"})
		return
	}
	header, err := h.Engine.UpdateAdminNotes(r.Context(), headerID(r), timecard.ActorID(req.Actor), req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHeaderDTO(*header))
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate prices one day from raw punches.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !decode(w, r, &req) {
		return
	}

	var punches timecard.Punches
	for _, p := range []struct {
		field timecard.Field
		raw   *string
		dst   **timecard.ClockTime
	}{
		{timecard.FieldCheckIn, req.CheckIn, &punches.CheckIn},
		{timecard.FieldBreakStart, req.BreakStart, &punches.BreakStart},
		{timecard.FieldBreakEnd, req.BreakEnd, &punches.BreakEnd},
		{timecard.FieldCheckOut, req.CheckOut, &punches.CheckOut},
	} {
		if p.raw == nil || strings.TrimSpace(*p.raw) == "" {
			continue
		}
		c, err := timecard.ParseClockTime(*p.raw)
		if err != nil {
			h.writeError(w, r, &timecard.Error{Kind: timecard.KindInvalidTime, Field: p.field, Message: err.Error()})
			return
		}
		*p.dst = &c
	}

	cfg, err := factory.FromJSON(factory.PayConfigJSON{
		PayRate:             req.PayRate,
		TimeType:            req.TimeType,
		DefaultBreakMinutes: req.DefaultBreakMinutes,
		GraceMinutes:        req.GraceMinutes,
	}, h.Defaults)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res := timecard.CalculateDailyEntry(punches, cfg)
	resp := CalculateResponse{
		HoursWorked:      res.HoursWorked,
		BreakDuration:    res.BreakDuration,
		DailyPay:         res.DailyPay,
		IsComplete:       res.IsComplete,
		IsValid:          res.IsValid,
		ValidationErrors: make([]ErrorResponse, 0, len(res.ValidationErrors)),
	}
	for _, e := range res.ValidationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, toErrorResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// PROJECT CONFIGURATION
// =============================================================================

// GetProjectConfig returns the effective configuration of a project.
func (h *Handler) GetProjectConfig(w http.ResponseWriter, r *http.Request) {
	project := timecard.ProjectID(chi.URLParam(r, "id"))
	cfg, err := factory.NewProjectConfigProvider(h.Projects, h.Defaults).PayConfig(r.Context(), project)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToJSON(project, cfg))
}

// PutProjectConfig validates and stores a project's configuration.
func (h *Handler) PutProjectConfig(w http.ResponseWriter, r *http.Request) {
	project := timecard.ProjectID(chi.URLParam(r, "id"))

	var req ProjectConfigDTO
	if !decode(w, r, &req) {
		return
	}
	req.ProjectID = string(project)

	cfg, err := factory.FromJSON(req, h.Defaults)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	raw, err := json.Marshal(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Projects.SaveProjectConfig(r.Context(), project, string(raw)); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "project config saved", "project_id", project)
	writeJSON(w, http.StatusOK, factory.ToJSON(project, cfg))
}

// =============================================================================
// HELPERS
// =============================================================================

func headerID(r *http.Request) timecard.HeaderID {
	return timecard.HeaderID(chi.URLParam(r, "id"))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps an engine error to its HTTP status.
func statusFor(err error) int {
	switch {
	case timecard.IsNotFound(err):
		return http.StatusNotFound
	case timecard.IsConflict(err):
		return http.StatusConflict
	case timecard.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, status, ErrorResponse{Error: "internal error"})
		return
	}
	resp := toErrorResponse(err)
	if errors.Is(err, timecard.ErrNotFound) && resp.Kind == "" {
		resp.Kind = string(timecard.KindNotFound)
	}
	writeJSON(w, status, resp)
}
