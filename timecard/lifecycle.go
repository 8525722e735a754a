/*
lifecycle.go - Timecard status lifecycle

STATE GRAPH:

  draft ──submit──▶ submitted ──approve──▶ approved
    ▲                  │                      │
    │               reject                  reopen (reason)
    │                  ▼                      │
    └─edit & return── rejected                │
    ▲   (reason)                              │
    └─────────────────────────────────────────┘

  - submit requires at least one complete daily entry
  - reject and edit & return require a reason
  - approved is closed to edits; reopening it is an audited status change

STAMPS:
  submitted: SubmittedAt
  approved:  ApprovedAt, ApprovedBy
  rejected:  RejectionReason

SEE ALSO:
  - engine.go: TransitionStatus runs the transition inside a store transaction
  - audit.go: edits to rejected timecards return them to draft
*/
package timecard

import (
	"strings"
	"time"
)

// transitions lists the allowed target states of every state.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusDraft},
	StatusApproved:  {StatusDraft},
}

// CanTransition reports whether from → to is an edge of the lifecycle graph.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// requiresReason reports whether from → to needs a reason string.
func requiresReason(from, to Status) bool {
	switch {
	case from == StatusSubmitted && to == StatusRejected:
		return true
	case from == StatusRejected && to == StatusDraft:
		return true
	case from == StatusApproved && to == StatusDraft:
		return true
	}
	return false
}

// TransitionRequest is the input to ApplyTransition.
type TransitionRequest struct {
	Target Status
	Actor  ActorID
	Reason string
	At     time.Time
}

// ApplyTransition validates the move and stamps lifecycle metadata on h.
// It mutates h only when the transition is allowed.
func ApplyTransition(h *Header, entries []DailyEntry, req TransitionRequest) error {
	from := h.Status
	if !req.Target.Valid() {
		return newError(KindInvalidTransition, FieldStatus, "unknown status %q", req.Target)
	}
	if !CanTransition(from, req.Target) {
		return newError(KindInvalidTransition, FieldStatus, "%s → %s is not allowed", from, req.Target)
	}
	reason := strings.TrimSpace(req.Reason)
	if requiresReason(from, req.Target) && reason == "" {
		return newError(KindReasonRequired, FieldStatus, "%s → %s needs a reason", from, req.Target)
	}

	at := req.At
	switch req.Target {
	case StatusSubmitted:
		if !hasCompleteEntry(entries) {
			return newError(KindIncomplete, FieldStatus, "submit needs at least one day with check-in and check-out")
		}
		h.SubmittedAt = &at
	case StatusApproved:
		actor := req.Actor
		h.ApprovedAt = &at
		h.ApprovedBy = &actor
	case StatusRejected:
		h.RejectionReason = &reason
	case StatusDraft:
		if from == StatusApproved {
			h.ApprovedAt = nil
			h.ApprovedBy = nil
		}
	}

	h.Status = req.Target
	h.UpdatedAt = at
	return nil
}

// EnsureEditable fails with ImmutableState when h may not be edited.
func EnsureEditable(h Header) error {
	if h.Status == StatusApproved {
		return newError(KindImmutableState, "", "timecard %s is approved; reopen it before editing", h.ID)
	}
	return nil
}

func hasCompleteEntry(entries []DailyEntry) bool {
	for _, e := range entries {
		if e.IsComplete() {
			return true
		}
	}
	return false
}
