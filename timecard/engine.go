package timecard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/timecard-engine/metrics"
)

// Default break policy used when no ConfigProvider is wired.
const DefaultBreak = 30 * time.Minute

// Engine orchestrates calculation, aggregation, lifecycle and audit over a TxStore.
// Every mutating operation runs in one store transaction.
type Engine struct {
	store   TxStore
	config  ConfigProvider
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string

	defaultBreak time.Duration
	grace        time.Duration
}

type Option func(e *Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithConfigProvider wires the project configuration collaborator.
func WithConfigProvider(p ConfigProvider) Option {
	return func(e *Engine) {
		e.config = p
	}
}

// WithBreakPolicy sets the fallback break policy.
func WithBreakPolicy(defaultBreak, grace time.Duration) Option {
	return func(e *Engine) {
		e.defaultBreak = defaultBreak
		e.grace = grace
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// NewEngine constructs an Engine.
func NewEngine(store TxStore, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		logger:       slog.Default(),
		now:          time.Now,
		newID:        uuid.NewString,
		defaultBreak: DefaultBreak,
		grace:        DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// PERIODS
// =============================================================================

// StartPeriodInput opens a new timecard. PayRate and TimeType override the
// project configuration when set.
type StartPeriodInput struct {
	WorkerID  WorkerID
	ProjectID ProjectID
	Start     Date
	End       Date
	PayRate   *decimal.Decimal
	TimeType  TimeType
}

// StartPeriod creates a draft header with zero totals.
func (e *Engine) StartPeriod(ctx context.Context, in StartPeriodInput) (*Header, error) {
	period, err := NewPeriod(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	cfg, err := e.projectConfig(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if in.PayRate != nil {
		cfg.PayRate = *in.PayRate
	}
	if in.TimeType != "" {
		cfg.TimeType = in.TimeType
	}
	if !cfg.TimeType.Valid() {
		return nil, newError(KindInvalidConfig, "", "time type %q", cfg.TimeType)
	}
	if cfg.PayRate.IsNegative() {
		return nil, newError(KindInvalidConfig, "", "pay rate %s is negative", cfg.PayRate)
	}

	now := e.now()
	h := Header{
		ID:        HeaderID(e.newID()),
		WorkerID:  in.WorkerID,
		ProjectID: in.ProjectID,
		Period:    period,
		Status:    StatusDraft,
		PayRate:   cfg.PayRate,
		TimeType:  cfg.TimeType,
		Totals:    RecomputeTotals(nil),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateHeader(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create timecard: %w", err)
	}
	e.logger.InfoContext(ctx, "timecard started",
		"header_id", h.ID, "worker_id", h.WorkerID, "period", period.String())
	return &h, nil
}

// =============================================================================
// READS
// =============================================================================

// Timecard is a header with its entries and reporting summary.
type Timecard struct {
	Header  Header
	Entries []DailyEntry
	Summary Summary
}

// GetTimecard reads a header and its entries in one consistent snapshot.
func (e *Engine) GetTimecard(ctx context.Context, id HeaderID) (*Timecard, error) {
	var tc *Timecard
	err := e.store.WithTx(ctx, func(s Store) error {
		h, entries, err := load(ctx, s, id)
		if err != nil {
			return err
		}
		tc = &Timecard{Header: *h, Entries: entries, Summary: Summarize(*h, entries)}
		return nil
	})
	return tc, err
}

// AuditTrail returns a header's audit entries grouped by change.
func (e *Engine) AuditTrail(ctx context.Context, id HeaderID) ([]ChangeGroup, error) {
	if _, err := e.store.GetHeader(ctx, id); err != nil {
		return nil, err
	}
	entries, err := e.store.ListAudit(ctx, AuditFilter{HeaderID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}
	return GroupByChange(entries), nil
}

// =============================================================================
// PERIOD AGGREGATOR
// =============================================================================

// RecomputeHeaderTotals recomputes and stores a header's totals from all of
// its daily entries. Running it twice yields identical totals.
func (e *Engine) RecomputeHeaderTotals(ctx context.Context, id HeaderID) (AggregateTotals, error) {
	start := time.Now()
	defer e.metrics.ObserveRecompute(start)

	var totals AggregateTotals
	err := e.store.WithTx(ctx, func(s Store) error {
		h, entries, err := load(ctx, s, id)
		if err != nil {
			return err
		}
		if _, err := indexByDate(entries); err != nil {
			return err
		}
		totals = RecomputeTotals(entries)
		if totals.Equal(h.Totals) {
			return nil
		}
		e.logger.WarnContext(ctx, "header totals drifted from daily entries",
			"header_id", id,
			"stored_hours", h.Totals.TotalHours.String(),
			"recomputed_hours", totals.TotalHours.String())
		h.Totals = totals
		h.UpdatedAt = e.now()
		return s.SaveHeader(ctx, *h)
	})
	return totals, err
}

// =============================================================================
// AUDIT TRAIL GENERATOR
// =============================================================================

// ApplyEdit applies one edit request atomically: entry mutations, header
// totals and audit entries commit together or not at all.
func (e *Engine) ApplyEdit(ctx context.Context, id HeaderID, in EditInput) (*EditResult, error) {
	if in.ActionType != ActionSelfEdit && in.ActionType != ActionRejectionEdit {
		err := newError(KindInvalidAction, "", "%q cannot edit time data", in.ActionType)
		e.metrics.IncEditRejected(string(err.Kind))
		return nil, err
	}

	var result *EditResult
	err := e.store.WithTx(ctx, func(s Store) error {
		h, entries, err := load(ctx, s, id)
		if err != nil {
			return err
		}
		if err := EnsureEditable(*h); err != nil {
			return err
		}
		if h.Status == StatusRejected && strings.TrimSpace(in.Reason) == "" {
			return newError(KindReasonRequired, "", "editing a rejected timecard needs a reason")
		}

		changes, err := NormalizeEdit(in.Changes, h.Period)
		if err != nil {
			return err
		}
		cfg, err := e.payConfig(ctx, *h)
		if err != nil {
			return err
		}

		action := effectiveAction(h.Status, in.ActionType)
		stamp := batchStamp{changeID: ChangeID(e.newID()), at: e.now(), newID: e.newID}
		plan, err := planEdit(*h, entries, changes, action, in, cfg, stamp)
		if err != nil {
			return err
		}
		if plan == nil {
			result = &EditResult{Header: *h, Entries: entries, Empty: true}
			return nil
		}

		if err := s.SaveEntries(ctx, plan.touched); err != nil {
			return fmt.Errorf("failed to save entries: %w", err)
		}
		if err := s.SaveHeader(ctx, plan.header); err != nil {
			return fmt.Errorf("failed to save header: %w", err)
		}
		if err := s.AppendAudit(ctx, plan.audit); err != nil {
			return fmt.Errorf("failed to append audit entries: %w", err)
		}
		result = &EditResult{
			Header:       plan.header,
			Entries:      plan.entries,
			AuditEntries: plan.audit,
			ChangeID:     stamp.changeID,
		}
		return nil
	})
	if err != nil {
		e.metrics.IncEditRejected(string(KindOf(err)))
		e.logger.WarnContext(ctx, "edit aborted", append([]any{"header_id", id}, errorAttrs(err)...)...)
		return nil, err
	}

	if result.Empty {
		e.metrics.IncEditEmpty()
		e.logger.DebugContext(ctx, "edit resolved to no change", "header_id", id)
		return result, nil
	}
	e.metrics.IncEditApplied()
	e.metrics.AddAuditEntries(string(result.AuditEntries[0].ActionType), len(result.AuditEntries))
	e.logger.InfoContext(ctx, "edit applied",
		"header_id", id,
		"change_id", result.ChangeID,
		"action_type", result.AuditEntries[0].ActionType,
		"audit_entries", len(result.AuditEntries),
		"status", result.Header.Status)
	return result, nil
}

// =============================================================================
// STATUS LIFECYCLE CONTROLLER
// =============================================================================

// TransitionStatus moves a header along the lifecycle graph and records the
// move in the audit log.
func (e *Engine) TransitionStatus(ctx context.Context, id HeaderID, target Status, actor ActorID, reason string) (*Header, error) {
	var (
		updated *Header
		from    Status
	)
	err := e.store.WithTx(ctx, func(s Store) error {
		h, entries, err := load(ctx, s, id)
		if err != nil {
			return err
		}
		from = h.Status
		now := e.now()
		if err := ApplyTransition(h, entries, TransitionRequest{Target: target, Actor: actor, Reason: reason, At: now}); err != nil {
			return err
		}
		if from == StatusRejected && target == StatusDraft {
			h.AdminEdited = true
			h.LastEditedBy = &actor
			h.EditType = EditTypeEditAndReturn
		}

		stamp := batchStamp{changeID: ChangeID(e.newID()), at: now, newID: e.newID}
		entry := statusAuditEntry(*h, from, target, actor, reason, stamp)
		if err := s.SaveHeader(ctx, *h); err != nil {
			return fmt.Errorf("failed to save header: %w", err)
		}
		if err := s.AppendAudit(ctx, []AuditLogEntry{entry}); err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}
		updated = h
		return nil
	})
	if err != nil {
		e.logger.WarnContext(ctx, "status transition refused",
			append([]any{"header_id", id, "target", target}, errorAttrs(err)...)...)
		return nil, err
	}

	e.metrics.IncTransition(string(from), string(target))
	e.logger.InfoContext(ctx, "status changed",
		"header_id", id, "from", from, "to", target, "actor", actor)
	return updated, nil
}

// UpdateAdminNotes replaces the privileged-only notes of a header.
func (e *Engine) UpdateAdminNotes(ctx context.Context, id HeaderID, actor ActorID, notes string) (*Header, error) {
	var updated *Header
	err := e.store.WithTx(ctx, func(s Store) error {
		h, err := s.GetHeader(ctx, id)
		if err != nil {
			return err
		}
		h.AdminNotes = notes
		h.UpdatedAt = e.now()
		if err := s.SaveHeader(ctx, *h); err != nil {
			return fmt.Errorf("failed to save header: %w", err)
		}
		updated = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "admin notes updated", "header_id", id, "actor", actor)
	return updated, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func load(ctx context.Context, s Store, id HeaderID) (*Header, []DailyEntry, error) {
	h, err := s.GetHeader(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.ListEntries(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return h, entries, nil
}

// projectConfig returns the project's pay configuration, falling back to
// the engine's break policy when no provider is wired.
func (e *Engine) projectConfig(ctx context.Context, project ProjectID) (PayConfig, error) {
	if e.config == nil {
		return PayConfig{
			PayRate:      decimal.Zero,
			TimeType:     TimeTypeHourly,
			DefaultBreak: e.defaultBreak,
			GracePeriod:  e.grace,
		}, nil
	}
	cfg, err := e.config.PayConfig(ctx, project)
	if err != nil {
		return PayConfig{}, fmt.Errorf("failed to load pay config for %s: %w", project, err)
	}
	return cfg, nil
}

// payConfig prices a header's days. Rate and time type come from the
// header snapshot; the break policy comes from the project.
func (e *Engine) payConfig(ctx context.Context, h Header) (PayConfig, error) {
	cfg, err := e.projectConfig(ctx, h.ProjectID)
	if err != nil {
		return PayConfig{}, err
	}
	cfg.PayRate = h.PayRate
	cfg.TimeType = h.TimeType
	return cfg, nil
}

func errorAttrs(err error) []any {
	attrs := []any{"error", err.Error()}
	var tcErr *Error
	if errors.As(err, &tcErr) {
		attrs = append(attrs, "kind", tcErr.Kind, "field", tcErr.Field)
		if tcErr.WorkDate != nil {
			attrs = append(attrs, "work_date", tcErr.WorkDate.String())
		}
	}
	return attrs
}
