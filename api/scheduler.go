/*
scheduler.go - Periodic header totals reconciliation

PURPOSE:
  Header totals are a projection of the daily entries. Every edit
  recomputes them in the same transaction, but rows written by other tools
  (imports, manual SQL fixes) can leave them stale. The reconciler sweeps
  open timecards and recomputes their totals from the daily entries.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only open timecards (draft, submitted, rejected) are swept; approved
    timecards are left exactly as they were approved
  - RecomputeHeaderTotals writes only when the totals actually differ, so
    a sweep over consistent data is read-only
  - A header that fails (e.g. DuplicateDay) is logged and skipped

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the reconciler is active (default: true)

USAGE:
  reconciler := NewTotalsReconciler(store, engine, logger)
  reconciler.Start()
  // ... later
  reconciler.Stop()

SEE ALSO:
  - handlers.go: RecomputeTotals endpoint (manual, one header)
  - timecard/engine.go: RecomputeHeaderTotals
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/timecard-engine/timecard"
)

// HeaderLister lists header IDs by status.
type HeaderLister interface {
	ListHeaderIDs(ctx context.Context, statuses ...timecard.Status) ([]timecard.HeaderID, error)
}

// ReconcileResult summarizes one sweep.
type ReconcileResult struct {
	Checked int
	Failed  int
}

// TotalsReconciler periodically recomputes header totals.
type TotalsReconciler struct {
	Headers       HeaderLister
	Engine        *timecard.Engine
	CheckInterval time.Duration
	Enabled       bool

	logger *slog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewTotalsReconciler creates a new reconciler.
func NewTotalsReconciler(headers HeaderLister, engine *timecard.Engine, logger *slog.Logger) *TotalsReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TotalsReconciler{
		Headers:       headers,
		Engine:        engine,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		logger:        logger,
		stop:          make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (tr *TotalsReconciler) Start() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if !tr.Enabled || tr.CheckInterval <= 0 {
		tr.logger.Info("totals reconciler disabled")
		return
	}

	tr.ticker = time.NewTicker(tr.CheckInterval)
	tr.wg.Add(1)

	go tr.run()

	tr.logger.Info("totals reconciler started", "interval", tr.CheckInterval.String())
}

// Stop stops the reconciler and waits for a running sweep to finish.
func (tr *TotalsReconciler) Stop() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.ticker != nil {
		tr.ticker.Stop()
		close(tr.stop)
		tr.wg.Wait()
		tr.ticker = nil
		tr.logger.Info("totals reconciler stopped")
	}
}

func (tr *TotalsReconciler) run() {
	defer tr.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-tr.stop
		cancel()
	}()

	// Sweep immediately on start
	tr.RunOnce(ctx)

	for {
		select {
		case <-tr.ticker.C:
			tr.RunOnce(ctx)
		case <-tr.stop:
			return
		}
	}
}

// RunOnce sweeps every open timecard once.
func (tr *TotalsReconciler) RunOnce(ctx context.Context) ReconcileResult {
	var res ReconcileResult

	ids, err := tr.Headers.ListHeaderIDs(ctx, timecard.StatusDraft, timecard.StatusSubmitted, timecard.StatusRejected)
	if err != nil {
		tr.logger.ErrorContext(ctx, "failed to list timecards for reconciliation", "error", err)
		return res
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		res.Checked++
		if _, err := tr.Engine.RecomputeHeaderTotals(ctx, id); err != nil {
			res.Failed++
			tr.logger.WarnContext(ctx, "failed to reconcile timecard totals",
				"header_id", id, "kind", timecard.KindOf(err), "error", err)
		}
	}

	if res.Checked > 0 {
		tr.logger.InfoContext(ctx, "totals reconciliation completed",
			"checked", res.Checked, "failed", res.Failed)
	}
	return res
}
