package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/rota-api/internal/service/cascade"
)

// ReconcileActor is stamped on change events raised by the worker.
const ReconcileActor = "reconciler"

// Reconciler is the part of the cascade engine the worker drives.
type Reconciler interface {
	ReconcileOrphans(ctx context.Context, dryRun bool) (*cascade.OrphanReport, error)
}

// Invalidator drops list views of collections that lost records.
type Invalidator interface {
	CollectionsChanged(ctx context.Context, collections []string, actor string)
}

// ReconcileWorker periodically removes assignment records whose parent has
// been deleted, e.g. after a cascade that failed half way.
type ReconcileWorker struct {
	engine   Reconciler
	notifier Invalidator
	interval time.Duration
	dryRun   bool
}

func NewReconcileWorker(engine Reconciler, notifier Invalidator, interval time.Duration, dryRun bool) *ReconcileWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReconcileWorker{
		engine:   engine,
		notifier: notifier,
		interval: interval,
		dryRun:   dryRun,
	}
}

// Start blocks until ctx is done.
func (w *ReconcileWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("Orphan reconciliation failed")
			}
		}
	}
}

// RunOnce reconciles and evicts the views of every collection a committed
// batch touched, including when a later collection failed.
func (w *ReconcileWorker) RunOnce(ctx context.Context) (*cascade.OrphanReport, error) {
	report, err := w.engine.ReconcileOrphans(ctx, w.dryRun)
	if changed := report.Collections(); len(changed) > 0 && w.notifier != nil {
		w.notifier.CollectionsChanged(ctx, changed, ReconcileActor)
	}
	if err != nil {
		return report, err
	}
	if len(report.Orphans) > 0 {
		removed := 0
		for _, n := range report.Removed {
			removed += n
		}
		log.Warn().
			Int("orphans", len(report.Orphans)).
			Int("removed", removed).
			Bool("dry_run", report.DryRun).
			Msg("Reconciled orphaned assignments")
	}
	return report, nil
}
