// Package reconcile resolves api-mode charges whose webhook never arrived.
package reconcile

import (
	"context"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

type Reconciler interface {
	ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type Worker struct {
	svc       Reconciler
	olderThan time.Duration
	batch     int
	logger    observability.Logger
}

func NewWorker(svc Reconciler, olderThan time.Duration, batch int, logger observability.Logger) *Worker {
	return &Worker{svc: svc, olderThan: olderThan, batch: batch, logger: logger}
}

// Run reconciles every interval. Failed passes back off exponentially up to
// eight intervals.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	w.logger.WithField("interval", interval.String()).Info("charge reconciler started")
	wait := interval
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("charge reconciler stopped")
			return
		case <-time.After(wait):
		}

		resolved, err := w.svc.ReconcilePending(ctx, w.olderThan, w.batch)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if wait < 8*interval {
				wait *= 2
			}
			w.logger.WithError(err).WithField("retry_in", wait.String()).Error("reconcile pass failed")
			continue
		}
		wait = interval
		if resolved > 0 {
			w.logger.WithField("resolved", resolved).Info("pending charges reconciled")
		}
	}
}
