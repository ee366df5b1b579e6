package reconcile_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/reconcile"
)

type countingReconciler struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingReconciler) ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	c.calls.Add(1)
	if c.fail {
		return 0, errors.New("gateway down")
	}
	return 1, nil
}

func TestWorker_Run(t *testing.T) {
	rec := &countingReconciler{}
	w := reconcile.NewWorker(rec, time.Minute, 10, observability.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for rec.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated passes, got %d", rec.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_BacksOff(t *testing.T) {
	rec := &countingReconciler{fail: true}
	w := reconcile.NewWorker(rec, time.Minute, 10, observability.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	w.Run(ctx, 10*time.Millisecond)

	// 10, 20, 40, 80 ms waits fit at most three passes in 100 ms.
	if n := rec.calls.Load(); n == 0 || n > 3 {
		t.Errorf("unexpected number of passes %d", n)
	}
}
