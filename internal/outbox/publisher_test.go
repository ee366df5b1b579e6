package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/outbox"
)

type flakySink struct {
	failures int
	poison   string
	keys     []string
}

func (s *flakySink) PublishJSON(ctx context.Context, key, messageID string, body []byte) error {
	if messageID == s.poison {
		return errors.New("message rejected")
	}
	if s.failures > 0 {
		s.failures--
		return errors.New("broker unavailable")
	}
	s.keys = append(s.keys, messageID)
	return nil
}

func addEvent(t *testing.T, store *memory.Store, key string) {
	t.Helper()
	err := store.Settle(context.Background(), func(tx domain.SettlementTx) error {
		return tx.AddOutbox(context.Background(), domain.OutboxEvent{
			ID:            uuid.New(),
			AggregateType: "order",
			AggregateID:   key,
			EventType:     "order.paid",
			Payload:       []byte(`{}`),
			DedupeKey:     key,
			CreatedAt:     time.Now(),
		})
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPublisher_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	addEvent(t, store, "a:paid")
	addEvent(t, store, "b:paid")

	sink := &flakySink{failures: 1}
	p := outbox.NewPublisher(store, sink, outbox.Options{Backoff: time.Millisecond}, observability.NewNopLogger())

	n, err := p.RunOnce(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 published, got %d (%v)", n, err)
	}
	if len(sink.keys) != 2 || sink.keys[0] != "a:paid" {
		t.Errorf("unexpected publish order %v", sink.keys)
	}
	if n, _ := p.RunOnce(ctx); n != 0 {
		t.Errorf("published events must not be relayed again, got %d", n)
	}
}

func TestPublisher_StopsOnFailure(t *testing.T) {
	store := memory.NewStore()
	addEvent(t, store, "a:paid")

	sink := &flakySink{failures: 10}
	p := outbox.NewPublisher(store, sink, outbox.Options{MaxRetries: 2, Backoff: time.Millisecond}, observability.NewNopLogger())
	if _, err := p.RunOnce(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	pending, _ := store.PendingOutbox(context.Background(), 10)
	if len(pending) != 1 {
		t.Errorf("failed event must stay pending, got %d", len(pending))
	}
}

func TestPublisher_SkipsDeadEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	addEvent(t, store, "a:paid")
	addEvent(t, store, "b:paid")

	sink := &flakySink{poison: "a:paid"}
	p := outbox.NewPublisher(store, sink, outbox.Options{MaxRetries: 1, MaxRuns: 2, Backoff: time.Millisecond}, observability.NewNopLogger())

	if n, err := p.RunOnce(ctx); err == nil || n != 0 {
		t.Fatalf("first run must stop at the failing event, got %d (%v)", n, err)
	}
	if len(sink.keys) != 0 {
		t.Fatalf("later events must wait while the head is retried, got %v", sink.keys)
	}

	n, err := p.RunOnce(ctx)
	if err != nil || n != 1 {
		t.Fatalf("second run must skip the dead event and relay the next, got %d (%v)", n, err)
	}
	if len(sink.keys) != 1 || sink.keys[0] != "b:paid" {
		t.Errorf("unexpected publishes %v", sink.keys)
	}
	if pending, _ := store.PendingOutbox(ctx, 10); len(pending) != 0 {
		t.Errorf("expected an empty pending set, got %d", len(pending))
	}
	if n, err := p.RunOnce(ctx); err != nil || n != 0 {
		t.Errorf("dead events must not be retried, got %d (%v)", n, err)
	}
}
