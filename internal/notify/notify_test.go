package notify_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/notify"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

type captureMailer struct {
	sent []notify.Message
}

func (c *captureMailer) Send(ctx context.Context, msg notify.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func event(t *testing.T, email string) []byte {
	t.Helper()
	b, err := json.Marshal(domain.OrderEvent{
		ExternalID:    "ord_123456",
		Status:        domain.ChargePaid,
		Amount:        250000,
		Email:         email,
		Name:          "Awa Koné",
		OfferingTitle: "Marketing Digital",
		SessionCity:   "Abidjan",
		DateStart:     "2025-04-26",
		DateEnd:       "2025-04-27",
		OccurredAt:    time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRender(t *testing.T) {
	var ev domain.OrderEvent
	_ = json.Unmarshal(event(t, "awa@example.com"), &ev)

	msg, ok, err := notify.Render("order.paid", ev)
	if err != nil || !ok {
		t.Fatalf("render: %v %v", ok, err)
	}
	if msg.Subject != "Inscription confirmée : Marketing Digital" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "250 000 FCFA") || !strings.Contains(msg.HTML, "<strong>250 000 FCFA</strong>") {
		t.Errorf("amount not formatted:\n%s\n%s", msg.Text, msg.HTML)
	}
	if _, ok, _ := notify.Render("order.due", ev); ok {
		t.Error("order.due has no template")
	}
}

func TestNotifier_Handle(t *testing.T) {
	ctx := context.Background()
	mailer := &captureMailer{}
	store := memory.NewSeededStore()
	n := notify.NewNotifier(mailer, store, memory.NewLocker(), observability.NewNopLogger())

	if err := n.Handle(ctx, "order.paid", "m-1", event(t, "guest@example.com")); err != nil {
		t.Fatal(err)
	}
	if err := n.Handle(ctx, "order.paid", "m-1", event(t, "guest@example.com")); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "guest@example.com" {
		t.Fatalf("expected one e-mail, got %d", len(mailer.sent))
	}

	u := domain.User{ID: "u-optout", Email: "optout@example.com", Name: "Opt", Role: domain.RoleUser}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := n.Handle(ctx, "order.paid", "m-2", event(t, "optout@example.com")); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 1 {
		t.Error("opted-out accounts must not be e-mailed")
	}

	if err := n.Handle(ctx, "order.paid", "m-3", []byte("{")); err == nil {
		t.Error("expected a decode error")
	}
}
