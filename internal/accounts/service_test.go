package accounts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/accounts"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/seed"
)

func newService() (*accounts.Service, *memory.Store, *accounts.Tokens) {
	store := memory.NewSeededStore()
	tokens := accounts.NewTokens("test-secret", time.Hour)
	return accounts.NewService(store, tokens, observability.NewNopLogger()), store, tokens
}

func TestRegister(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, accounts.RegisterInput{Name: "Awa Toure", Email: " Awa@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "awa@example.com" || u.Role != domain.RoleUser || u.PasswordHash == "secret1" {
		t.Fatalf("unexpected user %+v", u)
	}

	_, err = svc.Register(ctx, accounts.RegisterInput{Name: "Short", Email: "short@example.com", Password: "12345"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for a short password, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "short@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("rejected registration must not create a record")
	}

	before, _ := store.GetUserByEmail(ctx, "awa@example.com")
	_, err = svc.Register(ctx, accounts.RegisterInput{Name: "Other", Email: "awa@example.com", Password: "another1"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	after, _ := store.GetUserByEmail(ctx, "awa@example.com")
	if after.Name != before.Name || after.PasswordHash != before.PasswordHash {
		t.Error("duplicate registration must not alter the existing record")
	}

	if _, err := svc.Register(ctx, accounts.RegisterInput{Email: "x@example.com", Password: "secret1"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("missing name must be rejected, got %v", err)
	}
}

func TestLoginAndTokens(t *testing.T) {
	svc, _, tokens := newService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, accounts.RegisterInput{Name: "Awa", Email: "awa@example.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(ctx, "awa@example.com", "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	sess, err := svc.Login(ctx, "AWA@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := tokens.Parse(sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != sess.User.ID || claims.Role != domain.RoleUser || claims.Email != "awa@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}

	other := accounts.NewTokens("other-secret", time.Hour)
	if _, err := other.Parse(sess.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("foreign signature must be rejected, got %v", err)
	}
	expired := accounts.NewTokens("test-secret", -time.Minute)
	tok, _, _ := expired.Issue(sess.User)
	if _, err := tokens.Parse(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expired token must be rejected, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()

	if _, err := svc.UpdateSettings(ctx, "user-001", domain.Settings{Name: " "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	u, err := svc.UpdateSettings(ctx, "user-001", domain.Settings{
		Name:          "Aminata D.",
		Phone:         "+225 07 00 00 00 00",
		Notifications: domain.NotificationPrefs{Email: true, Marketing: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := store.GetUser(ctx, "user-001")
	if stored.Name != "Aminata D." || !stored.Notifications.Marketing || stored.Notifications.Reminders || u.Phone != stored.Phone {
		t.Errorf("settings not persisted: %+v", stored)
	}
	if _, err := svc.UpdateSettings(ctx, "missing", domain.Settings{Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateSettings_AdminAlerts(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()

	u, err := svc.UpdateSettings(ctx, seed.AdminID, domain.Settings{
		Name:          "Admin Big Five",
		Phone:         "+225 01 02 03 04 05",
		Notifications: domain.NotificationPrefs{Email: true, Admin: &domain.AdminAlerts{Payments: true, WeeklyReport: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a := u.Notifications.Admin; a == nil || !a.WeeklyReport || a.NewEnrollments {
		t.Fatalf("admin alerts not applied: %+v", u.Notifications.Admin)
	}

	// Saving the learner preferences alone keeps the admin alerts.
	if _, err := svc.UpdateSettings(ctx, seed.AdminID, domain.Settings{Name: "Admin", Notifications: domain.NotificationPrefs{Email: true}}); err != nil {
		t.Fatal(err)
	}
	stored, _ := store.GetUser(ctx, seed.AdminID)
	if stored.Notifications.Admin == nil || !stored.Notifications.Admin.WeeklyReport {
		t.Errorf("admin alerts lost: %+v", stored.Notifications)
	}

	u, err = svc.UpdateSettings(ctx, seed.LearnerID, domain.Settings{
		Name:          "Aminata Diallo",
		Notifications: domain.NotificationPrefs{Admin: &domain.AdminAlerts{Payments: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if u.Notifications.Admin != nil {
		t.Error("learners must not carry admin alerts")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	u, err := svc.Register(ctx, accounts.RegisterInput{Name: "Awa", Email: "awa@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	err = svc.ChangePassword(ctx, u.ID, domain.PasswordChange{Current: "wrong-one", New: "secret22", Confirm: "secret22"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["currentPassword"] == "" {
		t.Fatalf("expected a currentPassword error, got %v", err)
	}
	err = svc.ChangePassword(ctx, u.ID, domain.PasswordChange{Current: "secret1", New: "secret22", Confirm: "secret23"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected a mismatch to be rejected, got %v", err)
	}
	if _, err := svc.Login(ctx, "awa@example.com", "secret1"); err != nil {
		t.Fatalf("rejected changes must keep the old password: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, domain.PasswordChange{Current: "secret1", New: "secret22", Confirm: "secret22"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, "awa@example.com", "secret1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("old password must stop working, got %v", err)
	}
	if _, err := svc.Login(ctx, "awa@example.com", "secret22"); err != nil {
		t.Errorf("new password must work: %v", err)
	}
	if err := svc.ChangePassword(ctx, "missing", domain.PasswordChange{Current: "a", New: "secret22", Confirm: "secret22"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
