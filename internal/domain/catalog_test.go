package domain_test

import (
	"testing"

	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

func TestCapacityStatus(t *testing.T) {
	cases := []struct {
		total, remaining int
		want             domain.SessionStatus
	}{
		{15, 8, domain.SessionOpen},
		{15, 1, domain.SessionAlmostFull},
		{15, 0, domain.SessionFull},
		{15, 5, domain.SessionAlmostFull},
		{15, 6, domain.SessionOpen},
		{12, 4, domain.SessionAlmostFull},
		{10, 3, domain.SessionAlmostFull},
		{10, 10, domain.SessionOpen},
		{0, 0, domain.SessionFull},
	}
	for _, c := range cases {
		if got := domain.CapacityStatus(c.total, c.remaining); got != c.want {
			t.Errorf("CapacityStatus(%d, %d) = %s, want %s", c.total, c.remaining, got, c.want)
		}
	}
}

func TestSession_WithStatusAndSelectable(t *testing.T) {
	s := domain.Session{ID: "md-avril-2025", SpotsTotal: 15, SpotsRemaining: 8}
	if got := s.WithStatus().Status; got != domain.SessionOpen {
		t.Fatalf("expected open, got %s", got)
	}
	s.SpotsRemaining = 0
	full := s.WithStatus()
	if full.Status != domain.SessionFull {
		t.Fatalf("expected full, got %s", full.Status)
	}
	if full.Selectable() {
		t.Error("full session must not be selectable")
	}
	if full.FillPercent() != 100 {
		t.Errorf("expected 100%% fill, got %v", full.FillPercent())
	}
}

func TestSession_Validate(t *testing.T) {
	if err := (domain.Session{SpotsTotal: 10, SpotsRemaining: 11}).Validate(); err == nil {
		t.Error("expected error when remaining exceeds total")
	}
	if err := (domain.Session{SpotsTotal: 10, SpotsRemaining: -1}).Validate(); err == nil {
		t.Error("expected error on negative remaining")
	}
	if err := (domain.Session{SpotsTotal: 10, SpotsRemaining: 10}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSortSessions(t *testing.T) {
	sessions := []domain.Session{
		{ID: "b", DateStart: "2025-05-10"},
		{ID: "a", DateStart: "2025-04-05"},
		{ID: "c", DateStart: "2025-04-05"},
	}
	domain.SortSessions(sessions)
	if sessions[0].ID != "a" || sessions[1].ID != "c" || sessions[2].ID != "b" {
		t.Errorf("unexpected order: %s %s %s", sessions[0].ID, sessions[1].ID, sessions[2].ID)
	}
}
