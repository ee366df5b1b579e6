package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/dashboard"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

func newAdmin() *dashboard.Admin {
	return dashboard.NewAdmin(memory.NewSeededCatalog(), memory.NewSeededStore())
}

func TestAdmin_Overview(t *testing.T) {
	ov, err := newAdmin().Overview(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ov.TotalEnrollments != 11 || ov.Confirmed != 8 || ov.Pending != 2 || ov.Bootcamps != 3 {
		t.Errorf("unexpected counts %+v", ov)
	}
	if ov.Revenue != 3100000 {
		t.Errorf("expected paid revenue 3100000, got %d", ov.Revenue)
	}
	if len(ov.RecentEnrollments) != 5 || ov.RecentEnrollments[0].ID != "enroll-010" {
		t.Errorf("unexpected recent enrollments %+v", ov.RecentEnrollments)
	}
	if len(ov.UpcomingSessions) != 6 {
		t.Errorf("full sessions must be excluded, got %d", len(ov.UpcomingSessions))
	}
	var total int64
	for _, r := range ov.RevenueByBootcamp {
		total += r.Revenue
	}
	if total != ov.Revenue {
		t.Errorf("revenue per bootcamp must add up, got %d", total)
	}
}

func TestAdmin_Enrollments(t *testing.T) {
	list, err := newAdmin().Enrollments(context.Background(), domain.EnrollmentFilter{Query: "AMINATA"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 3 || list.Counts.Total != 11 || list.Counts.Cancelled != 1 {
		t.Errorf("unexpected list %d items, counts %+v", len(list.Items), list.Counts)
	}
	for _, it := range list.Items {
		if it.BootcampTitle == "" {
			t.Errorf("missing bootcamp title on %s", it.ID)
		}
	}

	list, err = newAdmin().Enrollments(context.Background(), domain.EnrollmentFilter{PaymentStatus: domain.PaymentPending})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 2 {
		t.Errorf("expected 2 pending payments, got %d", len(list.Items))
	}
}

func TestAdmin_PaymentsSessionsBootcamps(t *testing.T) {
	ctx := context.Background()
	a := newAdmin()

	p, err := a.Payments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.Summary.Paid.Count != 8 || p.Summary.Pending.Amount != 650000 || p.Summary.Refunded.Count != 1 {
		t.Errorf("unexpected payment summary %+v", p.Summary)
	}

	s, err := a.Sessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Counts != (dashboard.SessionCounts{Open: 4, AlmostFull: 2, Full: 1}) {
		t.Errorf("unexpected session counts %+v", s.Counts)
	}
	for _, st := range s.Sessions {
		for _, e := range st.Participants {
			if e.SessionID != st.Session.ID {
				t.Errorf("participant %s listed under %s", e.ID, st.Session.ID)
			}
		}
	}

	b, err := a.Bootcamps(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 3 {
		t.Fatalf("expected 3 bootcamps, got %d", len(b))
	}
	for _, st := range b {
		if st.Sessions == 0 || st.FillRate < 0 || st.FillRate > 100 {
			t.Errorf("unexpected stats %+v", st)
		}
	}
}

func TestAdmin_SiteSettings(t *testing.T) {
	ctx := context.Background()
	admin := newAdmin()

	site, err := admin.Site(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if site != domain.DefaultSiteSettings() {
		t.Errorf("expected defaults before the first save, got %+v", site)
	}

	if _, err := admin.UpdateSite(ctx, domain.SiteSettings{SiteName: "Big Five"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	in := domain.DefaultSiteSettings()
	in.ContactEmail = " Hello@BigFive.ci "
	in.PaymentLink = "https://pay.djamo.com/new-link"
	saved, err := admin.UpdateSite(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if saved.ContactEmail != "hello@bigfive.ci" {
		t.Errorf("contact e-mail not normalised: %q", saved.ContactEmail)
	}
	if got, _ := admin.Site(ctx); got != saved {
		t.Errorf("expected %+v, got %+v", saved, got)
	}
}
