// Package dashboard builds the back-office and learner views over the
// catalog and the enrollment store.
package dashboard

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"golang.org/x/sync/errgroup"
)

const recentEnrollments = 5

// AdminStore is the part of the store the back office reads and edits.
type AdminStore interface {
	domain.EnrollmentRepository
	domain.SiteSettingsRepository
}

type Admin struct {
	catalog domain.Catalog
	store   AdminStore
}

func NewAdmin(catalog domain.Catalog, store AdminStore) *Admin {
	return &Admin{catalog: catalog, store: store}
}

// EnrollmentRow is an enrollment with its bootcamp title resolved.
type EnrollmentRow struct {
	domain.Enrollment
	BootcampTitle string `json:"bootcampTitle"`
}

type UpcomingSession struct {
	domain.Session
	BootcampTitle string  `json:"bootcampTitle"`
	FillPercent   float64 `json:"fillPercent"`
}

type BootcampRevenue struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	PaidEnrollments int    `json:"paidEnrollments"`
	Revenue         int64  `json:"revenue"`
}

type Overview struct {
	TotalEnrollments  int               `json:"totalEnrollments"`
	Confirmed         int               `json:"confirmed"`
	Pending           int               `json:"pending"`
	Revenue           int64             `json:"revenue"`
	Bootcamps         int               `json:"bootcamps"`
	RecentEnrollments []EnrollmentRow   `json:"recentEnrollments"`
	UpcomingSessions  []UpcomingSession `json:"upcomingSessions"`
	RevenueByBootcamp []BootcampRevenue `json:"revenueByBootcamp"`
}

type snapshot struct {
	offerings   []domain.Offering
	sessions    []domain.Session
	enrollments []domain.Enrollment
}

func (s snapshot) titles() map[string]string {
	out := make(map[string]string, len(s.offerings))
	for _, o := range s.offerings {
		out[o.Slug] = o.Title
	}
	return out
}

// load fetches offerings, sessions and enrollments concurrently.
func (a *Admin) load(ctx context.Context, f domain.EnrollmentFilter) (snapshot, error) {
	var s snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s.offerings, err = a.catalog.ListOfferings(gctx)
		return errors.Wrap(err, "list bootcamps")
	})
	g.Go(func() error {
		var err error
		s.sessions, err = a.catalog.ListSessions(gctx)
		return errors.Wrap(err, "list sessions")
	})
	g.Go(func() error {
		var err error
		s.enrollments, err = a.store.ListEnrollments(gctx, f)
		return errors.Wrap(err, "list enrollments")
	})
	return s, g.Wait()
}

func rows(enrollments []domain.Enrollment, titles map[string]string) []EnrollmentRow {
	out := make([]EnrollmentRow, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, EnrollmentRow{Enrollment: e, BootcampTitle: titles[e.OfferingSlug]})
	}
	return out
}

func newestFirst(rs []EnrollmentRow) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].EnrolledAt.After(rs[j].EnrolledAt)
	})
}

func (a *Admin) Overview(ctx context.Context) (*Overview, error) {
	s, err := a.load(ctx, domain.EnrollmentFilter{})
	if err != nil {
		return nil, err
	}
	titles := s.titles()
	counts := domain.CountEnrollments(s.enrollments)
	payments := domain.SummarizePayments(s.enrollments)

	ov := &Overview{
		TotalEnrollments:  counts.Total,
		Confirmed:         counts.Confirmed,
		Pending:           counts.Pending,
		Revenue:           payments.Paid.Amount,
		Bootcamps:         len(s.offerings),
		UpcomingSessions:  []UpcomingSession{},
		RevenueByBootcamp: make([]BootcampRevenue, 0, len(s.offerings)),
	}

	recent := rows(s.enrollments, titles)
	newestFirst(recent)
	if len(recent) > recentEnrollments {
		recent = recent[:recentEnrollments]
	}
	ov.RecentEnrollments = recent

	for _, sess := range s.sessions {
		if sess.Status == domain.SessionFull {
			continue
		}
		ov.UpcomingSessions = append(ov.UpcomingSessions, UpcomingSession{
			Session:       sess,
			BootcampTitle: titles[sess.OfferingSlug],
			FillPercent:   sess.FillPercent(),
		})
	}

	for _, o := range s.offerings {
		r := BootcampRevenue{Slug: o.Slug, Title: o.Title}
		for _, e := range s.enrollments {
			if e.OfferingSlug == o.Slug && e.PaymentStatus == domain.PaymentPaid {
				r.PaidEnrollments++
				r.Revenue += e.Amount
			}
		}
		ov.RevenueByBootcamp = append(ov.RevenueByBootcamp, r)
	}
	return ov, nil
}

type EnrollmentList struct {
	Items  []EnrollmentRow         `json:"items"`
	Counts domain.EnrollmentCounts `json:"counts"`
}

// Enrollments returns the filtered rows. Counts always cover every
// enrollment so the status tabs stay stable while searching.
func (a *Admin) Enrollments(ctx context.Context, f domain.EnrollmentFilter) (*EnrollmentList, error) {
	var (
		s   snapshot
		all []domain.Enrollment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s, err = a.load(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = a.store.ListEnrollments(gctx, domain.EnrollmentFilter{})
		return errors.Wrap(err, "count enrollments")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	items := rows(s.enrollments, s.titles())
	newestFirst(items)
	return &EnrollmentList{Items: items, Counts: domain.CountEnrollments(all)}, nil
}

type PaymentsView struct {
	Summary  domain.PaymentSummary `json:"summary"`
	Payments []EnrollmentRow       `json:"payments"`
}

func (a *Admin) Payments(ctx context.Context) (*PaymentsView, error) {
	s, err := a.load(ctx, domain.EnrollmentFilter{})
	if err != nil {
		return nil, err
	}
	items := rows(s.enrollments, s.titles())
	newestFirst(items)
	return &PaymentsView{Summary: domain.SummarizePayments(s.enrollments), Payments: items}, nil
}

type SessionCounts struct {
	Open       int `json:"open"`
	AlmostFull int `json:"almostFull"`
	Full       int `json:"full"`
}

type SessionsView struct {
	Sessions []domain.SessionStats `json:"sessions"`
	Counts   SessionCounts         `json:"counts"`
}

func (a *Admin) Sessions(ctx context.Context) (*SessionsView, error) {
	s, err := a.load(ctx, domain.EnrollmentFilter{})
	if err != nil {
		return nil, err
	}
	titles := s.titles()
	view := &SessionsView{Sessions: make([]domain.SessionStats, 0, len(s.sessions))}
	for _, sess := range s.sessions {
		switch sess.Status {
		case domain.SessionOpen:
			view.Counts.Open++
		case domain.SessionAlmostFull:
			view.Counts.AlmostFull++
		case domain.SessionFull:
			view.Counts.Full++
		}
		view.Sessions = append(view.Sessions, domain.NewSessionStats(sess, titles[sess.OfferingSlug], s.enrollments))
	}
	return view, nil
}

func (a *Admin) Bootcamps(ctx context.Context) ([]domain.OfferingStats, error) {
	s, err := a.load(ctx, domain.EnrollmentFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.OfferingStats, 0, len(s.offerings))
	for _, o := range s.offerings {
		out = append(out, domain.NewOfferingStats(o, s.sessions, s.enrollments))
	}
	return out, nil
}
