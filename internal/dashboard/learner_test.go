package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

func newLearner(now time.Time) (*Learner, *memory.Store) {
	store := memory.NewSeededStore()
	l := NewLearner(memory.NewSeededCatalog(), store, observability.NewNopLogger())
	l.now = func() time.Time { return now }
	return l, store
}

func TestLearner_Dashboard(t *testing.T) {
	l, _ := newLearner(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	d, err := l.Dashboard(context.Background(), "user-001")
	if err != nil {
		t.Fatal(err)
	}
	if d.Completed != 1 || d.InProgress != 1 || d.Certificates != 1 {
		t.Errorf("unexpected counts %+v", d)
	}
	if d.LearnedHours != 25 {
		t.Errorf("expected 25 learned hours, got %d", d.LearnedHours)
	}
	if d.Current == nil || d.Current.Enrollment.ID != "enroll-001" {
		t.Fatalf("unexpected current course %+v", d.Current)
	}
	if d.NextVideo == nil || d.NextVideo.ID != "video-smm-1-4" || d.NextVideo.Percent != 50 {
		t.Errorf("unexpected next video %+v", d.NextVideo)
	}

	courses, err := l.Courses(context.Background(), "user-001", domain.LearningCompleted)
	if err != nil || len(courses) != 1 || courses[0].Enrollment.ID != "enroll-002" {
		t.Errorf("unexpected completed courses %+v %v", courses, err)
	}
}

func TestLearner_CourseAndProgress(t *testing.T) {
	ctx := context.Background()
	l, store := newLearner(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))

	detail, err := l.Course(ctx, "user-001", "social-media-management-avance")
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Days) != 2 || len(detail.Days[0].Videos) != 4 || detail.TotalVideos != 6 || detail.WatchedVideos != 3 {
		t.Fatalf("unexpected course detail %+v", detail)
	}
	if _, err := l.Course(ctx, "user-002", "marketing-digital-fondamentaux"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected forbidden for a course the learner does not follow, got %v", err)
	}

	res, err := l.RecordProgress(ctx, "user-001", "video-smm-1-4", ProgressUpdate{WatchedSeconds: 99999})
	if err != nil {
		t.Fatal(err)
	}
	if res.Video.WatchedSeconds != 2400 || !res.Video.Watched {
		t.Errorf("progress must clamp to the video length, got %+v", res.Video)
	}
	if res.Enrollment.Progress != 67 || res.Enrollment.LearningStatus != domain.LearningInProgress {
		t.Errorf("unexpected enrollment %+v", res.Enrollment)
	}

	if _, err := l.RequestCertificate(ctx, "user-001", "enroll-001"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("unfinished training must not get a certificate, got %v", err)
	}

	for _, id := range []string{"video-smm-2-1", "video-smm-2-2"} {
		if _, err := l.RecordProgress(ctx, "user-001", id, ProgressUpdate{Completed: true}); err != nil {
			t.Fatal(err)
		}
	}
	e, _ := store.GetEnrollment(ctx, "enroll-001")
	if e.Progress != 100 || e.LearningStatus != domain.LearningCompleted {
		t.Fatalf("expected completed training, got %+v", e)
	}

	c, err := l.RequestCertificate(ctx, "user-001", "enroll-001")
	if err != nil || !c.Requested || !c.Eligible || c.Hours != 14 {
		t.Fatalf("unexpected certificate %+v %v", c, err)
	}
	if _, err := l.RequestCertificate(ctx, "user-001", "enroll-001"); err != nil {
		t.Errorf("repeated request must be a no-op, got %v", err)
	}
	if _, err := l.RequestCertificate(ctx, "user-002", "enroll-001"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign enrollment must not be visible, got %v", err)
	}

	if _, err := l.RecordProgress(ctx, "user-001", "missing", ProgressUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestLearner_Subscription(t *testing.T) {
	ctx := context.Background()
	l, _ := newLearner(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC))

	view, err := l.Subscription(ctx, "user-001")
	if err != nil {
		t.Fatal(err)
	}
	if view.Current == nil || view.Current.Plan != domain.PlanPremium || view.DaysRemaining != 31 || len(view.Plans) != 3 {
		t.Fatalf("unexpected subscription view %+v", view)
	}

	same, err := l.ChangePlan(ctx, "user-001", domain.PlanPremium)
	if err != nil || same.ID != "sub-001" {
		t.Fatalf("choosing the active plan must be a no-op, got %+v %v", same, err)
	}
	if _, err := l.ChangePlan(ctx, "user-001", "gold"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid plan, got %v", err)
	}

	l.now = func() time.Time { return time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC) }
	sub, err := l.ChangePlan(ctx, "user-001", domain.PlanEnterprise)
	if err != nil || sub.Plan != domain.PlanEnterprise || sub.Price != 150000 {
		t.Fatalf("unexpected new subscription %+v %v", sub, err)
	}

	cancelled, err := l.CancelSubscription(ctx, "user-001")
	if err != nil || cancelled.Status != domain.SubscriptionCancelled {
		t.Fatalf("unexpected cancel result %+v %v", cancelled, err)
	}
	if _, err := l.CancelSubscription(ctx, "user-001"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("cancelling twice must conflict, got %v", err)
	}
	if _, err := l.Subscription(ctx, "user-002"); err != nil {
		t.Errorf("missing subscription must not fail, got %v", err)
	}
}
