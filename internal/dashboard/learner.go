package dashboard

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

type LearnerStore interface {
	domain.EnrollmentRepository
	domain.LearningRepository
}

type Learner struct {
	catalog domain.Catalog
	store   LearnerStore
	logger  observability.Logger
	now     func() time.Time
}

func NewLearner(catalog domain.Catalog, store LearnerStore, logger observability.Logger) *Learner {
	return &Learner{catalog: catalog, store: store, logger: logger, now: time.Now}
}

type CourseSummary struct {
	Enrollment    domain.Enrollment `json:"enrollment"`
	BootcampTitle string            `json:"bootcampTitle"`
	Hours         int               `json:"hours"`
	Session       *domain.Session   `json:"session"`
	WatchedVideos int               `json:"watchedVideos"`
	TotalVideos   int               `json:"totalVideos"`
}

type LearnerDashboard struct {
	Completed    int               `json:"completed"`
	InProgress   int               `json:"inProgress"`
	LearnedHours int               `json:"learnedHours"`
	Certificates int               `json:"certificates"`
	Current      *CourseSummary    `json:"current"`
	NextVideo    *domain.VideoView `json:"nextVideo"`
}

// active lists the learner's non-cancelled enrollments.
func (l *Learner) active(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	all, err := l.store.ListEnrollments(ctx, domain.EnrollmentFilter{UserID: userID})
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	out := all[:0]
	for _, e := range all {
		if e.Status != domain.EnrollmentCancelled {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *Learner) summary(ctx context.Context, e domain.Enrollment, progress map[string]domain.VideoProgress) (CourseSummary, []domain.CourseVideo, error) {
	cs := CourseSummary{Enrollment: e}
	if o, err := l.catalog.GetOfferingBySlug(ctx, e.OfferingSlug); err == nil {
		cs.BootcampTitle = o.Title
		cs.Hours = o.Hours
	} else if !errors.Is(err, domain.ErrNotFound) {
		return cs, nil, err
	}
	if s, err := l.catalog.GetSessionByID(ctx, e.SessionID); err == nil {
		cs.Session = s
	} else if !errors.Is(err, domain.ErrNotFound) {
		return cs, nil, err
	}
	videos, err := l.catalog.ListVideos(ctx, e.OfferingSlug)
	if err != nil {
		return cs, nil, err
	}
	cs.TotalVideos = len(videos)
	for _, v := range videos {
		if progress[v.ID].Watched {
			cs.WatchedVideos++
		}
	}
	return cs, videos, nil
}

func nextVideo(videos []domain.CourseVideo, progress map[string]domain.VideoProgress) *domain.VideoView {
	for _, v := range videos {
		if p := progress[v.ID]; !p.Watched {
			view := domain.NewVideoView(v, p)
			return &view
		}
	}
	return nil
}

func (l *Learner) Dashboard(ctx context.Context, userID string) (*LearnerDashboard, error) {
	enrollments, err := l.active(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := l.store.ListVideoProgress(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load progress")
	}

	d := &LearnerDashboard{}
	hours := make(map[string]int)
	for _, e := range enrollments {
		switch e.LearningStatus {
		case domain.LearningCompleted:
			d.Completed++
		case domain.LearningInProgress:
			d.InProgress++
		}
		if e.CertificateIssued {
			d.Certificates++
		}
		cs, videos, err := l.summary(ctx, e, progress)
		if err != nil {
			return nil, err
		}
		hours[e.OfferingSlug] = cs.Hours
		if d.Current == nil && e.LearningStatus == domain.LearningInProgress {
			cs := cs
			d.Current = &cs
			d.NextVideo = nextVideo(videos, progress)
		}
	}
	d.LearnedHours = domain.LearnedHours(enrollments, hours)
	return d, nil
}

// Courses lists the learner's trainings, optionally limited to one learning
// status.
func (l *Learner) Courses(ctx context.Context, userID string, status domain.LearningStatus) ([]CourseSummary, error) {
	enrollments, err := l.active(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := l.store.ListVideoProgress(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load progress")
	}
	out := []CourseSummary{}
	for _, e := range enrollments {
		if status != "" && e.LearningStatus != status {
			continue
		}
		cs, _, err := l.summary(ctx, e, progress)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

type CourseDay struct {
	Day    int                `json:"day"`
	Title  string             `json:"title"`
	Videos []domain.VideoView `json:"videos"`
}

type CourseDetail struct {
	CourseSummary
	Bootcamp       domain.Offering   `json:"bootcamp"`
	Days           []CourseDay       `json:"days"`
	WatchedSeconds int               `json:"watchedSeconds"`
	TotalSeconds   int               `json:"totalSeconds"`
	NextVideo      *domain.VideoView `json:"nextVideo"`
}

// enrollmentFor finds the learner's active enrollment in an offering.
func (l *Learner) enrollmentFor(ctx context.Context, userID, slug string) (*domain.Enrollment, error) {
	enrollments, err := l.active(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range enrollments {
		if e.OfferingSlug == slug {
			e := e
			return &e, nil
		}
	}
	return nil, errors.Wrapf(domain.ErrForbidden, "not enrolled in %q", slug)
}

func (l *Learner) Course(ctx context.Context, userID, slug string) (*CourseDetail, error) {
	offering, err := l.catalog.GetOfferingBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	e, err := l.enrollmentFor(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	progress, err := l.store.ListVideoProgress(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load progress")
	}
	cs, videos, err := l.summary(ctx, *e, progress)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{CourseSummary: cs, Bootcamp: *offering, Days: []CourseDay{}}
	dayTitles := make(map[int]string, len(offering.Program))
	for _, d := range offering.Program {
		dayTitles[d.Day] = d.Title
	}
	for _, v := range videos {
		view := domain.NewVideoView(v, progress[v.ID])
		detail.WatchedSeconds += view.WatchedSeconds
		detail.TotalSeconds += v.TotalDuration
		if n := len(detail.Days); n == 0 || detail.Days[n-1].Day != v.DayNumber {
			detail.Days = append(detail.Days, CourseDay{Day: v.DayNumber, Title: dayTitles[v.DayNumber]})
		}
		last := &detail.Days[len(detail.Days)-1]
		last.Videos = append(last.Videos, view)
	}
	detail.NextVideo = nextVideo(videos, progress)
	return detail, nil
}

type ProgressUpdate struct {
	WatchedSeconds int  `json:"watchedSeconds"`
	Completed      bool `json:"completed"`
}

type ProgressResult struct {
	Video      domain.VideoView  `json:"video"`
	Enrollment domain.Enrollment `json:"enrollment"`
}

// RecordProgress stores the learner's position in a video and recomputes the
// enrollment's progress and learning status.
func (l *Learner) RecordProgress(ctx context.Context, userID, videoID string, in ProgressUpdate) (*ProgressResult, error) {
	video, err := l.catalog.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	e, err := l.enrollmentFor(ctx, userID, video.OfferingSlug)
	if err != nil {
		return nil, err
	}
	progress, err := l.store.ListVideoProgress(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load progress")
	}

	now := l.now()
	p := progress[video.ID]
	p.UserID = userID
	p.Record(*video, in.WatchedSeconds, in.Completed, now)
	if err := l.store.SaveVideoProgress(ctx, p); err != nil {
		return nil, errors.Wrap(err, "save progress")
	}
	progress[video.ID] = p

	videos, err := l.catalog.ListVideos(ctx, video.OfferingSlug)
	if err != nil {
		return nil, err
	}
	started := false
	for _, v := range videos {
		if progress[v.ID].WatchedSeconds > 0 || progress[v.ID].Watched {
			started = true
			break
		}
	}
	e.Progress = domain.EnrollmentProgress(videos, progress)
	e.LearningStatus = domain.LearningStatusFor(e.Progress, started)
	if err := l.store.SaveEnrollment(ctx, *e); err != nil {
		return nil, errors.Wrap(err, "save enrollment")
	}

	observability.LoggerFrom(ctx, l.logger).WithFields(map[string]interface{}{
		"user_id":  userID,
		"video_id": video.ID,
		"progress": e.Progress,
	}).Debug("video progress recorded")
	return &ProgressResult{Video: domain.NewVideoView(*video, p), Enrollment: *e}, nil
}

func (l *Learner) certificate(ctx context.Context, e domain.Enrollment) (domain.Certificate, error) {
	c := domain.Certificate{
		EnrollmentID: e.ID,
		OfferingSlug: e.OfferingSlug,
		SessionID:    e.SessionID,
		Requested:    e.CertificateRequested,
		Issued:       e.CertificateIssued,
		Eligible:     e.LearningStatus == domain.LearningCompleted,
	}
	o, err := l.catalog.GetOfferingBySlug(ctx, e.OfferingSlug)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return c, err
	}
	if o != nil {
		c.Title = o.Title
		c.Hours = o.Hours
	}
	return c, nil
}

func (l *Learner) Certificates(ctx context.Context, userID string) ([]domain.Certificate, error) {
	enrollments, err := l.active(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Certificate, 0, len(enrollments))
	for _, e := range enrollments {
		c, err := l.certificate(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// RequestCertificate is idempotent; unfinished trainings fail with
// ErrConflict.
func (l *Learner) RequestCertificate(ctx context.Context, userID, enrollmentID string) (*domain.Certificate, error) {
	e, err := l.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, errors.Wrapf(domain.ErrNotFound, "enrollment %q", enrollmentID)
	}
	changed, err := e.RequestCertificate()
	if err != nil {
		return nil, err
	}
	if changed {
		if err := l.store.SaveEnrollment(ctx, *e); err != nil {
			return nil, errors.Wrap(err, "save enrollment")
		}
	}
	c, err := l.certificate(ctx, *e)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type SubscriptionView struct {
	Current       *domain.Subscription `json:"current"`
	DaysRemaining int                  `json:"daysRemaining"`
	Plans         []domain.Plan        `json:"plans"`
}

func (l *Learner) Subscription(ctx context.Context, userID string) (*SubscriptionView, error) {
	view := &SubscriptionView{Plans: domain.Plans()}
	sub, err := l.store.CurrentSubscription(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load subscription")
	}
	now := l.now()
	sub.Status = sub.EffectiveStatus(now)
	view.Current = sub
	if sub.Status == domain.SubscriptionActive {
		view.DaysRemaining = sub.DaysRemaining(now)
	}
	return view, nil
}

// ChangePlan starts a new period on plan and closes the current one.
// Choosing the active plan again is a no-op.
func (l *Learner) ChangePlan(ctx context.Context, userID string, plan domain.PlanID) (*domain.Subscription, error) {
	p, ok := domain.PlanByID(plan)
	if !ok {
		return nil, &domain.ValidationError{
			Message: "unknown plan",
			Fields:  map[string]string{"plan": "must be one of: basic premium enterprise"},
		}
	}
	now := l.now()
	current, err := l.store.CurrentSubscription(ctx, userID)
	switch {
	case err == nil:
		if current.EffectiveStatus(now) == domain.SubscriptionActive {
			if current.Plan == p.ID {
				return current, nil
			}
			current.Status = domain.SubscriptionCancelled
			if err := l.store.SaveSubscription(ctx, *current); err != nil {
				return nil, errors.Wrap(err, "close subscription")
			}
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, errors.Wrap(err, "load subscription")
	}

	sub := domain.NewSubscription(userID, p, now)
	if err := l.store.SaveSubscription(ctx, sub); err != nil {
		return nil, errors.Wrap(err, "save subscription")
	}
	return &sub, nil
}

func (l *Learner) CancelSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	sub, err := l.store.CurrentSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.EffectiveStatus(l.now()) != domain.SubscriptionActive {
		return nil, errors.Wrap(domain.ErrConflict, "subscription is not active")
	}
	sub.Status = domain.SubscriptionCancelled
	if err := l.store.SaveSubscription(ctx, *sub); err != nil {
		return nil, errors.Wrap(err, "save subscription")
	}
	return sub, nil
}
