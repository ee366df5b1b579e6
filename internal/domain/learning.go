package domain

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
)

// VideoProgress is one learner's position in one video.
type VideoProgress struct {
	UserID         string    `json:"userId"`
	VideoID        string    `json:"videoId"`
	WatchedSeconds int       `json:"watchedSeconds"`
	Watched        bool      `json:"watched"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Record stores a new position, clamped to the video length. A video counts as
// watched once the learner reaches its end or marks it completed, and stays
// watched afterwards.
func (p *VideoProgress) Record(v CourseVideo, watchedSeconds int, completed bool, at time.Time) {
	if watchedSeconds < 0 {
		watchedSeconds = 0
	}
	if watchedSeconds > v.TotalDuration {
		watchedSeconds = v.TotalDuration
	}
	if completed {
		watchedSeconds = v.TotalDuration
	}
	p.VideoID = v.ID
	p.WatchedSeconds = watchedSeconds
	if v.TotalDuration > 0 && watchedSeconds >= v.TotalDuration {
		p.Watched = true
	}
	p.UpdatedAt = at
}

// VideoView is a video with the learner's progress attached.
type VideoView struct {
	CourseVideo
	WatchedSeconds int  `json:"watchedDuration"`
	Watched        bool `json:"watched"`
	Percent        int  `json:"percent"`
}

func NewVideoView(v CourseVideo, p VideoProgress) VideoView {
	view := VideoView{CourseVideo: v, WatchedSeconds: p.WatchedSeconds, Watched: p.Watched}
	if v.TotalDuration > 0 {
		view.Percent = int(math.Round(float64(p.WatchedSeconds) / float64(v.TotalDuration) * 100))
	}
	return view
}

// EnrollmentProgress is the share of watched videos, 0..100.
func EnrollmentProgress(videos []CourseVideo, progress map[string]VideoProgress) int {
	if len(videos) == 0 {
		return 0
	}
	watched := 0
	for _, v := range videos {
		if progress[v.ID].Watched {
			watched++
		}
	}
	return int(math.Round(float64(watched) / float64(len(videos)) * 100))
}

// LearningStatusFor derives the course state. started is true once any second
// of any video was watched.
func LearningStatusFor(progress int, started bool) LearningStatus {
	switch {
	case progress >= 100:
		return LearningCompleted
	case progress > 0 || started:
		return LearningInProgress
	default:
		return LearningNotStarted
	}
}

// LearnedHours sums offering hours weighted by progress, rounded.
func LearnedHours(enrollments []Enrollment, hoursBySlug map[string]int) int {
	total := 0.0
	for _, e := range enrollments {
		if e.Status == EnrollmentCancelled {
			continue
		}
		total += float64(hoursBySlug[e.OfferingSlug]) * float64(e.Progress) / 100
	}
	return int(math.Round(total))
}

// RequestCertificate flags the enrollment for certification. It reports
// whether anything changed; repeated requests are no-ops.
func (e *Enrollment) RequestCertificate() (bool, error) {
	if e.Status == EnrollmentCancelled {
		return false, errors.Wrap(ErrConflict, "enrollment is cancelled")
	}
	if e.LearningStatus != LearningCompleted {
		return false, errors.Wrap(ErrConflict, "training is not completed")
	}
	if e.CertificateRequested {
		return false, nil
	}
	e.CertificateRequested = true
	return true, nil
}

// Certificate is the learner-facing view of an enrollment's certification.
type Certificate struct {
	EnrollmentID string `json:"enrollmentId"`
	OfferingSlug string `json:"bootcampSlug"`
	Title        string `json:"title"`
	Hours        int    `json:"hours"`
	SessionID    string `json:"sessionId"`
	Requested    bool   `json:"requested"`
	Issued       bool   `json:"issued"`
	Eligible     bool   `json:"eligible"`
}
