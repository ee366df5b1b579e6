package domain

import (
	"context"
	"sort"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

type Format string

const (
	FormatInPerson Format = "in_person"
	FormatHybrid   Format = "hybrid"
	FormatOnline   Format = "online"
)

type SessionStatus string

const (
	SessionOpen       SessionStatus = "open"
	SessionAlmostFull SessionStatus = "almost_full"
	SessionFull       SessionStatus = "full"
)

// Offering is a bootcamp definition. Price is in whole FCFA.
type Offering struct {
	Slug          string       `json:"slug" bson:"_id"`
	Title         string       `json:"title" bson:"title"`
	Tagline       string       `json:"tagline" bson:"tagline"`
	Description   string       `json:"description" bson:"description"`
	Duration      string       `json:"duration" bson:"duration"`
	Hours         int          `json:"hours" bson:"hours"`
	Level         Level        `json:"level" bson:"level"`
	Format        Format       `json:"format" bson:"format"`
	Price         int64        `json:"price" bson:"price"`
	Targets       []string     `json:"targets" bson:"targets"`
	Prerequisites []string     `json:"prerequisites" bson:"prerequisites"`
	Outcomes      []string     `json:"outcomes" bson:"outcomes"`
	Program       []ProgramDay `json:"program" bson:"program"`
	Methodology   []string     `json:"methodology" bson:"methodology"`
	Trainer       Trainer      `json:"trainer" bson:"trainer"`
	Includes      []string     `json:"includes" bson:"includes"`
	FAQ           []FAQ        `json:"faq" bson:"faq"`
}

type ProgramDay struct {
	Day     int             `json:"day" bson:"day"`
	Title   string          `json:"title" bson:"title"`
	Modules []ProgramModule `json:"modules" bson:"modules"`
}

type ProgramModule struct {
	Title    string   `json:"title" bson:"title"`
	Duration string   `json:"duration" bson:"duration"`
	Topics   []string `json:"topics" bson:"topics"`
}

type Trainer struct {
	Name      string   `json:"name" bson:"name"`
	Title     string   `json:"title" bson:"title"`
	Bio       string   `json:"bio" bson:"bio"`
	Expertise []string `json:"expertise" bson:"expertise"`
}

type FAQ struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// Session is a dated instance of an Offering. Status is derived from the
// seat counts by the catalog implementations and never persisted.
type Session struct {
	ID             string        `json:"id" bson:"_id"`
	OfferingSlug   string        `json:"bootcampSlug" bson:"bootcamp_slug"`
	DateStart      string        `json:"dateStart" bson:"date_start"`
	DateEnd        string        `json:"dateEnd" bson:"date_end"`
	City           string        `json:"city" bson:"city"`
	Format         Format        `json:"format" bson:"format"`
	Trainer        string        `json:"trainer" bson:"trainer"`
	SpotsTotal     int           `json:"spotsTotal" bson:"spots_total"`
	SpotsRemaining int           `json:"spotsRemaining" bson:"spots_remaining"`
	Status         SessionStatus `json:"status" bson:"-"`
}

// CapacityStatus maps seat counts to a status: full at zero remaining,
// almost_full once a third or less of the seats are left.
func CapacityStatus(total, remaining int) SessionStatus {
	switch {
	case remaining <= 0 || total <= 0:
		return SessionFull
	case remaining*3 <= total:
		return SessionAlmostFull
	default:
		return SessionOpen
	}
}

// WithStatus returns a copy of the session carrying its derived status.
func (s Session) WithStatus() Session {
	s.Status = CapacityStatus(s.SpotsTotal, s.SpotsRemaining)
	return s
}

func (s Session) Selectable() bool {
	return CapacityStatus(s.SpotsTotal, s.SpotsRemaining) != SessionFull
}

func (s Session) Enrolled() int {
	return s.SpotsTotal - s.SpotsRemaining
}

// FillPercent is the share of taken seats, 0..100.
func (s Session) FillPercent() float64 {
	if s.SpotsTotal <= 0 {
		return 0
	}
	return float64(s.Enrolled()) / float64(s.SpotsTotal) * 100
}

func (s Session) Validate() error {
	if s.SpotsTotal < 0 || s.SpotsRemaining < 0 || s.SpotsRemaining > s.SpotsTotal {
		return Invalid("spots remaining must be between 0 and spots total")
	}
	return nil
}

// SortSessions orders sessions by start date then id.
func SortSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].DateStart != sessions[j].DateStart {
			return sessions[i].DateStart < sessions[j].DateStart
		}
		return sessions[i].ID < sessions[j].ID
	})
}

// CourseVideo is one recorded lesson of an offering.
type CourseVideo struct {
	ID            string `json:"id" bson:"_id"`
	OfferingSlug  string `json:"bootcampSlug" bson:"bootcamp_slug"`
	DayNumber     int    `json:"dayNumber" bson:"day_number"`
	ModuleIndex   int    `json:"moduleIndex" bson:"module_index"`
	Title         string `json:"title" bson:"title"`
	Description   string `json:"description" bson:"description"`
	Duration      string `json:"duration" bson:"duration"`
	VideoURL      string `json:"videoUrl" bson:"video_url"`
	ThumbnailURL  string `json:"thumbnailUrl" bson:"thumbnail_url"`
	TotalDuration int    `json:"totalDuration" bson:"total_duration"`
}

// Catalog is the read side of offerings, sessions and videos plus the single
// write path on session capacity.
type Catalog interface {
	ListOfferings(ctx context.Context) ([]Offering, error)
	GetOfferingBySlug(ctx context.Context, slug string) (*Offering, error)
	ListSessions(ctx context.Context) ([]Session, error)
	GetSessionsForOffering(ctx context.Context, slug string) ([]Session, error)
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	ListVideos(ctx context.Context, slug string) ([]CourseVideo, error)
	GetVideo(ctx context.Context, id string) (*CourseVideo, error)
	AdjustSeats(ctx context.Context, sessionID string, delta int) error
}
