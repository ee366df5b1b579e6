package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

// Catalog keeps offerings, sessions and videos in maps guarded by a RWMutex.
type Catalog struct {
	mu        sync.RWMutex
	offerings map[string]domain.Offering
	order     []string
	sessions  map[string]domain.Session
	videos    []domain.CourseVideo
}

func NewCatalog(offerings []domain.Offering, sessions []domain.Session, videos []domain.CourseVideo) *Catalog {
	c := &Catalog{
		offerings: make(map[string]domain.Offering, len(offerings)),
		sessions:  make(map[string]domain.Session, len(sessions)),
		videos:    append([]domain.CourseVideo(nil), videos...),
	}
	for _, o := range offerings {
		c.offerings[o.Slug] = o
		c.order = append(c.order, o.Slug)
	}
	for _, s := range sessions {
		c.sessions[s.ID] = s
	}
	return c
}

func (c *Catalog) ListOfferings(ctx context.Context) ([]domain.Offering, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Offering, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.offerings[slug])
	}
	return out, nil
}

func (c *Catalog) GetOfferingBySlug(ctx context.Context, slug string) (*domain.Offering, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.offerings[slug]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "bootcamp %q", slug)
	}
	return &o, nil
}

func (c *Catalog) ListSessions(ctx context.Context) ([]domain.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filterSessions(func(domain.Session) bool { return true }), nil
}

func (c *Catalog) GetSessionsForOffering(ctx context.Context, slug string) ([]domain.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filterSessions(func(s domain.Session) bool { return s.OfferingSlug == slug }), nil
}

func (c *Catalog) filterSessions(keep func(domain.Session) bool) []domain.Session {
	out := make([]domain.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		if keep(s) {
			out = append(out, s.WithStatus())
		}
	}
	domain.SortSessions(out)
	return out
}

func (c *Catalog) GetSessionByID(ctx context.Context, id string) (*domain.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "session %q", id)
	}
	s = s.WithStatus()
	return &s, nil
}

func (c *Catalog) ListVideos(ctx context.Context, slug string) ([]domain.CourseVideo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.CourseVideo
	for _, v := range c.videos {
		if v.OfferingSlug == slug {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return out[i].ModuleIndex < out[j].ModuleIndex
	})
	return out, nil
}

func (c *Catalog) GetVideo(ctx context.Context, id string) (*domain.CourseVideo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.videos {
		if v.ID == id {
			v := v
			return &v, nil
		}
	}
	return nil, errors.Wrapf(domain.ErrNotFound, "video %q", id)
}

// AdjustSeats moves spotsRemaining by delta within [0, spotsTotal].
func (c *Catalog) AdjustSeats(ctx context.Context, sessionID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionID]
	if !ok {
		return errors.Wrapf(domain.ErrNotFound, "session %q", sessionID)
	}
	next := s.SpotsRemaining + delta
	if next < 0 {
		return errors.Wrapf(domain.ErrSessionFull, "session %q", sessionID)
	}
	if next > s.SpotsTotal {
		next = s.SpotsTotal
	}
	s.SpotsRemaining = next
	c.sessions[sessionID] = s
	return nil
}
