// Package catalog decorates a domain.Catalog with a read-through cache for
// the rarely changing bootcamp content. Sessions carry live seat counts and
// always go to the underlying catalog.
package catalog

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

// Cache is satisfied by the Redis adapter. GetJSON reports a miss with
// ErrMiss from the same adapter; any error is treated as a miss here.
type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Cached struct {
	domain.Catalog
	cache  Cache
	ttl    time.Duration
	logger observability.Logger
}

var _ domain.Catalog = (*Cached)(nil)

func NewCached(inner domain.Catalog, cache Cache, ttl time.Duration, logger observability.Logger) *Cached {
	return &Cached{Catalog: inner, cache: cache, ttl: ttl, logger: logger}
}

const (
	keyOfferings = "catalog:offerings"
	keyOffering  = "catalog:offering:"
	keyVideos    = "catalog:videos:"
)

func readThrough[T any](ctx context.Context, c *Cached, key string, load func() (T, error)) (T, error) {
	var v T
	if err := c.cache.GetJSON(ctx, key, &v); err == nil {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if err := c.cache.SetJSON(ctx, key, v, c.ttl); err != nil {
		observability.LoggerFrom(ctx, c.logger).WithError(err).WithField("key", key).Warn("catalog cache write failed")
	}
	return v, nil
}

func (c *Cached) ListOfferings(ctx context.Context) ([]domain.Offering, error) {
	return readThrough(ctx, c, keyOfferings, func() ([]domain.Offering, error) {
		return c.Catalog.ListOfferings(ctx)
	})
}

func (c *Cached) GetOfferingBySlug(ctx context.Context, slug string) (*domain.Offering, error) {
	o, err := readThrough(ctx, c, keyOffering+slug, func() (*domain.Offering, error) {
		return c.Catalog.GetOfferingBySlug(ctx, slug)
	})
	if err == nil && o == nil {
		return nil, errors.Wrapf(domain.ErrNotFound, "bootcamp %q", slug)
	}
	return o, err
}

func (c *Cached) ListVideos(ctx context.Context, slug string) ([]domain.CourseVideo, error) {
	return readThrough(ctx, c, keyVideos+slug, func() ([]domain.CourseVideo, error) {
		return c.Catalog.ListVideos(ctx, slug)
	})
}

// Invalidate drops the cached content of the given offerings, or only the
// listing when none are named.
func (c *Cached) Invalidate(ctx context.Context, slugs ...string) error {
	keys := []string{keyOfferings}
	for _, s := range slugs {
		keys = append(keys, keyOffering+s, keyVideos+s)
	}
	return c.cache.Delete(ctx, keys...)
}
