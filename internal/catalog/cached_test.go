package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/catalog"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (m *mapCache) GetJSON(ctx context.Context, key string, out interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return errors.New("miss")
	}
	return json.Unmarshal(b, out)
}

func (m *mapCache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.sets++
	return nil
}

func (m *mapCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	mc := &mapCache{data: map[string][]byte{}}
	c := catalog.NewCached(memory.NewSeededCatalog(), mc, time.Minute, observability.NewNopLogger())

	first, err := c.ListOfferings(ctx)
	if err != nil || len(first) == 0 {
		t.Fatalf("list offerings: %v", err)
	}
	second, err := c.ListOfferings(ctx)
	if err != nil || len(second) != len(first) || second[0].Slug != first[0].Slug {
		t.Fatalf("cached listing differs: %v", err)
	}
	if mc.sets != 1 {
		t.Errorf("expected one cache write, got %d", mc.sets)
	}

	if _, err := c.GetOfferingBySlug(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	sessions, err := c.GetSessionsForOffering(ctx, first[0].Slug)
	if err != nil || len(sessions) == 0 {
		t.Fatalf("sessions: %v", err)
	}
	before := sessions[0].SpotsRemaining
	if err := c.AdjustSeats(ctx, sessions[0].ID, -1); err != nil {
		t.Fatal(err)
	}
	s, err := c.GetSessionByID(ctx, sessions[0].ID)
	if err != nil || s.SpotsRemaining != before-1 {
		t.Errorf("sessions must not be cached, remaining %d", s.SpotsRemaining)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListOfferings(ctx); err != nil {
		t.Fatal(err)
	}
	if mc.sets != 2 {
		t.Errorf("expected a reload after invalidation, got %d writes", mc.sets)
	}
}

func TestCached_InvalidateOfferings(t *testing.T) {
	ctx := context.Background()
	mc := &mapCache{data: map[string][]byte{}}
	c := catalog.NewCached(memory.NewSeededCatalog(), mc, time.Minute, observability.NewNopLogger())

	offerings, err := c.ListOfferings(ctx)
	if err != nil || len(offerings) < 2 {
		t.Fatalf("need two offerings: %v", err)
	}
	changed, kept := offerings[0].Slug, offerings[1].Slug
	for _, slug := range []string{changed, kept} {
		if _, err := c.GetOfferingBySlug(ctx, slug); err != nil {
			t.Fatal(err)
		}
		if _, err := c.ListVideos(ctx, slug); err != nil {
			t.Fatal(err)
		}
	}
	warm := mc.sets

	if err := c.Invalidate(ctx, changed); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOfferingBySlug(ctx, kept); err != nil {
		t.Fatal(err)
	}
	if mc.sets != warm {
		t.Errorf("untouched offerings must stay cached, got %d writes", mc.sets-warm)
	}
	if _, err := c.GetOfferingBySlug(ctx, changed); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListVideos(ctx, changed); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListOfferings(ctx); err != nil {
		t.Fatal(err)
	}
	if mc.sets != warm+3 {
		t.Errorf("expected the offering, its videos and the listing to reload, got %d writes", mc.sets-warm)
	}
}
