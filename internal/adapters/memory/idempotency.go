package memory

import (
	"context"
	"sync"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/idempotency"
)

type idempEntry struct {
	resp    idempotency.Response
	expires time.Time
}

// Idempotency is the in-process replay store.
type Idempotency struct {
	mu       sync.Mutex
	entries  map[string]idempEntry
	inflight map[string]time.Time
}

func NewIdempotency() *Idempotency {
	return &Idempotency{entries: map[string]idempEntry{}, inflight: map[string]time.Time{}}
}

func (i *Idempotency) Get(ctx context.Context, key string) (*idempotency.Response, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.entries[key]
	if !ok || time.Now().After(e.expires) {
		delete(i.entries, key)
		return nil, nil
	}
	resp := e.resp
	return &resp, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp idempotency.Response, ttl time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[key] = idempEntry{resp: resp, expires: time.Now().Add(ttl)}
	return nil
}

func (i *Idempotency) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if exp, ok := i.inflight[key]; ok && time.Now().Before(exp) {
		return false, nil
	}
	i.inflight[key] = time.Now().Add(ttl)
	return true, nil
}

func (i *Idempotency) End(ctx context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.inflight, key)
	return nil
}
