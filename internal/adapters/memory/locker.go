package memory

import (
	"context"
	"sync"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

// Locker is the single-process stand-in for the Redis charge lock.
type Locker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]time.Time), now: time.Now}
}

func (l *Locker) AcquireChargeLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if exp, ok := l.locks[key]; ok && now.Before(exp) {
		return false, nil
	}
	l.locks[key] = now.Add(ttl)
	return true, nil
}

func (l *Locker) ReleaseChargeLock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}

// MarkOnce reports whether key was unmarked, marking it for ttl.
func (l *Locker) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.AcquireChargeLock(ctx, "once:"+key, ttl)
}

// AuditEntry is one recorded charge action.
type AuditEntry struct {
	Action     string
	ExternalID string
	ChargeID   string
	Status     domain.ChargeStatus
	Source     string
	At         time.Time
}

// Audit keeps the audit trail in a slice.
type Audit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewAudit() *Audit {
	return &Audit{}
}

func (a *Audit) LogCharge(ctx context.Context, o domain.Order) error {
	a.append(AuditEntry{Action: "charge.created", ExternalID: o.ExternalID, ChargeID: o.ChargeID, Status: o.ChargeStatus, Source: string(o.Mode)})
	return nil
}

func (a *Audit) LogSettlement(ctx context.Context, o domain.Order, source string) error {
	a.append(AuditEntry{Action: "charge.settled", ExternalID: o.ExternalID, ChargeID: o.ChargeID, Status: o.ChargeStatus, Source: source})
	return nil
}

func (a *Audit) append(e AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e.At = time.Now()
	a.entries = append(a.entries, e)
}

func (a *Audit) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditEntry(nil), a.entries...)
}

type window struct {
	count   int64
	expires time.Time
}

// Counter is a fixed-window counter for rate limiting.
type Counter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

func NewCounter() *Counter {
	return &Counter{windows: make(map[string]window), now: time.Now}
}

func (c *Counter) IncrWindow(ctx context.Context, key string, d time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	w := c.windows[key]
	if !now.Before(w.expires) {
		w = window{expires: now.Add(d)}
	}
	w.count++
	c.windows[key] = w
	return w.count, nil
}
