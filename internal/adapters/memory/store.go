// Package memory is the in-process storage driver. It backs STORAGE_DRIVER=memory
// and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

type Store struct {
	mu            sync.RWMutex
	orders        map[string]domain.Order
	enrollments   map[string]domain.Enrollment
	enrollOrder   []string
	users         map[string]domain.User
	progress      map[string]map[string]domain.VideoProgress
	subscriptions map[string][]domain.Subscription
	outbox        []domain.OutboxEvent
	deadOutbox    map[uuid.UUID]bool
	site          *domain.SiteSettings
}

func NewStore() *Store {
	return &Store{
		orders:        make(map[string]domain.Order),
		enrollments:   make(map[string]domain.Enrollment),
		users:         make(map[string]domain.User),
		progress:      make(map[string]map[string]domain.VideoProgress),
		subscriptions: make(map[string][]domain.Subscription),
		deadOutbox:    make(map[uuid.UUID]bool),
	}
}

func copyOrder(o domain.Order) domain.Order {
	o.Data = append([]byte(nil), o.Data...)
	if o.ConfirmedAt != nil {
		t := *o.ConfirmedAt
		o.ConfirmedAt = &t
	}
	return o
}

func (s *Store) CreateOrder(ctx context.Context, o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ExternalID]; ok {
		return errors.Wrapf(domain.ErrConflict, "order %q exists", o.ExternalID)
	}
	s.orders[o.ExternalID] = copyOrder(o)
	return nil
}

func (s *Store) GetOrder(ctx context.Context, externalID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[externalID]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "order %q", externalID)
	}
	o = copyOrder(o)
	return &o, nil
}

func (s *Store) GetOrderByChargeID(ctx context.Context, chargeID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if chargeID != "" && o.ChargeID == chargeID {
			o = copyOrder(o)
			return &o, nil
		}
	}
	return nil, errors.Wrapf(domain.ErrNotFound, "charge %q", chargeID)
}

func (s *Store) SaveOrder(ctx context.Context, o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveOrder(o)
}

func (s *Store) saveOrder(o domain.Order) error {
	if _, ok := s.orders[o.ExternalID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "order %q", o.ExternalID)
	}
	s.orders[o.ExternalID] = copyOrder(o)
	return nil
}

func (s *Store) ListConfirmedOrders(ctx context.Context, email string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = domain.NormalizeEmail(email)
	var out []domain.Order
	for _, o := range s.orders {
		if o.ConfirmedAt != nil && o.Email == email {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConfirmedAt.After(*out[j].ConfirmedAt) })
	return out, nil
}

func (s *Store) ListStaleOrders(ctx context.Context, before time.Time, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.Mode == domain.ModeAPI && o.ChargeID != "" && o.Status == domain.OrderPending && o.UpdatedAt.Before(before) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListEnrollments(ctx context.Context, f domain.EnrollmentFilter) ([]domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Enrollment{}
	for _, id := range s.enrollOrder {
		e := s.enrollments[id]
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEnrollment(id)
}

func (s *Store) getEnrollment(id string) (*domain.Enrollment, error) {
	e, ok := s.enrollments[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "enrollment %q", id)
	}
	return &e, nil
}

func (s *Store) SaveEnrollment(ctx context.Context, e domain.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveEnrollment(e)
	return nil
}

func (s *Store) saveEnrollment(e domain.Enrollment) {
	if _, ok := s.enrollments[e.ID]; !ok {
		s.enrollOrder = append(s.enrollOrder, e.ID)
	}
	s.enrollments[e.ID] = e
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return errors.Wrapf(domain.ErrConflict, "e-mail %q already registered", u.Email)
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return errors.Wrapf(domain.ErrConflict, "user %q exists", u.ID)
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "user %q", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = domain.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errors.Wrapf(domain.ErrNotFound, "user %q", email)
}

func (s *Store) SaveUser(ctx context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "user %q", u.ID)
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) ListVideoProgress(ctx context.Context, userID string) (map[string]domain.VideoProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.VideoProgress, len(s.progress[userID]))
	for k, v := range s.progress[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SaveVideoProgress(ctx context.Context, p domain.VideoProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress[p.UserID] == nil {
		s.progress[p.UserID] = make(map[string]domain.VideoProgress)
	}
	s.progress[p.UserID][p.VideoID] = p
	return nil
}

func (s *Store) CurrentSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := s.subscriptions[userID]
	if len(subs) == 0 {
		return nil, errors.Wrapf(domain.ErrNotFound, "subscription for %q", userID)
	}
	latest := subs[0]
	for _, sub := range subs[1:] {
		if sub.StartDate.After(latest.StartDate) {
			latest = sub
		}
	}
	return &latest, nil
}

func (s *Store) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subscriptions[sub.UserID]
	for i := range subs {
		if subs[i].ID == sub.ID {
			subs[i] = sub
			return nil
		}
	}
	s.subscriptions[sub.UserID] = append(subs, sub)
	return nil
}

func (s *Store) PendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.OutboxEvent
	for _, ev := range s.outbox {
		if ev.PublishedAt == nil && !s.deadOutbox[ev.ID] {
			out = append(out, ev)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].ID == id {
			s.outbox[i].PublishedAt = &at
			return nil
		}
	}
	return errors.Wrapf(domain.ErrNotFound, "outbox %s", id)
}

func (s *Store) RecordOutboxFailure(ctx context.Context, id uuid.UUID, dead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].ID == id {
			s.outbox[i].Attempts++
			if dead {
				s.deadOutbox[id] = true
			}
			return nil
		}
	}
	return errors.Wrapf(domain.ErrNotFound, "outbox %s", id)
}

func (s *Store) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.site == nil {
		return nil, errors.Wrap(domain.ErrNotFound, "site settings")
	}
	site := *s.site
	return &site, nil
}

func (s *Store) SaveSiteSettings(ctx context.Context, site domain.SiteSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site = &site
	return nil
}

// Settle holds the write lock for the whole callback, which serialises
// settlements the way a row lock would. Changes are applied only when fn
// succeeds.
func (s *Store) Settle(ctx context.Context, fn func(tx domain.SettlementTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &settlementTx{store: s, orders: map[string]domain.Order{}, enrollments: map[string]domain.Enrollment{}}
	if err := fn(tx); err != nil {
		return err
	}
	for _, o := range tx.orders {
		if err := s.saveOrder(o); err != nil {
			return err
		}
	}
	for _, id := range tx.enrollOrder {
		s.saveEnrollment(tx.enrollments[id])
	}
	s.outbox = append(s.outbox, tx.outbox...)
	return nil
}

type settlementTx struct {
	store       *Store
	orders      map[string]domain.Order
	enrollments map[string]domain.Enrollment
	enrollOrder []string
	outbox      []domain.OutboxEvent
}

func (t *settlementTx) LockOrder(ctx context.Context, externalID string) (*domain.Order, error) {
	if o, ok := t.orders[externalID]; ok {
		o = copyOrder(o)
		return &o, nil
	}
	o, ok := t.store.orders[externalID]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "order %q", externalID)
	}
	o = copyOrder(o)
	return &o, nil
}

func (t *settlementTx) SaveOrder(ctx context.Context, o domain.Order) error {
	t.orders[o.ExternalID] = copyOrder(o)
	return nil
}

func (t *settlementTx) GetEnrollment(ctx context.Context, id string) (*domain.Enrollment, error) {
	if e, ok := t.enrollments[id]; ok {
		return &e, nil
	}
	return t.store.getEnrollment(id)
}

func (t *settlementTx) SaveEnrollment(ctx context.Context, e domain.Enrollment) error {
	if _, ok := t.enrollments[e.ID]; !ok {
		t.enrollOrder = append(t.enrollOrder, e.ID)
	}
	t.enrollments[e.ID] = e
	return nil
}

func (t *settlementTx) AddOutbox(ctx context.Context, ev domain.OutboxEvent) error {
	for _, existing := range t.store.outbox {
		if existing.DedupeKey != "" && existing.DedupeKey == ev.DedupeKey {
			return nil
		}
	}
	t.outbox = append(t.outbox, ev)
	return nil
}

// Outbox returns every recorded event, published or not.
func (s *Store) Outbox() []domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OutboxEvent(nil), s.outbox...)
}
