package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

const maxSettleAttempts = 3

// retrySerializable reruns fn while the store reports a serialization
// failure.
func retrySerializable(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxSettleAttempts; attempt++ {
		if err = fn(); !errors.Is(err, domain.ErrSerializationFailure) {
			return err
		}
	}
	return err
}

// update runs fn on the locked order and saves the result.
func (s *Service) update(ctx context.Context, externalID string, fn func(o *domain.Order) error) (*domain.Order, error) {
	var out domain.Order
	err := retrySerializable(func() error {
		return s.store.Settle(ctx, func(tx domain.SettlementTx) error {
			o, err := tx.LockOrder(ctx, externalID)
			if err != nil {
				return err
			}
			if err := fn(o); err != nil {
				return err
			}
			o.UpdatedAt = s.now()
			out = *o
			return tx.SaveOrder(ctx, *o)
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "update order %s", externalID)
	}
	return &out, nil
}

// findOrder resolves the order a charge belongs to, by reference first and
// by charge id otherwise.
func (s *Service) findOrder(ctx context.Context, ch *domain.Charge) (*domain.Order, error) {
	var (
		o   *domain.Order
		err error
	)
	if ch.ExternalID != "" {
		o, err = s.store.GetOrder(ctx, ch.ExternalID)
	}
	if o == nil && ch.ID != "" {
		o, err = s.store.GetOrderByChargeID(ctx, ch.ID)
	}
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.Wrap(domain.ErrNotFound, "charge has no reference")
	}
	return o, nil
}

// applyCharge finds the order a charge belongs to and settles it.
func (s *Service) applyCharge(ctx context.Context, ch *domain.Charge, source string) error {
	o, err := s.findOrder(ctx, ch)
	if err != nil {
		return err
	}
	_, err = s.settle(ctx, *o, ch.ID, ch.Status, source)
	return err
}

// settle applies a charge status to the order. The order, its enrollment and
// the outbox event are written in one transaction; the seat count moves
// afterwards through the catalog.
func (s *Service) settle(ctx context.Context, order domain.Order, chargeID string, status domain.ChargeStatus, source string) (*domain.Order, error) {
	log := observability.LoggerFrom(ctx, s.logger).WithFields(map[string]interface{}{
		"external_id": order.ExternalID,
		"charge_id":   chargeID,
		"status":      status,
		"source":      source,
	})

	var userID string
	if u, err := s.store.GetUserByEmail(ctx, order.Email); err == nil {
		userID = u.ID
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, errors.Wrap(err, "load buyer account")
	}

	var (
		result domain.Order
		tr     domain.Transition
	)
	err := retrySerializable(func() error {
		return s.store.Settle(ctx, func(tx domain.SettlementTx) error {
			o, err := tx.LockOrder(ctx, order.ExternalID)
			if err != nil {
				return err
			}
			now := s.now()
			if o.ChargeID == "" && chargeID != "" {
				o.ChargeID = chargeID
			}
			tr = o.Apply(status, now)
			result = *o
			if !tr.Changed {
				return nil
			}

			data, err := o.Snapshot()
			if err != nil {
				return err
			}
			switch {
			case tr.CreateEnrollment:
				e := domain.NewEnrollmentFromOrder(*o, data, userID, now)
				if err := tx.SaveEnrollment(ctx, e); err != nil {
					return err
				}
				o.EnrollmentID = e.ID
			case tr.CancelEnrollment && o.EnrollmentID != "":
				e, err := tx.GetEnrollment(ctx, o.EnrollmentID)
				if err != nil {
					return err
				}
				e.Cancel()
				if err := tx.SaveEnrollment(ctx, *e); err != nil {
					return err
				}
			}

			payload, err := json.Marshal(domain.NewOrderEvent(*o, data, now))
			if err != nil {
				return errors.Wrap(err, "encode order event")
			}
			if err := tx.AddOutbox(ctx, domain.OutboxEvent{
				ID:            uuid.New(),
				AggregateType: "order",
				AggregateID:   o.ExternalID,
				EventType:     tr.Event,
				Payload:       payload,
				DedupeKey:     o.ExternalID + ":" + string(status),
				CreatedAt:     now,
			}); err != nil {
				return err
			}
			result = *o
			return tx.SaveOrder(ctx, *o)
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "settle order %s", order.ExternalID)
	}
	if !tr.Changed {
		log.Debug("charge status already applied")
		return &result, nil
	}

	if tr.SeatDelta != 0 {
		if err := s.catalog.AdjustSeats(ctx, result.SessionID, tr.SeatDelta); err != nil {
			if errors.Is(err, domain.ErrSessionFull) {
				log.WithError(err).Warn("session overbooked by a paid order")
			} else {
				log.WithError(err).Error("failed to adjust session seats")
			}
		}
	}

	observability.ChargeSettlements.WithLabelValues(string(status), source).Inc()
	if err := s.audit.LogSettlement(ctx, result, source); err != nil {
		log.WithError(err).Warn("failed to audit settlement")
	}
	log.Info("order settled")
	return &result, nil
}

// Confirmation is what the buyer sees after the payment redirect.
type Confirmation struct {
	Bootcamp            domain.Offering `json:"bootcamp"`
	Session             domain.Session  `json:"session"`
	Order               *domain.Order   `json:"order"`
	PendingVerification bool            `json:"pendingVerification"`
}

// Confirmation renders the post-payment page. The order is attached only
// when ref matches the requested session. The participant snapshot is shown,
// and confirmedAt stamped on the first view, only when email is the buyer's.
func (s *Service) Confirmation(ctx context.Context, slug, sessionID, ref, email string) (*Confirmation, error) {
	offering, session, err := s.lookup(ctx, slug, sessionID)
	if err != nil {
		return nil, err
	}
	view := &Confirmation{Bootcamp: *offering, Session: *session, PendingVerification: true}
	if ref == "" {
		return view, nil
	}

	o, err := s.store.GetOrder(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load order")
	}
	if o.OfferingSlug != offering.Slug || o.SessionID != session.ID {
		return view, nil
	}
	view.PendingVerification = o.PendingVerification()
	if !o.OwnedBy(email) {
		redacted := o.Redacted()
		view.Order = &redacted
		return view, nil
	}
	if o.ConfirmedAt == nil {
		o, err = s.update(ctx, ref, func(o *domain.Order) error {
			if o.ConfirmedAt == nil {
				at := s.now()
				o.ConfirmedAt = &at
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	view.Order = o
	return view, nil
}

// GetOrder returns the order, redacted unless email is the buyer's.
func (s *Service) GetOrder(ctx context.Context, ref, email string) (*domain.Order, error) {
	o, err := s.store.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(email) {
		redacted := o.Redacted()
		return &redacted, nil
	}
	return o, nil
}

// ConfirmedOrders lists the orders already confirmed by the buyer.
func (s *Service) ConfirmedOrders(ctx context.Context, email string) ([]domain.Order, error) {
	orders, err := s.store.ListConfirmedOrders(ctx, email)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// ReconcilePending re-reads the charges of api orders left waiting for more
// than olderThan and returns how many of them were resolved.
func (s *Service) ReconcilePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	if !s.gateway.Configured() {
		return 0, nil
	}
	orders, err := s.store.ListStaleOrders(ctx, s.now().Add(-olderThan), limit)
	if err != nil {
		return 0, errors.Wrap(err, "list stale orders")
	}
	resolved := 0
	for _, o := range orders {
		if ctx.Err() != nil {
			return resolved, ctx.Err()
		}
		view, err := s.CheckCharge(ctx, o.ChargeID)
		if err != nil {
			observability.LoggerFrom(ctx, s.logger).WithError(err).WithField("external_id", o.ExternalID).Warn("reconcile failed")
			continue
		}
		if view.Status.Resolved() {
			resolved++
		}
	}
	return resolved, nil
}
