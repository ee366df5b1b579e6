package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository persists pending orders keyed by their external id.
type OrderRepository interface {
	// CreateOrder fails with ErrConflict when the external id is taken.
	CreateOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, externalID string) (*Order, error)
	GetOrderByChargeID(ctx context.Context, chargeID string) (*Order, error)
	SaveOrder(ctx context.Context, o Order) error
	// ListConfirmedOrders returns orders already shown on the confirmation
	// page for the given e-mail, newest first.
	ListConfirmedOrders(ctx context.Context, email string) ([]Order, error)
	// ListStaleOrders returns api-mode orders still waiting on their charge
	// and untouched since before.
	ListStaleOrders(ctx context.Context, before time.Time, limit int) ([]Order, error)
}

type EnrollmentRepository interface {
	ListEnrollments(ctx context.Context, f EnrollmentFilter) ([]Enrollment, error)
	GetEnrollment(ctx context.Context, id string) (*Enrollment, error)
	SaveEnrollment(ctx context.Context, e Enrollment) error
}

type UserRepository interface {
	// CreateUser fails with ErrConflict when the e-mail is registered.
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	SaveUser(ctx context.Context, u User) error
}

type LearningRepository interface {
	ListVideoProgress(ctx context.Context, userID string) (map[string]VideoProgress, error)
	SaveVideoProgress(ctx context.Context, p VideoProgress) error
	// CurrentSubscription returns the latest subscription or ErrNotFound.
	CurrentSubscription(ctx context.Context, userID string) (*Subscription, error)
	SaveSubscription(ctx context.Context, s Subscription) error
}

// OutboxEvent is a domain event waiting to be relayed to the broker.
type OutboxEvent struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	DedupeKey     string
	CreatedAt     time.Time
	PublishedAt   *time.Time
	// Attempts counts relay runs that failed to publish the event.
	Attempts int
}

type OutboxRepository interface {
	PendingOutbox(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	// RecordOutboxFailure counts a failed relay run. A dead event leaves the
	// pending set for good.
	RecordOutboxFailure(ctx context.Context, id uuid.UUID, dead bool) error
}

type SiteSettingsRepository interface {
	// GetSiteSettings returns ErrNotFound until settings are first saved.
	GetSiteSettings(ctx context.Context) (*SiteSettings, error)
	SaveSiteSettings(ctx context.Context, s SiteSettings) error
}

// SettlementTx is the view of the store inside a settlement transaction.
type SettlementTx interface {
	LockOrder(ctx context.Context, externalID string) (*Order, error)
	SaveOrder(ctx context.Context, o Order) error
	GetEnrollment(ctx context.Context, id string) (*Enrollment, error)
	SaveEnrollment(ctx context.Context, e Enrollment) error
	AddOutbox(ctx context.Context, ev OutboxEvent) error
}

// Store groups every repository the services need. Settle runs fn atomically;
// the order row stays locked until fn returns.
type Store interface {
	OrderRepository
	EnrollmentRepository
	UserRepository
	LearningRepository
	OutboxRepository
	SiteSettingsRepository
	Settle(ctx context.Context, fn func(tx SettlementTx) error) error
}

// OrderEvent is the payload of order.* events.
type OrderEvent struct {
	ExternalID    string       `json:"externalId"`
	ChargeID      string       `json:"chargeId,omitempty"`
	Status        ChargeStatus `json:"status"`
	OrderStatus   OrderStatus  `json:"orderStatus"`
	Amount        int64        `json:"amount"`
	Email         string       `json:"email"`
	Name          string       `json:"name"`
	OfferingSlug  string       `json:"bootcampSlug"`
	OfferingTitle string       `json:"bootcampTitle"`
	SessionID     string       `json:"sessionId"`
	SessionCity   string       `json:"sessionCity"`
	DateStart     string       `json:"dateStart"`
	DateEnd       string       `json:"dateEnd"`
	EnrollmentID  string       `json:"enrollmentId,omitempty"`
	Newsletter    bool         `json:"newsletter"`
	OccurredAt    time.Time    `json:"occurredAt"`
}

func NewOrderEvent(o Order, data OrderData, at time.Time) OrderEvent {
	return OrderEvent{
		ExternalID:    o.ExternalID,
		ChargeID:      o.ChargeID,
		Status:        o.ChargeStatus,
		OrderStatus:   o.Status,
		Amount:        o.Amount,
		Email:         o.Email,
		Name:          data.Participant.FullName(),
		OfferingSlug:  o.OfferingSlug,
		OfferingTitle: data.Bootcamp.Title,
		SessionID:     o.SessionID,
		SessionCity:   data.Session.City,
		DateStart:     data.Session.DateStart,
		DateEnd:       data.Session.DateEnd,
		EnrollmentID:  o.EnrollmentID,
		Newsletter:    data.Newsletter,
		OccurredAt:    at,
	}
}
