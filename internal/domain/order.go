package domain

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
)

type PaymentMode string

const (
	ModeAPI    PaymentMode = "api"
	ModeStatic PaymentMode = "static"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderFailed    OrderStatus = "failed"
	OrderRefunded  OrderStatus = "refunded"
)

// OrderData is the receipt snapshot taken when the buyer leaves for the
// payment page.
type OrderData struct {
	Participant Participant   `json:"participant"`
	Bootcamp    OrderOffering `json:"bootcamp"`
	Session     OrderSession  `json:"session"`
	OrderedAt   string        `json:"orderedAt"`
	Newsletter  bool          `json:"newsletter"`
	ChargeID    string        `json:"chargeId,omitempty"`
}

type OrderOffering struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Duration string `json:"duration"`
	Format   Format `json:"format"`
}

type OrderSession struct {
	ID        string `json:"id"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
	City      string `json:"city"`
	Trainer   string `json:"trainer"`
	Format    Format `json:"format"`
}

func NewOrderData(p Participant, o Offering, s Session, newsletter bool, now time.Time) OrderData {
	return OrderData{
		Participant: p,
		Bootcamp: OrderOffering{
			Slug:     o.Slug,
			Title:    o.Title,
			Price:    o.Price,
			Duration: o.Duration,
			Format:   o.Format,
		},
		Session: OrderSession{
			ID:        s.ID,
			DateStart: s.DateStart,
			DateEnd:   s.DateEnd,
			City:      s.City,
			Trainer:   s.Trainer,
			Format:    s.Format,
		},
		OrderedAt:  now.UTC().Format(time.RFC3339),
		Newsletter: newsletter,
	}
}

// Order is the server-side pending order keyed by the correlation id. Data
// holds the snapshot exactly as it was encoded at checkout.
type Order struct {
	ExternalID   string          `json:"externalId"`
	Mode         PaymentMode     `json:"mode"`
	ChargeID     string          `json:"chargeId,omitempty"`
	PaymentURL   string          `json:"paymentUrl"`
	Amount       int64           `json:"amount"`
	ChargeStatus ChargeStatus    `json:"chargeStatus,omitempty"`
	Status       OrderStatus     `json:"status"`
	OfferingSlug string          `json:"bootcampSlug"`
	SessionID    string          `json:"sessionId"`
	Email        string          `json:"email,omitempty"`
	EnrollmentID string          `json:"enrollmentId,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	ConfirmedAt  *time.Time      `json:"confirmedAt,omitempty"`
}

func NewOrder(externalID string, mode PaymentMode, data OrderData, now time.Time) (Order, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Order{}, errors.Wrap(err, "encode order data")
	}
	return Order{
		ExternalID:   externalID,
		Mode:         mode,
		Amount:       data.Bootcamp.Price,
		Status:       OrderPending,
		OfferingSlug: data.Bootcamp.Slug,
		SessionID:    data.Session.ID,
		Email:        data.Participant.Email,
		Data:         raw,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (o Order) Snapshot() (OrderData, error) {
	var d OrderData
	if len(o.Data) == 0 {
		return d, errors.Wrap(ErrNotFound, "order has no snapshot")
	}
	if err := json.Unmarshal(o.Data, &d); err != nil {
		return d, errors.Wrap(err, "decode order data")
	}
	return d, nil
}

// Redacted drops the buyer's e-mail and the participant snapshot, leaving
// what any holder of the reference may see.
func (o Order) Redacted() Order {
	o.Email = ""
	o.Data = nil
	return o
}

// OwnedBy reports whether email is the buyer's address.
func (o Order) OwnedBy(email string) bool {
	email = NormalizeEmail(email)
	return email != "" && email == o.Email
}

// Submitted reports whether the buyer already received a payment URL.
func (o Order) Submitted() bool {
	return o.PaymentURL != "" && (o.Mode == ModeStatic || o.ChargeID != "")
}

func (o Order) PendingVerification() bool {
	return o.Status == OrderPending
}

// Transition describes the side effects of applying a charge status.
type Transition struct {
	Changed          bool
	SeatDelta        int
	CreateEnrollment bool
	CancelEnrollment bool
	Event            string
}

// Apply moves the order to the given charge status. Statuses never regress:
// a paid order cannot drop and a refunded order cannot be paid again, so
// replayed or out-of-order gateway events are ignored.
func (o *Order) Apply(status ChargeStatus, at time.Time) Transition {
	prev := o.ChargeStatus
	if status == prev || !status.Valid() {
		return Transition{}
	}
	var t Transition
	switch status {
	case ChargeDue:
		if prev.Resolved() {
			return Transition{}
		}
		o.Status = OrderPending
	case ChargePaid:
		if prev == ChargeRefunded || prev == ChargeRefundedPartially {
			return Transition{}
		}
		o.Status = OrderConfirmed
		t.SeatDelta = -1
		t.CreateEnrollment = true
	case ChargeDropped:
		if prev == ChargePaid || prev == ChargeRefunded || prev == ChargeRefundedPartially {
			return Transition{}
		}
		o.Status = OrderFailed
	case ChargeRefundedPartially:
		if prev != ChargePaid {
			return Transition{}
		}
		o.Status = OrderConfirmed
	case ChargeRefunded:
		o.Status = OrderRefunded
		if prev == ChargePaid || prev == ChargeRefundedPartially {
			t.SeatDelta = 1
			t.CancelEnrollment = true
		}
	}
	o.ChargeStatus = status
	o.UpdatedAt = at
	t.Changed = true
	t.Event = "order." + string(status)
	return t
}
