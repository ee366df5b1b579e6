package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentConfirmed EnrollmentStatus = "confirmed"
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentPending  PaymentStatus = "pending"
	PaymentRefunded PaymentStatus = "refunded"
)

type LearningStatus string

const (
	LearningNotStarted LearningStatus = "not_started"
	LearningInProgress LearningStatus = "in_progress"
	LearningCompleted  LearningStatus = "completed"
)

// Enrollment links a learner to one session. It carries both the back-office
// lifecycle (status, payment) and the learner's progress on the course.
type Enrollment struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"userId"`
	UserName             string           `json:"userName"`
	UserEmail            string           `json:"userEmail"`
	UserPhone            string           `json:"userPhone"`
	OfferingSlug         string           `json:"bootcampSlug"`
	SessionID            string           `json:"sessionId"`
	EnrolledAt           time.Time        `json:"enrolledAt"`
	Status               EnrollmentStatus `json:"status"`
	PaymentStatus        PaymentStatus    `json:"paymentStatus"`
	Amount               int64            `json:"amount"`
	ExternalID           string           `json:"externalId,omitempty"`
	Progress             int              `json:"progress"`
	LearningStatus       LearningStatus   `json:"learningStatus"`
	CertificateRequested bool             `json:"certificateRequested"`
	CertificateIssued    bool             `json:"certificateIssued"`
}

// NewEnrollmentFromOrder builds the enrollment created when a charge is paid.
// userID is empty for guest checkouts.
func NewEnrollmentFromOrder(o Order, data OrderData, userID string, at time.Time) Enrollment {
	return Enrollment{
		ID:             uuid.NewString(),
		UserID:         userID,
		UserName:       data.Participant.FullName(),
		UserEmail:      data.Participant.Email,
		UserPhone:      data.Participant.Phone,
		OfferingSlug:   o.OfferingSlug,
		SessionID:      o.SessionID,
		EnrolledAt:     at,
		Status:         EnrollmentConfirmed,
		PaymentStatus:  PaymentPaid,
		Amount:         o.Amount,
		ExternalID:     o.ExternalID,
		LearningStatus: LearningNotStarted,
	}
}

// Cancel marks the enrollment cancelled and refunded.
func (e *Enrollment) Cancel() {
	e.Status = EnrollmentCancelled
	e.PaymentStatus = PaymentRefunded
}

type EnrollmentFilter struct {
	Query         string
	Status        EnrollmentStatus
	PaymentStatus PaymentStatus
	UserID        string
	OfferingSlug  string
	SessionID     string
}

// Matches applies the filter in memory: Query is a case-insensitive
// substring of the participant name or e-mail, empty fields match anything.
func (f EnrollmentFilter) Matches(e Enrollment) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(e.UserName), q) && !strings.Contains(strings.ToLower(e.UserEmail), q) {
			return false
		}
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && e.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.OfferingSlug != "" && e.OfferingSlug != f.OfferingSlug {
		return false
	}
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	return true
}
