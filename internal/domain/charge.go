package domain

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// ChargeStatus mirrors the gateway's charge lifecycle.
type ChargeStatus string

const (
	ChargeDue               ChargeStatus = "due"
	ChargePaid              ChargeStatus = "paid"
	ChargeDropped           ChargeStatus = "dropped"
	ChargeRefunded          ChargeStatus = "refunded"
	ChargeRefundedPartially ChargeStatus = "refunded_partially"
)

// Resolved reports whether the charge left the waiting state.
func (s ChargeStatus) Resolved() bool {
	return s != "" && s != ChargeDue
}

func (s ChargeStatus) Valid() bool {
	switch s {
	case ChargeDue, ChargePaid, ChargeDropped, ChargeRefunded, ChargeRefundedPartially:
		return true
	}
	return false
}

// Charge is the gateway-owned payment attempt. Only the gateway is
// authoritative; local copies are snapshots.
type Charge struct {
	ID          string            `json:"id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Status      ChargeStatus      `json:"status"`
	ExternalID  string            `json:"externalId"`
	Description string            `json:"description"`
	PaymentURL  string            `json:"paymentUrl"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	PaidAt      *time.Time        `json:"paidAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

const externalIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewExternalID builds the correlation reference BF-{base36 millis}-{6 chars}.
func NewExternalID(now time.Time) string {
	var b strings.Builder
	b.WriteString("BF-")
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	b.WriteByte('-')
	for i := 0; i < 6; i++ {
		b.WriteByte(externalIDAlphabet[rand.Intn(len(externalIDAlphabet))])
	}
	return b.String()
}
