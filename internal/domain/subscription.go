package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type PlanID string

const (
	PlanBasic      PlanID = "basic"
	PlanPremium    PlanID = "premium"
	PlanEnterprise PlanID = "enterprise"
)

type Plan struct {
	ID           PlanID   `json:"id"`
	Name         string   `json:"name"`
	Price        int64    `json:"price"`
	BillingCycle string   `json:"billingCycle"`
	Features     []string `json:"features"`
}

var plans = []Plan{
	{
		ID:           PlanBasic,
		Name:         "Basic",
		Price:        0,
		BillingCycle: "free",
		Features: []string{
			"Accès aux vidéos d'introduction",
			"Support par email",
			"Newsletter mensuelle",
		},
	},
	{
		ID:           PlanPremium,
		Name:         "Premium",
		Price:        25000,
		BillingCycle: "monthly",
		Features: []string{
			"Accès illimité aux vidéos",
			"Replay des sessions live",
			"Ressources téléchargeables",
			"Support prioritaire",
			"Communauté privée",
		},
	},
	{
		ID:           PlanEnterprise,
		Name:         "Enterprise",
		Price:        150000,
		BillingCycle: "monthly",
		Features: []string{
			"Tout Premium inclus",
			"Formations en présentiel incluses",
			"Coaching personnalisé",
			"Accès équipe (5 membres)",
			"Reporting et analytics",
			"Account manager dédié",
		},
	},
}

func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func PlanByID(id PlanID) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type Subscription struct {
	ID           string             `json:"id"`
	UserID       string             `json:"userId"`
	Plan         PlanID             `json:"plan"`
	PlanName     string             `json:"planName"`
	Price        int64              `json:"price"`
	BillingCycle string             `json:"billingCycle"`
	StartDate    time.Time          `json:"startDate"`
	EndDate      time.Time          `json:"endDate"`
	Status       SubscriptionStatus `json:"status"`
	Features     []string           `json:"features"`
}

// NewSubscription starts a one-month period on the given plan.
func NewSubscription(userID string, plan Plan, now time.Time) Subscription {
	return Subscription{
		ID:           uuid.NewString(),
		UserID:       userID,
		Plan:         plan.ID,
		PlanName:     plan.Name,
		Price:        plan.Price,
		BillingCycle: plan.BillingCycle,
		StartDate:    now,
		EndDate:      now.AddDate(0, 1, 0),
		Status:       SubscriptionActive,
		Features:     plan.Features,
	}
}

// DaysRemaining rounds the time left up to whole days; never negative.
func (s Subscription) DaysRemaining(now time.Time) int {
	left := s.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

// EffectiveStatus reports expired for active subscriptions past their end.
func (s Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubscriptionActive && !now.Before(s.EndDate) {
		return SubscriptionExpired
	}
	return s.Status
}
