// Package models defines the domain models for the application.
package models

import (
	"time"

	"github.com/stopfakeai/detection-api/internal/constants"
)

// User is a registered account. DailyChecks counts detections used today
// and is lazily reset when LastCheckReset falls on an earlier calendar day.
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	SubscriptionTier     string    `json:"subscription_tier"`
	StripeCustomerID     string    `json:"-"`
	StripeSubscriptionID string    `json:"-"`
	DailyChecks          int       `json:"daily_checks"`
	LastCheckReset       time.Time `json:"last_check_reset"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsPaid reports whether the user is on a paying tier.
func (u *User) IsPaid() bool {
	return constants.IsPaidTier(u.SubscriptionTier)
}

// RemainingChecks returns how many checks remain today, or -1 for
// unlimited tiers.
func (u *User) RemainingChecks() int {
	limits := constants.GetTierLimits(u.SubscriptionTier)
	if limits.DailyChecks == 0 {
		return -1
	}
	remaining := limits.DailyChecks - u.DailyChecks
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PaymentStatus represents the state of a Stripe payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records a Stripe checkout outcome for audit and support.
type Payment struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	StripeSessionID string        `json:"stripe_session_id"`
	StripePriceID   string        `json:"stripe_price_id"`
	Tier            string        `json:"tier"`
	AmountCents     int64         `json:"amount_cents"`
	Currency        string        `json:"currency"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
