// Package repository defines repository interfaces for data access.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/stopfakeai/detection-api/internal/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// CheckAndResetDailyChecks zeroes daily_checks when last_check_reset
	// falls on an earlier UTC calendar day than now, and returns the
	// refreshed user. The reset happens lazily on read rather than via a
	// scheduled job.
	CheckAndResetDailyChecks(ctx context.Context, id string, now time.Time) (*models.User, error)
	// ConsumeDailyCheck atomically resets (on day rollover) and charges
	// one check, refusing once daily_checks reaches limit (0 = unlimited).
	// Returns the post-update user and whether the check was granted.
	ConsumeDailyCheck(ctx context.Context, id string, limit int, now time.Time) (*models.User, bool, error)
	UpdateSubscription(ctx context.Context, id, tier, customerID, subscriptionID string) error
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)
}

// PaymentRepository defines methods for payment data access.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error)
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error
}

// Repositories bundles all repository instances.
type Repositories struct {
	User    UserRepository
	Payment PaymentRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		User:    NewSQLiteUserRepository(db),
		Payment: NewSQLitePaymentRepository(db),
	}
}
