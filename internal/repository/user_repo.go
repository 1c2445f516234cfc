package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/stopfakeai/detection-api/internal/models"
)

// SQLiteUserRepository implements UserRepository for SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLite user repository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = `id, email, password_hash, subscription_tier, stripe_customer_id, stripe_subscription_id, daily_checks, last_check_reset, created_at, updated_at`

func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.SubscriptionTier,
		nullable(user.StripeCustomerID),
		nullable(user.StripeSubscriptionID),
		user.DailyChecks,
		user.LastCheckReset.Format(time.RFC3339),
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteUserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, customerID))
}

func (r *SQLiteUserRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_subscription_id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, subscriptionID))
}

// CheckAndResetDailyChecks resets the daily counter when the stored reset
// marker is from an earlier UTC day. Runs in a transaction so a concurrent
// increment cannot interleave with the reset.
func (r *SQLiteUserRepository) CheckAndResetDailyChecks(ctx context.Context, id string, now time.Time) (*models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := r.scanUser(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	nowUTC := now.UTC()
	if !sameCalendarDay(user.LastCheckReset.UTC(), nowUTC) {
		update := `UPDATE users SET daily_checks = 0, last_check_reset = ?, updated_at = ? WHERE id = ?`
		nowStr := nowUTC.Format(time.RFC3339)
		if _, err := tx.ExecContext(ctx, update, nowStr, nowStr, id); err != nil {
			return nil, err
		}
		user.DailyChecks = 0
		user.LastCheckReset = nowUTC
		user.UpdatedAt = nowUTC
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

// ConsumeDailyCheck charges one check in a single transaction: the counter
// is reset if last_check_reset is from an earlier UTC day, then incremented
// only while still below limit. The limit guard lives in the UPDATE's WHERE
// clause, so concurrent calls cannot both spend the last check. A limit of
// 0 means unlimited; the counter still increments for usage stats. Returns
// the post-update user and whether the check was granted.
func (r *SQLiteUserRepository) ConsumeDailyCheck(ctx context.Context, id string, limit int, now time.Time) (*models.User, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := r.scanUser(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, nil
	}

	nowUTC := now.UTC()
	nowStr := nowUTC.Format(time.RFC3339)

	if !sameCalendarDay(user.LastCheckReset.UTC(), nowUTC) {
		reset := `UPDATE users SET daily_checks = 0, last_check_reset = ?, updated_at = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, reset, nowStr, nowStr, id); err != nil {
			return nil, false, err
		}
		user.DailyChecks = 0
		user.LastCheckReset = nowUTC
	}

	allowed := true
	if limit > 0 {
		consume := `UPDATE users SET daily_checks = daily_checks + 1, updated_at = ? WHERE id = ? AND daily_checks < ?`
		res, err := tx.ExecContext(ctx, consume, nowStr, id, limit)
		if err != nil {
			return nil, false, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, false, err
		}
		allowed = affected > 0
	} else {
		consume := `UPDATE users SET daily_checks = daily_checks + 1, updated_at = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, consume, nowStr, id); err != nil {
			return nil, false, err
		}
	}

	if allowed {
		user.DailyChecks++
	}
	user.UpdatedAt = nowUTC

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return user, allowed, nil
}

func (r *SQLiteUserRepository) UpdateSubscription(ctx context.Context, id, tier, customerID, subscriptionID string) error {
	query := `UPDATE users SET subscription_tier = ?, stripe_customer_id = COALESCE(?, stripe_customer_id), stripe_subscription_id = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		tier,
		nullable(customerID),
		nullable(subscriptionID),
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteUserRepository) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var stripeCustomerID, stripeSubscriptionID sql.NullString
	var lastCheckReset, createdAt, updatedAt string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.SubscriptionTier,
		&stripeCustomerID,
		&stripeSubscriptionID,
		&user.DailyChecks,
		&lastCheckReset,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.StripeCustomerID = stripeCustomerID.String
	user.StripeSubscriptionID = stripeSubscriptionID.String
	user.LastCheckReset, _ = time.Parse(time.RFC3339, lastCheckReset)
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &user, nil
}

// sameCalendarDay reports whether a and b fall on the same calendar day.
// Callers pass times already normalized to UTC.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
