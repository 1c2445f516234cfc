package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/stopfakeai/detection-api/internal/models"
)

// SQLitePaymentRepository implements PaymentRepository for SQLite.
type SQLitePaymentRepository struct {
	db *sql.DB
}

// NewSQLitePaymentRepository creates a new SQLite payment repository.
func NewSQLitePaymentRepository(db *sql.DB) *SQLitePaymentRepository {
	return &SQLitePaymentRepository{db: db}
}

const paymentColumns = `id, user_id, stripe_session_id, stripe_price_id, tier, amount_cents, currency, status, created_at, updated_at`

func (r *SQLitePaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.UserID,
		payment.StripeSessionID,
		nullable(payment.StripePriceID),
		payment.Tier,
		payment.AmountCents,
		payment.Currency,
		string(payment.Status),
		payment.CreatedAt.Format(time.RFC3339),
		payment.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

func (r *SQLitePaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE stripe_session_id = ?`
	return r.scanPayment(r.db.QueryRowContext(ctx, query, sessionID))
}

func (r *SQLitePaymentRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *SQLitePaymentRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	query := `UPDATE payments SET status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLitePaymentRepository) scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var priceID sql.NullString
	var status, createdAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.StripeSessionID,
		&priceID,
		&p.Tier,
		&p.AmountCents,
		&p.Currency,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.StripePriceID = priceID.String
	p.Status = models.PaymentStatus(status)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}
