package repositories

import (
	"context"
	"database/sql"
	"time"

	"bilimBack/internal/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

// CreatePayment appends a verified callback. gateway_payment_id carries a
// UNIQUE index, so a replayed callback surfaces as ErrDuplicatePayment
// instead of a second record.
func (r *PaymentRepository) CreatePayment(ctx context.Context, record models.PaymentRecord) (models.PaymentRecord, error) {
	query := `
        INSERT INTO payments (gateway_signature, gateway_payment_id, gateway_subscription_id, created_at)
        VALUES (?, ?, ?, ?)
    `
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	result, err := r.DB.ExecContext(ctx, query,
		record.Signature, record.PaymentID, record.SubscriptionID, record.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.PaymentRecord{}, models.ErrDuplicatePayment
		}
		return models.PaymentRecord{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.PaymentRecord{}, err
	}
	record.ID = int(id)
	return record, nil
}

func (r *PaymentRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (models.PaymentRecord, error) {
	var record models.PaymentRecord
	query := `
        SELECT id, gateway_signature, gateway_payment_id, gateway_subscription_id, created_at
        FROM payments
        WHERE gateway_subscription_id = ?
        ORDER BY created_at DESC
        LIMIT 1
    `
	err := r.DB.QueryRowContext(ctx, query, subscriptionID).Scan(
		&record.ID, &record.Signature, &record.PaymentID, &record.SubscriptionID, &record.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.PaymentRecord{}, models.ErrPaymentRecordMissing
	}
	if err != nil {
		return models.PaymentRecord{}, err
	}
	return record, nil
}

func (r *PaymentRepository) DeleteBySubscriptionID(ctx context.Context, subscriptionID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM payments WHERE gateway_subscription_id = ?`, subscriptionID)
	return err
}
