package repository

import (
	"context"
	"fmt"

	"github.com/storyverse/storyverse/internal/models"
)

const paymentColumns = `id, user_id, subscription_id, amount, currency, status,
			  payment_method, transaction_id, created_at`

// CreatePayment appends a payment row. The ledger exposes no update or
// delete.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (*models.Payment, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_id, subscription_id, amount, currency, status, payment_method, transaction_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + paymentColumns
	p := &models.Payment{}
	if err := s.DB.QueryRowContext(ctx, query,
		payment.UserID, payment.SubscriptionID, payment.Amount, payment.Currency,
		payment.Status, payment.PaymentMethod, payment.TransactionID).Scan(
		&p.ID, &p.UserID, &p.SubscriptionID, &p.Amount, &p.Currency,
		&p.Status, &p.PaymentMethod, &p.TransactionID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPaymentsByUser returns the user's payments newest first.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID int64) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.SubscriptionID, &p.Amount, &p.Currency,
			&p.Status, &p.PaymentMethod, &p.TransactionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
