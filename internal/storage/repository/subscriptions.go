package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/storyverse/storyverse/internal/models"
)

const subscriptionColumns = `id, user_id, plan_id, status, start_date, end_date,
			  auto_renew, created_at, updated_at`

func scanSubscription(scan func(dest ...any) error) (*models.Subscription, error) {
	sub := &models.Subscription{}
	if err := scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.StartDate,
		&sub.EndDate, &sub.AutoRenew, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetUserSubscription returns the user's most recently created subscription
// regardless of status, for display. models.ErrNotFound when none exists.
func (s *Storage) GetUserSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "storage.GetUserSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userID)
	sub, err := scanSubscription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetActiveUserSubscription returns the newest subscription that is still
// live: status active and end_date not in the past. Expiry is computed here
// on read; the stored status is never rewritten by the passage of time.
func (s *Storage) GetActiveUserSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "storage.GetActiveUserSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_id = $1 AND status = 'active' AND end_date >= now()
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userID)
	sub, err := scanSubscription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// SubscribeTx creates a subscription, appends its payment and raises the
// user's premium flag in one transaction, so a crash cannot leave entitlement
// state half-applied.
func (s *Storage) SubscribeTx(ctx context.Context, sub models.Subscription, payment models.Payment) (*models.Subscription, error) {
	const op = "storage.SubscribeTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO subscriptions (user_id, plan_id, status, start_date, end_date, auto_renew)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + subscriptionColumns
	row := tx.QueryRowContext(ctx, query,
		sub.UserID, sub.PlanID, sub.Status, sub.StartDate, sub.EndDate, sub.AutoRenew)
	created, err := scanSubscription(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO payments (user_id, subscription_id, amount, currency, status, payment_method, transaction_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.ExecContext(ctx, query,
		payment.UserID, created.ID, payment.Amount, payment.Currency,
		payment.Status, payment.PaymentMethod, payment.TransactionID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `UPDATE users SET is_premium = true, updated_at = now() WHERE id = $1`
	if _, err = tx.ExecContext(ctx, query, sub.UserID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// UpdateAutoRenew flips the auto-renew flag; no date recomputation.
func (s *Storage) UpdateAutoRenew(ctx context.Context, id int64, autoRenew bool) (*models.Subscription, error) {
	const op = "storage.UpdateAutoRenew"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET auto_renew = $1, updated_at = now()
			  WHERE id = $2
			  RETURNING ` + subscriptionColumns
	row := s.DB.QueryRowContext(ctx, query, autoRenew, id)
	sub, err := scanSubscription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// CancelTx cancels a subscription and, when the user holds no other live
// subscription, lowers the premium flag — all in one transaction. A user
// with two overlapping active subscriptions keeps premium after cancelling
// one.
func (s *Storage) CancelTx(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.CancelTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE subscriptions
			  SET status = 'cancelled', auto_renew = false, updated_at = now()
			  WHERE id = $1
			  RETURNING ` + subscriptionColumns
	row := tx.QueryRowContext(ctx, query, id)
	cancelled, err := scanSubscription(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var remaining int
	query = `SELECT COUNT(*) FROM subscriptions
			 WHERE user_id = $1 AND id <> $2 AND status = 'active' AND end_date >= now()`
	if err = tx.QueryRowContext(ctx, query, cancelled.UserID, id).Scan(&remaining); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if remaining == 0 {
		query = `UPDATE users SET is_premium = false, updated_at = now() WHERE id = $1`
		if _, err = tx.ExecContext(ctx, query, cancelled.UserID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cancelled, nil
}
