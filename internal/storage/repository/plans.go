package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storyverse/storyverse/internal/models"
)

const planColumns = `id, name, description, price, billing_cycle, features,
			  is_active, created_at, updated_at`

func scanPlan(scan func(dest ...any) error) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	var features []byte
	if err := scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.BillingCycle,
		&features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, err
	}
	return p, nil
}

// ListActivePlans returns the active plan catalog.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM subscription_plans
			  WHERE is_active = true
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan returns a plan by id regardless of is_active, or models.ErrNotFound.
func (s *Storage) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)
	p, err := scanPlan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreatePlan inserts a new plan and returns it.
func (s *Storage) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	const op = "storage.CreatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO subscription_plans (name, description, price, billing_cycle, features, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + planColumns
	row := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Price, plan.BillingCycle, features, plan.IsActive)
	created, err := scanPlan(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// UpdatePlan overwrites a plan's mutable fields and returns the new row, or
// models.ErrNotFound.
func (s *Storage) UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	const op = "storage.UpdatePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE subscription_plans
			  SET name = $1, description = $2, price = $3, billing_cycle = $4,
			      features = $5, is_active = $6, updated_at = now()
			  WHERE id = $7
			  RETURNING ` + planColumns
	row := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.Description, plan.Price, plan.BillingCycle, features, plan.IsActive, plan.ID)
	updated, err := scanPlan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeactivatePlan soft-deletes a plan so historical subscriptions keep their
// references. Returns false when the plan does not exist.
func (s *Storage) DeactivatePlan(ctx context.Context, id int64) (bool, error) {
	const op = "storage.DeactivatePlan"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscription_plans SET is_active = false, updated_at = now() WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}
