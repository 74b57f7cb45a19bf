// Package payment exposes the append-only payment ledger.
package payment

import (
	"context"

	"github.com/storyverse/storyverse/internal/models"
)

// Repository is the ledger storage contract.
type Repository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID int64) ([]*models.Payment, error)
}

type Service struct {
	payments Repository
}

func New(payments Repository) *Service {
	return &Service{payments: payments}
}

// Record appends a payment. The ledger has no update or delete path.
func (s *Service) Record(ctx context.Context, payment models.Payment) (*models.Payment, error) {
	return s.payments.CreatePayment(ctx, payment)
}

// ListByUser returns the user's payment history, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*models.Payment, error) {
	return s.payments.ListPaymentsByUser(ctx, userID)
}
