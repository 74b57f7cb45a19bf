// Package entitlement owns the plan catalog and the subscription lifecycle:
// subscribe, auto-renew toggling and cancellation, plus the premium flag
// transitions they imply.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storyverse/storyverse/internal/events"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

const (
	plansCacheKey = "plans:active"
	plansCacheTTL = time.Hour
)

// PlanRepository is the catalog storage contract.
type PlanRepository interface {
	ListActivePlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error)
	DeactivatePlan(ctx context.Context, id int64) (bool, error)
}

// SubscriptionRepository is the lifecycle storage contract. SubscribeTx and
// CancelTx are transactional so entitlement state never half-applies.
type SubscriptionRepository interface {
	GetUserSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
	GetActiveUserSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
	SubscribeTx(ctx context.Context, sub models.Subscription, payment models.Payment) (*models.Subscription, error)
	UpdateAutoRenew(ctx context.Context, id int64, autoRenew bool) (*models.Subscription, error)
	CancelTx(ctx context.Context, id int64) (*models.Subscription, error)
}

// PlanCache caches the read-mostly plan catalog. A nil cache disables caching.
type PlanCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher emits lifecycle events. A nil publisher disables emission.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// SubscribeRequest carries validated subscribe input. Amount is a decimal
// string as submitted by the payment form.
type SubscribeRequest struct {
	PlanID        int64
	PaymentMethod string
	PaymentAmount string
}

type Service struct {
	log           *slog.Logger
	plans         PlanRepository
	subscriptions SubscriptionRepository
	cache         PlanCache
	publisher     EventPublisher
	now           func() time.Time
}

// New creates the entitlement service. cache and publisher may be nil.
func New(log *slog.Logger, plans PlanRepository, subscriptions SubscriptionRepository,
	cache PlanCache, publisher EventPublisher) *Service {
	return &Service{
		log:           log,
		plans:         plans,
		subscriptions: subscriptions,
		cache:         cache,
		publisher:     publisher,
		now:           time.Now,
	}
}

// ListPlans returns the active catalog, served from cache when possible.
// Cache failures degrade to a database read.
func (s *Service) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	if s.cache != nil {
		var cached []*models.SubscriptionPlan
		hit, err := s.cache.Get(ctx, plansCacheKey, &cached)
		if err != nil {
			s.log.Warn("plan cache read failed", sl.Err(err))
		}
		if hit {
			return cached, nil
		}
	}

	plans, err := s.plans.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, plansCacheKey, plans, plansCacheTTL); err != nil {
			s.log.Warn("plan cache write failed", sl.Err(err))
		}
	}
	return plans, nil
}

// GetPlan returns a plan by id, active or not.
func (s *Service) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	return s.plans.GetPlan(ctx, id)
}

// CreatePlan adds a plan to the catalog and drops the cached listing.
func (s *Service) CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	created, err := s.plans.CreatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	s.invalidatePlans(ctx)
	return created, nil
}

// UpdatePlan overwrites a plan and drops the cached listing.
func (s *Service) UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	updated, err := s.plans.UpdatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	s.invalidatePlans(ctx)
	return updated, nil
}

// RemovePlan soft-deletes a plan. Existing subscriptions keep their plan
// reference. Returns false when the plan does not exist.
func (s *Service) RemovePlan(ctx context.Context, id int64) (bool, error) {
	removed, err := s.plans.DeactivatePlan(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.invalidatePlans(ctx)
	}
	return removed, nil
}

func (s *Service) invalidatePlans(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, plansCacheKey); err != nil {
		s.log.Warn("plan cache invalidation failed", sl.Err(err))
	}
}

// Subscribe activates a plan for the user. The billing cycle sets the end
// date: monthly adds a month, yearly adds a year, anything else 30 days.
// Payment is recorded and the premium flag raised in the same transaction.
// An unknown or deactivated plan surfaces as models.ErrPlanNotFound.
func (s *Service) Subscribe(ctx context.Context, userID int64, req SubscribeRequest) (*models.Subscription, error) {
	const op = "entitlement.Subscribe"

	plan, err := s.plans.GetPlan(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrPlanNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !plan.IsActive {
		return nil, models.ErrPlanNotFound
	}

	start := s.now()
	var end time.Time
	switch plan.BillingCycle {
	case models.BillingMonthly:
		end = start.AddDate(0, 1, 0)
	case models.BillingYearly:
		end = start.AddDate(1, 0, 0)
	default:
		end = start.AddDate(0, 0, 30)
	}

	sub := models.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionActive,
		StartDate: start,
		EndDate:   end,
		AutoRenew: true,
	}
	payment := models.Payment{
		UserID:        userID,
		Amount:        req.PaymentAmount,
		Currency:      "USD",
		Status:        "succeeded",
		PaymentMethod: req.PaymentMethod,
		TransactionID: "txn_" + uuid.NewString(),
	}

	created, err := s.subscriptions.SubscribeTx(ctx, sub, payment)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.emit(events.SubscriptionActivated, created)
	return created, nil
}

// GetSubscription returns the user's newest subscription regardless of
// status.
func (s *Service) GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	return s.subscriptions.GetUserSubscription(ctx, userID)
}

// GetActiveSubscription returns the user's live subscription, if any.
func (s *Service) GetActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	return s.subscriptions.GetActiveUserSubscription(ctx, userID)
}

// ToggleAutoRenew flips auto-renew on the subscription, which must be the
// caller's current one. A mismatched id is models.ErrAccessDenied.
func (s *Service) ToggleAutoRenew(ctx context.Context, userID, subscriptionID int64, autoRenew bool) (*models.Subscription, error) {
	if err := s.checkOwnership(ctx, userID, subscriptionID); err != nil {
		return nil, err
	}
	return s.subscriptions.UpdateAutoRenew(ctx, subscriptionID, autoRenew)
}

// Cancel marks the subscription cancelled and withdraws premium unless the
// user holds another live subscription. Ownership is checked against the
// caller's current subscription.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID int64) (*models.Subscription, error) {
	if err := s.checkOwnership(ctx, userID, subscriptionID); err != nil {
		return nil, err
	}

	cancelled, err := s.subscriptions.CancelTx(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	s.emit(events.SubscriptionCancelled, cancelled)
	return cancelled, nil
}

func (s *Service) checkOwnership(ctx context.Context, userID, subscriptionID int64) error {
	current, err := s.subscriptions.GetUserSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrAccessDenied
		}
		return err
	}
	if current.ID != subscriptionID {
		return models.ErrAccessDenied
	}
	return nil
}

// emit publishes a lifecycle event. Best effort: failures are logged and
// never bubble up to the request.
func (s *Service) emit(routingKey string, sub *models.Subscription) {
	if s.publisher == nil {
		return
	}
	event := events.SubscriptionEvent{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		EndDate:        sub.EndDate,
		OccurredAt:     s.now(),
	}
	if err := s.publisher.Publish(routingKey, event); err != nil {
		s.log.Warn("lifecycle event publish failed",
			slog.String("routing_key", routingKey), sl.Err(err))
	}
}
