// Package subscribe implements the HTTP handler that activates a plan for
// the caller: subscription row, ledger entry and premium flag in one go.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
	"github.com/storyverse/storyverse/internal/services/entitlement"
)

// Request carries the chosen plan and the payment form fields.
type Request struct {
	PlanID        int64  `json:"planId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	PaymentAmount string `json:"paymentAmount" validate:"required"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Subscribe(ctx context.Context, userID int64, req entitlement.SubscribeRequest) (*models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Subscribe to a plan
// @Description Activates the plan for the caller and records the payment.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Plan and payment details"
// @Success 201 {object} response.Response "Created subscription"
// @Failure 400 {object} response.ErrorResponse "Missing fields"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Plan not found"
// @Router /api/user/subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.subscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.GetIdentity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub, err := h.service.Subscribe(r.Context(), identity.UserID, entitlement.SubscribeRequest{
		PlanID:        req.PlanID,
		PaymentMethod: req.PaymentMethod,
		PaymentAmount: req.PaymentAmount,
	})
	if errors.Is(err, models.ErrPlanNotFound) {
		log.Info("plan not found", slog.Int64("plan_id", req.PlanID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		log.Error("failed to subscribe", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not subscribe"))
		return
	}

	log.Info("subscription created",
		slog.Int64("subscription_id", sub.ID), slog.Int64("plan_id", sub.PlanID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": sub,
	}))
}
