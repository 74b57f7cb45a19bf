// Package update implements the admin HTTP handler for editing plans.
// The body is partial: absent fields keep their stored values.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

// Request uses pointers so a missing field is distinguishable from a zero
// value.
type Request struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Price        *string   `json:"price"`
	BillingCycle *string   `json:"billingCycle"`
	Features     *[]string `json:"features"`
	IsActive     *bool     `json:"isActive"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	plan, err := h.service.GetPlan(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}
	if err != nil {
		log.Error("failed to load plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update plan"))
		return
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.BillingCycle != nil {
		plan.BillingCycle = *req.BillingCycle
	}
	if req.Features != nil {
		plan.Features = *req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	updated, err := h.service.UpdatePlan(r.Context(), *plan)
	if err != nil {
		log.Error("failed to update plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update plan"))
		return
	}

	log.Info("plan updated", slog.Int64("plan_id", updated.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan": updated,
	}))
}
