// Package create implements the admin HTTP handler for adding plans to the
// catalog.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

// Request is the plan definition. Price is a decimal string.
type Request struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        string   `json:"price" validate:"required"`
	BillingCycle string   `json:"billingCycle" validate:"required,oneof=monthly yearly"`
	Features     []string `json:"features"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	CreatePlan(ctx context.Context, plan models.SubscriptionPlan) (*models.SubscriptionPlan, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Create a subscription plan
// @Description Adds a plan to the catalog. Admin only.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param request body Request true "Plan definition"
// @Success 201 {object} response.Response "Created plan"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Router /api/subscription-plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), models.SubscriptionPlan{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		BillingCycle: req.BillingCycle,
		Features:     req.Features,
		IsActive:     true,
	})
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create plan"))
		return
	}

	log.Info("plan created", slog.Int64("plan_id", plan.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan": plan,
	}))
}
