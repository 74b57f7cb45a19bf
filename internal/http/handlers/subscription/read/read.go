// Package read implements the HTTP handler for the caller's active
// subscription.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	GetActiveSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Get the current subscription
// @Description Returns the caller's live subscription. Expired and cancelled terms answer 404.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} response.Response "Active subscription"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "No active subscription"
// @Router /api/user/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"
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

	sub, err := h.service.GetActiveSubscription(r.Context(), identity.UserID)
	if errors.Is(err, models.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no active subscription"))
		return
	}
	if err != nil {
		log.Error("failed to load subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load subscription"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": sub,
	}))
}
