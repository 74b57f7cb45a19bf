// Package cancel implements the HTTP handler for subscription cancellation.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
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
	Cancel(ctx context.Context, userID, subscriptionID int64) (*models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Cancel a subscription
// @Description Cancels the caller's subscription. Premium access is withdrawn unless another live subscription remains.
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "Subscription ID"
// @Success 200 {object} response.Response "Cancelled subscription"
// @Failure 403 {object} response.ErrorResponse "Not the owner"
// @Failure 404 {object} response.ErrorResponse "Subscription not found"
// @Router /api/user/subscription/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	sub, err := h.service.Cancel(r.Context(), identity.UserID, id)
	if errors.Is(err, models.ErrAccessDenied) {
		log.Info("subscription not owned by caller", slog.Int64("subscription_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}
	if errors.Is(err, models.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	}
	if err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel subscription"))
		return
	}

	log.Info("subscription cancelled", slog.Int64("subscription_id", sub.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": sub,
	}))
}
