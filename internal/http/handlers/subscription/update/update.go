// Package update implements the HTTP handler for the auto-renew flag.
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

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

// Request must carry autoRenew explicitly; a pointer tells a missing field
// apart from false.
type Request struct {
	AutoRenew *bool `json:"autoRenew"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	ToggleAutoRenew(ctx context.Context, userID, subscriptionID int64, autoRenew bool) (*models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.AutoRenew == nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("autoRenew is required"))
		return
	}

	sub, err := h.service.ToggleAutoRenew(r.Context(), identity.UserID, id, *req.AutoRenew)
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
		log.Error("failed to update subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update subscription"))
		return
	}

	log.Info("auto-renew updated",
		slog.Int64("subscription_id", sub.ID), slog.Bool("auto_renew", sub.AutoRenew))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": sub,
	}))
}
