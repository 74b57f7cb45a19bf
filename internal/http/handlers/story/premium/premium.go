// Package premium implements the HTTP handler for the premium story shelf.
package premium

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
	ListPremium(ctx context.Context, userID int64) ([]*models.Story, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Browse premium stories
// @Description Returns the premium shelf. Requires an active premium subscription.
// @Tags Stories
// @Produce  json
// @Success 200 {object} response.Response "Premium stories"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Premium required"
// @Router /api/premium-stories [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.story.premium"
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

	stories, err := h.service.ListPremium(r.Context(), identity.UserID)
	if errors.Is(err, models.ErrPremiumRequired) {
		log.Info("premium shelf denied", slog.Int64("user_id", identity.UserID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("premium subscription required"))
		return
	}
	if err != nil {
		log.Error("failed to list premium stories", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list stories"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"stories": stories,
	}))
}
