package remove

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
	"github.com/storyverse/storyverse/internal/services/story"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, identity story.Identity, id int64) (bool, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.story.remove"
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

	var identity story.Identity
	if caller, ok := middlewarectx.GetIdentity(r.Context()); ok {
		identity = story.Identity{UserID: caller.UserID, Role: caller.Role}
	}

	removed, err := h.service.Delete(r.Context(), identity, id)
	if errors.Is(err, models.ErrAccessDenied) {
		log.Info("story not owned by caller", slog.Int64("story_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}
	if errors.Is(err, models.ErrNotFound) || (err == nil && !removed) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("story not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete story", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete story"))
		return
	}

	log.Info("story deleted", slog.Int64("story_id", id))
	w.WriteHeader(http.StatusNoContent)
}
