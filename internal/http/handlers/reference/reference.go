// Package reference implements the HTTP handlers for the seeded genre and
// theme lists.
package reference

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Genres(ctx context.Context) ([]*models.Genre, error)
	Themes(ctx context.Context) ([]*models.Theme, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reference.genres"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	genres, err := h.service.Genres(r.Context())
	if err != nil {
		log.Error("failed to list genres", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list genres"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"genres": genres,
	}))
}

func (h *Handler) Themes(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reference.themes"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	themes, err := h.service.Themes(r.Context())
	if err != nil {
		log.Error("failed to list themes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list themes"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"themes": themes,
	}))
}
