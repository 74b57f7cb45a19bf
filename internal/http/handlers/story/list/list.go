// Package list implements the HTTP handler for browsing public stories.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

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
	ListPublic(ctx context.Context, genre string, limit int) ([]*models.Story, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Browse public stories
// @Description Returns public stories ordered by views, optionally filtered by genre.
// @Tags Stories
// @Produce  json
// @Param genre query string false "Genre filter"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Response "Stories"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/stories [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.story.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	genre := r.URL.Query().Get("genre")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	stories, err := h.service.ListPublic(r.Context(), genre, limit)
	if err != nil {
		log.Error("failed to list stories", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list stories"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"stories": stories,
	}))
}
