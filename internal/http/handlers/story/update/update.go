// Package update implements the HTTP handler for editing a story. The body
// is partial: absent fields keep their stored values.
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
	"github.com/storyverse/storyverse/internal/services/story"
)

type Request struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Summary     *string   `json:"summary"`
	Genre       *string   `json:"genre"`
	Theme       *string   `json:"theme"`
	Character   *string   `json:"character"`
	Setting     *string   `json:"setting"`
	StoryLength *string   `json:"storyLength"`
	Images      *[]string `json:"images"`
	IsPublic    *bool     `json:"isPublic"`
	IsPremium   *bool     `json:"isPremium"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Get(ctx context.Context, id int64) (*models.Story, error)
	Update(ctx context.Context, identity story.Identity, st models.Story) (*models.Story, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.story.update"
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

	existing, err := h.service.Get(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("story not found"))
		return
	}
	if err != nil {
		log.Error("failed to load story", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update story"))
		return
	}

	applyPatch(existing, req)

	var identity story.Identity
	if caller, ok := middlewarectx.GetIdentity(r.Context()); ok {
		identity = story.Identity{UserID: caller.UserID, Role: caller.Role}
	}

	updated, err := h.service.Update(r.Context(), identity, *existing)
	if errors.Is(err, models.ErrAccessDenied) {
		log.Info("story not owned by caller", slog.Int64("story_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}
	if err != nil {
		log.Error("failed to update story", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update story"))
		return
	}

	log.Info("story updated", slog.Int64("story_id", updated.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"story": updated,
	}))
}

func applyPatch(st *models.Story, req Request) {
	if req.Title != nil {
		st.Title = *req.Title
	}
	if req.Content != nil {
		st.Content = *req.Content
	}
	if req.Summary != nil {
		st.Summary = *req.Summary
	}
	if req.Genre != nil {
		st.Genre = *req.Genre
	}
	if req.Theme != nil {
		st.Theme = *req.Theme
	}
	if req.Character != nil {
		st.Character = *req.Character
	}
	if req.Setting != nil {
		st.Setting = *req.Setting
	}
	if req.StoryLength != nil {
		st.StoryLength = *req.StoryLength
	}
	if req.Images != nil {
		st.Images = *req.Images
	}
	if req.IsPublic != nil {
		st.IsPublic = *req.IsPublic
	}
	if req.IsPremium != nil {
		st.IsPremium = *req.IsPremium
	}
}
