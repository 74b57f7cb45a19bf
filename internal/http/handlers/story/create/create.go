// Package create implements the HTTP handler for saving a story. Anonymous
// authors are allowed; their stories are stored unowned.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

// Request is the story payload.
type Request struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	Summary     string   `json:"summary"`
	Genre       string   `json:"genre"`
	Theme       string   `json:"theme"`
	Character   string   `json:"character"`
	Setting     string   `json:"setting"`
	StoryLength string   `json:"storyLength"`
	Images      []string `json:"images"`
	IsPublic    bool     `json:"isPublic"`
	IsPremium   bool     `json:"isPremium"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Create(ctx context.Context, userID *int64, story models.Story) (*models.Story, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.story.create"
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

	var userID *int64
	if identity, ok := middlewarectx.GetIdentity(r.Context()); ok {
		userID = &identity.UserID
	}

	story, err := h.service.Create(r.Context(), userID, models.Story{
		Title:       req.Title,
		Content:     req.Content,
		Summary:     req.Summary,
		Genre:       req.Genre,
		Theme:       req.Theme,
		Character:   req.Character,
		Setting:     req.Setting,
		StoryLength: req.StoryLength,
		Images:      req.Images,
		IsPublic:    req.IsPublic,
		IsPremium:   req.IsPremium,
	})
	if err != nil {
		log.Error("failed to create story", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create story"))
		return
	}

	log.Info("story created", slog.Int64("story_id", story.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"story": story,
	}))
}
