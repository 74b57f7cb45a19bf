// Package storygen implements the HTTP handler for AI story generation.
//
// Authenticated callers are limited to one generation per rolling window;
// rejects answer 429 with the whole hours left. Anonymous callers pass the
// limiter but their stories are stored unowned.
package storygen

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

type Handler struct {
	log      *slog.Logger
	service  Service
	limiter  Limiter
	validate *validator.Validate
}

type Service interface {
	Generate(ctx context.Context, userID *int64, settings models.StorySettings) (*models.Story, error)
}

// Limiter meters generations per user.
type Limiter interface {
	Allow(userID int64) (allowed bool, hoursRemaining int)
}

func New(log *slog.Logger, service Service, limiter Limiter) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		limiter:  limiter,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Generate a story
// @Description Produces a story from the given settings with the LLM and saves it.
// @Tags Generation
// @Accept  json
// @Produce  json
// @Param request body models.StorySettings true "Generation settings"
// @Success 200 {object} response.Response "Generated story"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 429 {object} response.Response "Generation limit reached"
// @Router /api/generate-story [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.generate.story"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var settings models.StorySettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(settings); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	var userID *int64
	if identity, ok := middlewarectx.GetIdentity(r.Context()); ok {
		userID = &identity.UserID

		if allowed, hoursRemaining := h.limiter.Allow(identity.UserID); !allowed {
			log.Info("generation limit reached",
				slog.Int64("user_id", identity.UserID),
				slog.Int("hours_remaining", hoursRemaining))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Response{
				Status: response.StatusError,
				Error:  "story generation limit reached",
				Data:   map[string]any{"hoursRemaining": hoursRemaining},
			})
			return
		}
	}

	story, err := h.service.Generate(r.Context(), userID, settings)
	if err != nil {
		log.Error("failed to generate story", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate story"))
		return
	}

	log.Info("story generated", slog.String("title", story.Title))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"story": story,
	}))
}
