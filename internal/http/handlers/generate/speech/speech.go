// Package speech implements the HTTP handler for story narration.
package speech

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
)

type Request struct {
	Text string `json:"text"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Narrate(ctx context.Context, text string) (string, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP renders text to speech and returns the audio as a data URL.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.generate.speech"
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
	if req.Text == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("text is required"))
		return
	}

	audio, err := h.service.Narrate(r.Context(), req.Text)
	if err != nil {
		log.Error("failed to generate speech", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate speech"))
		return
	}

	log.Info("speech generated")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"audio": audio,
	}))
}
