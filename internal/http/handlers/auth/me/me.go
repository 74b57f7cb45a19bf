// Package me implements the HTTP handler for the caller's own profile.
package me

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
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.GetIdentity(r.Context())
	if !ok {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	user, err := h.service.GetUser(r.Context(), identity.UserID)
	if errors.Is(err, models.ErrNotFound) {
		// Token valid but the account is gone.
		log.Info("user no longer exists", slog.Int64("user_id", identity.UserID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load user"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user.Public(),
	}))
}
