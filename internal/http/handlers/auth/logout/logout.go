// Package logout implements the HTTP handler for session teardown.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Logout(ctx context.Context, token string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP deletes the session behind the token cookie and clears the
// cookie. Succeeds even without a cookie so a stale client can always reset.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if cookie, err := r.Cookie(middlewarectx.TokenCookie); err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			log.Error("failed to delete session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not log out"))
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	log.Info("logout success")
	render.JSON(w, r, response.OK())
}
