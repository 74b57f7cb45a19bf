// Package login implements the HTTP handler for authentication.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

// Request carries the credential pair.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	log          *slog.Logger
	service      Service
	validate     *validator.Validate
	secureCookie bool
}

// Service is the auth business logic the handler depends on.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

func New(log *slog.Logger, service Service, secureCookie bool) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		validate:     validator.New(),
		secureCookie: secureCookie,
	}
}

// ServeHTTP godoc
// @Summary Log in
// @Description Verifies the credential pair and sets the token cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Credentials"
// @Success 200 {object} response.Response "Authenticated user"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Router /api/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
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

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		// Unknown email and wrong password answer identically.
		log.Info("login rejected")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not log in"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middlewarectx.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	log.Info("login success", slog.Int64("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user.Public(),
	}))
}
