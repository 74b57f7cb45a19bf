// Package register implements the HTTP handler for account creation.
//
// The handler decodes and validates the JSON body, delegates to the auth
// service and on success sets the token cookie and returns the public user.
package register

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
	"github.com/storyverse/storyverse/internal/services/auth"
)

// Request is the registration input.
type Request struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Handler handles HTTP requests for registration.
type Handler struct {
	log          *slog.Logger
	service      Service
	validate     *validator.Validate
	secureCookie bool
}

// Service is the auth business logic the handler depends on.
type Service interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*models.User, string, error)
}

// New creates a Handler. secureCookie marks the token cookie Secure, which
// production config enables.
func New(log *slog.Logger, service Service, secureCookie bool) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		validate:     validator.New(),
		secureCookie: secureCookie,
	}
}

// ServeHTTP godoc
// @Summary Register a new account
// @Description Creates a user, opens a session and sets the token cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Registration data"
// @Success 201 {object} response.Response "Created user"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 409 {object} response.ErrorResponse "Username already taken"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /api/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
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

	user, token, err := h.service.Register(r.Context(), auth.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, models.ErrUsernameTaken) {
		log.Info("username already taken", slog.String("username", req.Username))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("username already taken"))
		return
	}
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register user"))
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

	log.Info("user registered", slog.Int64("user_id", user.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user.Public(),
	}))
}
