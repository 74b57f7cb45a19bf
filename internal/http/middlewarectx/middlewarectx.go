// Package middlewarectx carries the authenticated identity through the
// request context and provides the auth gate and admin gate middleware.
//
// The gate verifies the JWT signature and expiry locally; it does not
// consult the session registry per request. Logout therefore invalidates
// the cookie immediately but a stolen raw token stays usable until expiry.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/storyverse/storyverse/internal/http/response"
	"github.com/storyverse/storyverse/internal/lib/jwt"
	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

// Key is the context key type for request-scoped values.
type Key string

// IdentityKey stores the authenticated Identity in the request context.
const IdentityKey Key = "identity"

// TokenCookie is the cookie the token travels in for browser clients.
const TokenCookie = "token"

// Identity is the caller as established by the auth gate.
type Identity struct {
	UserID   int64
	Username string
	Email    string
	Role     string
}

// GetIdentity extracts the caller from the context. ok is false on
// routes that did not pass through the auth gate or when the caller is
// anonymous.
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}

// extractToken reads the token from the cookie, falling back to the
// Authorization header for non-browser clients.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// RequireAuth rejects requests without a valid token and puts the
// Identity into the context for the handlers downstream.
func RequireAuth(maker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAuth"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := extractToken(r)
			if tokenStr == "" {
				log.Info("request without credentials")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Info("token rejected", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Email:    claims.Email,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the Identity when a valid token is present and
// lets anonymous requests pass through untouched. A bad token is treated
// as anonymous, not rejected.
func OptionalAuth(maker jwt.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Email:    claims.Email,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin-only routes. Must run after RequireAuth.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok || identity.Role != models.RoleAdmin {
				log.Info("admin route denied",
					slog.String("request_id", middleware.GetReqID(r.Context())))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
