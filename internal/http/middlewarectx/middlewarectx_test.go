package middlewarectx

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyverse/storyverse/internal/lib/jwt"
	"github.com/storyverse/storyverse/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func okHandler(t *testing.T, wantIdentity bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := GetIdentity(r.Context())
		assert.Equal(t, wantIdentity, ok)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret_key", time.Hour)
	token, err := maker.GenerateToken(7, "reader42", "r@example.com", models.RoleUser)
	require.NoError(t, err)

	expiredMaker := jwt.NewJWTMaker("test_secret_key", -time.Hour)
	expired, err := expiredMaker.GenerateToken(7, "reader42", "r@example.com", models.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name       string
		decorate   func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "no credentials",
			decorate:   func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid cookie",
			decorate: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "valid bearer header",
			decorate: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "expired token",
			decorate: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: TokenCookie, Value: expired})
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "garbage token",
			decorate: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not.a.token")
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAuth(maker, testLogger())(okHandler(t, tt.wantStatus == http.StatusOK))
			req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
			tt.decorate(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireAuth_IdentityInContext(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret_key", time.Hour)
	token, err := maker.GenerateToken(7, "reader42", "r@example.com", models.RoleAdmin)
	require.NoError(t, err)

	var got Identity
	handler := RequireAuth(maker, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, Identity{UserID: 7, Username: "reader42", Email: "r@example.com", Role: models.RoleAdmin}, got)
}

func TestOptionalAuth_AnonymousPasses(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret_key", time.Hour)

	handler := OptionalAuth(maker)(okHandler(t, false))
	req := httptest.NewRequest(http.MethodPost, "/api/generate-story", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuth_BadTokenTreatedAsAnonymous(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret_key", time.Hour)

	handler := OptionalAuth(maker)(okHandler(t, false))
	req := httptest.NewRequest(http.MethodPost, "/api/generate-story", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "stale"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret_key", time.Hour)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin passes", models.RoleAdmin, http.StatusOK},
		{"user is rejected", models.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(7, "reader42", "r@example.com", tt.role)
			require.NoError(t, err)

			chain := RequireAuth(maker, testLogger())(
				RequireAdmin(testLogger())(okHandler(t, true)))
			req := httptest.NewRequest(http.MethodPost, "/api/subscriptions/plans", nil)
			req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
			rec := httptest.NewRecorder()

			chain.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
