package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 24 * time.Hour
	maker := NewJWTMaker(secretKey, tokenTTL)

	tests := []struct {
		name     string
		userID   int64
		username string
		email    string
		role     string
	}{
		{
			name:     "regular user",
			userID:   1,
			username: "reader42",
			email:    "reader42@example.com",
			role:     "user",
		},
		{
			name:     "admin user",
			userID:   7,
			username: "curator",
			email:    "curator@example.com",
			role:     "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.username, tt.email, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker("test_secret_key_1234567890", 24*time.Hour)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage token",
			token: func(_ *testing.T) string {
				return "not.a.token"
			},
		},
		{
			name: "wrong signing secret",
			token: func(t *testing.T) string {
				other := NewJWTMaker("different_secret", 24*time.Hour)
				token, err := other.GenerateToken(1, "reader42", "reader42@example.com", "user")
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				expired := NewJWTMaker("test_secret_key_1234567890", -time.Minute)
				token, err := expired.GenerateToken(1, "reader42", "reader42@example.com", "user")
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token(t))
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
