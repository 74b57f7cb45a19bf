// Package jwt issues and verifies the bearer tokens used by the auth gate.
//
// Tokens are self-contained: verification needs no database round trip. The
// session registry exists separately so logout can revoke a token before its
// natural expiry.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims is the payload embedded in every issued token.
type CustomClaims struct {
	UserID               int64  `json:"uid"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Role                 string `json:"role"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt and the rest
}

// Maker describes token issuance and verification.
type Maker interface {
	// GenerateToken signs a token carrying the user's identity and role.
	GenerateToken(userID int64, username, email, role string) (string, error)
	// ParseToken verifies signature and expiry and returns the claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with a symmetric secret and a fixed TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker builds a MakerImpl from the signing secret and token lifetime.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
