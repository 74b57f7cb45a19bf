// Package auth implements registration, login, logout and profile reads on
// top of the credential store and session registry.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/storyverse/storyverse/internal/lib/jwt"
	"github.com/storyverse/storyverse/internal/lib/password"
	"github.com/storyverse/storyverse/internal/models"
)

// UserRepository is the credential-store contract the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserTheme(ctx context.Context, id int64, theme string) (*models.User, error)
}

// SessionRepository is the session-registry contract.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) (bool, error)
}

// RegisterRequest carries validated registration input.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service wires the repositories to the token maker. The session TTL matches
// the token TTL so both expire together.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	jwtMaker   jwt.Maker
	sessionTTL time.Duration
}

// New creates the auth service.
func New(users UserRepository, sessions SessionRepository, jwtMaker jwt.Maker, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		jwtMaker:   jwtMaker,
		sessionTTL: sessionTTL,
	}
}

// Register creates a user with a hashed password and the default role,
// issues a token and opens a session. Duplicate usernames surface as
// models.ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, "", models.ErrUsernameTaken
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, "", err
	}
	user, err := s.users.CreateUser(ctx, models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
		IsPremium:    false,
		Theme:        "system",
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the email/password pair and opens a session. Unknown email
// and wrong password both return models.ErrInvalidCredentials so the caller
// cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", models.ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) issueSession(ctx context.Context, user *models.User) (string, error) {
	const op = "auth.issueSession"
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Username, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.sessions.CreateSession(ctx, user.ID, token, time.Now().Add(s.sessionTTL)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Logout removes the session for the token. Idempotent: an unknown token is
// not an error. The token itself stays signature-valid until its natural
// expiry; the auth gate does not consult the registry per request.
func (s *Service) Logout(ctx context.Context, token string) error {
	_, err := s.sessions.DeleteSession(ctx, token)
	return err
}

// GetUser returns the user's profile.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

// UpdateTheme stores the user's UI theme preference.
func (s *Service) UpdateTheme(ctx context.Context, id int64, theme string) (*models.User, error) {
	return s.users.UpdateUserTheme(ctx, id, theme)
}
