package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/storyverse/storyverse/internal/models"
)

// CreateSession records an issued token with its server-side expiry. The row
// is the source of truth for revocation; the token's own expiry claim is
// checked separately by the auth gate.
func (s *Storage) CreateSession(ctx context.Context, userID int64, token string, expiresAt time.Time) (*models.Session, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO sessions (user_id, token, expires_at)
			  VALUES ($1, $2, $3)
			  RETURNING id, user_id, token, expires_at, created_at`
	sess := &models.Session{}
	if err := s.DB.QueryRowContext(ctx, query, userID, token, expiresAt).Scan(
		&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// DeleteSession removes the session for a token. Deleting a token that has
// no session is not an error.
func (s *Storage) DeleteSession(ctx context.Context, token string) (bool, error) {
	const op = "storage.DeleteSession"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// SessionExists reports whether a session row is present for the token.
func (s *Storage) SessionExists(ctx context.Context, token string) (bool, error) {
	const op = "storage.SessionExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM sessions WHERE token = $1)`
	if err := s.DB.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
