package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storyverse/storyverse/internal/models"
)

const storyColumns = `id, user_id, title, content, summary, genre, theme,
			  character, setting, story_length, images, is_public, is_premium,
			  rating, views, created_at`

func scanStory(scan func(dest ...any) error) (*models.Story, error) {
	st := &models.Story{}
	var userID sql.NullInt64
	var images []byte
	if err := scan(&st.ID, &userID, &st.Title, &st.Content, &st.Summary, &st.Genre,
		&st.Theme, &st.Character, &st.Setting, &st.StoryLength, &images,
		&st.IsPublic, &st.IsPremium, &st.Rating, &st.Views, &st.CreatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		st.UserID = &userID.Int64
	}
	if err := json.Unmarshal(images, &st.Images); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Storage) queryStories(ctx context.Context, op, query string, args ...any) ([]*models.Story, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Story
	for rows.Next() {
		st, err := scanStory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetStory returns a story by id or models.ErrNotFound.
func (s *Storage) GetStory(ctx context.Context, id int64) (*models.Story, error) {
	const op = "storage.GetStory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	st, err := scanStory(s.DB.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// ListPublicStories returns public stories ordered by views.
func (s *Storage) ListPublicStories(ctx context.Context, limit int) ([]*models.Story, error) {
	const op = "storage.ListPublicStories"
	query := `SELECT ` + storyColumns + ` FROM stories
			  WHERE is_public = true
			  ORDER BY views DESC
			  LIMIT $1`
	return s.queryStories(ctx, op, query, limit)
}

// ListStoriesByGenre returns public stories for one genre ordered by views.
func (s *Storage) ListStoriesByGenre(ctx context.Context, genre string, limit int) ([]*models.Story, error) {
	const op = "storage.ListStoriesByGenre"
	query := `SELECT ` + storyColumns + ` FROM stories
			  WHERE is_public = true AND genre = $1
			  ORDER BY views DESC
			  LIMIT $2`
	return s.queryStories(ctx, op, query, genre, limit)
}

// ListPremiumStories returns public premium stories ordered by views.
func (s *Storage) ListPremiumStories(ctx context.Context, limit int) ([]*models.Story, error) {
	const op = "storage.ListPremiumStories"
	query := `SELECT ` + storyColumns + ` FROM stories
			  WHERE is_public = true AND is_premium = true
			  ORDER BY views DESC
			  LIMIT $1`
	return s.queryStories(ctx, op, query, limit)
}

// CreateStory inserts a story and returns it.
func (s *Storage) CreateStory(ctx context.Context, story models.Story) (*models.Story, error) {
	const op = "storage.CreateStory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	images, err := json.Marshal(story.Images)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if story.Images == nil {
		images = []byte(`[]`)
	}
	query := `INSERT INTO stories (user_id, title, content, summary, genre, theme,
			      character, setting, story_length, images, is_public, is_premium)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING ` + storyColumns
	row := s.DB.QueryRowContext(ctx, query,
		story.UserID, story.Title, story.Content, story.Summary, story.Genre, story.Theme,
		story.Character, story.Setting, story.StoryLength, images, story.IsPublic, story.IsPremium)
	created, err := scanStory(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// UpdateStory overwrites a story's content fields and returns the new row,
// or models.ErrNotFound.
func (s *Storage) UpdateStory(ctx context.Context, story models.Story) (*models.Story, error) {
	const op = "storage.UpdateStory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	images, err := json.Marshal(story.Images)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if story.Images == nil {
		images = []byte(`[]`)
	}
	query := `UPDATE stories
			  SET title = $1, content = $2, summary = $3, genre = $4, theme = $5,
			      character = $6, setting = $7, story_length = $8, images = $9,
			      is_public = $10, is_premium = $11
			  WHERE id = $12
			  RETURNING ` + storyColumns
	row := s.DB.QueryRowContext(ctx, query,
		story.Title, story.Content, story.Summary, story.Genre, story.Theme,
		story.Character, story.Setting, story.StoryLength, images,
		story.IsPublic, story.IsPremium, story.ID)
	updated, err := scanStory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteStory removes a story; false when it did not exist.
func (s *Storage) DeleteStory(ctx context.Context, id int64) (bool, error) {
	const op = "storage.DeleteStory"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// IncrementStoryViews bumps the view counter.
func (s *Storage) IncrementStoryViews(ctx context.Context, id int64) error {
	const op = "storage.IncrementStoryViews"
	if _, err := s.DB.ExecContext(ctx,
		`UPDATE stories SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
