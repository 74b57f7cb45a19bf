package repository

import (
	"context"
	"fmt"

	"github.com/storyverse/storyverse/internal/models"
)

// ListGenres returns the seeded genre list.
func (s *Storage) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	const op = "storage.ListGenres"
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Genre
	for rows.Next() {
		g := &models.Genre{}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListThemes returns the seeded theme list.
func (s *Storage) ListThemes(ctx context.Context) ([]*models.Theme, error) {
	const op = "storage.ListThemes"
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM themes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Theme
	for rows.Next() {
		th := &models.Theme{}
		if err := rows.Scan(&th.ID, &th.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, th)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
