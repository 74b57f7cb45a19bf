// Package repository implements the PostgreSQL storage for users, sessions,
// subscription plans, subscriptions, payments, stories and the seeded
// reference lists.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage wraps the database connection and implements all repository
// methods.
type Storage struct {
	DB *sql.DB
}

// New opens a connection to PostgreSQL and verifies it with a ping.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}
