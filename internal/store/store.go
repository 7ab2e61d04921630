package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Store is the typed boundary to the relational row store. Single-row lookups
// return (nil, nil) on absence; every other failure propagates wrapped so the
// API layer can map it to a generic 500.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the users and calls tables if they do not exist yet.
// Safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			agency_name TEXT NOT NULL DEFAULT '',
			reset_token TEXT,
			reset_token_expiry TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS calls (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			phone_number TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL CHECK (duration_seconds >= 0),
			call_type TEXT NOT NULL,
			appointment_booked BOOLEAN NOT NULL DEFAULT FALSE,
			rating INTEGER NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			notes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calls_user_timestamp ON calls (user_id, timestamp DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
