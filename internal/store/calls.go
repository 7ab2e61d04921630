package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Serena-AI862/Serena/internal/models"
)

const callColumns = `id, user_id, phone_number, duration_seconds, call_type, appointment_booked, rating, timestamp, notes`

func scanCalls(rows *sql.Rows) ([]models.Call, error) {
	calls := []models.Call{}
	for rows.Next() {
		var c models.Call
		if err := rows.Scan(&c.ID, &c.UserID, &c.PhoneNumber, &c.DurationSeconds,
			&c.CallType, &c.AppointmentBooked, &c.Rating, &c.Timestamp, &c.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// GetCalls returns all of a user's calls, newest first.
func (s *Store) GetCalls(ctx context.Context, userID int) ([]models.Call, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+callColumns+` FROM calls WHERE user_id = $1 ORDER BY timestamp DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calls: %w", err)
	}
	defer rows.Close()
	return scanCalls(rows)
}

// GetCallsSince returns a user's calls with timestamp at or after since.
// The stats aggregator uses this to fetch the rolling 7-day window.
func (s *Store) GetCallsSince(ctx context.Context, userID int, since time.Time) ([]models.Call, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+callColumns+` FROM calls WHERE user_id = $1 AND timestamp >= $2`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch call window: %w", err)
	}
	defer rows.Close()
	return scanCalls(rows)
}

// CreateCall inserts a call row and returns it with its assigned id.
func (s *Store) CreateCall(ctx context.Context, call models.Call) (*models.Call, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO calls (user_id, phone_number, duration_seconds, call_type, appointment_booked, rating, timestamp, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		call.UserID, call.PhoneNumber, call.DurationSeconds, call.CallType,
		call.AppointmentBooked, call.Rating, call.Timestamp, call.Notes).Scan(&call.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}
	return &call, nil
}
