package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Serena-AI862/Serena/internal/models"
)

const userColumns = `id, email, password, name, agency_name, reset_token, reset_token_expiry, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AgencyName,
		&u.ResetToken, &u.ResetTokenExpiry, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// GetUser returns the user with the given id, or nil when no such user exists.
func (s *Store) GetUser(ctx context.Context, id int) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail looks up a user by email, case-insensitively. Emails are
// stored lowercased, so the argument is lowercased before comparison.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

// CreateUser inserts a new user and returns it with the assigned id and
// creation timestamp. The email is lowercased on insert; the unique constraint
// on email surfaces duplicates as an error.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name, agencyName string) (*models.User, error) {
	u := models.User{
		Email:      strings.ToLower(email),
		Password:   passwordHash,
		Name:       name,
		AgencyName: agencyName,
		CreatedAt:  time.Now(),
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password, name, agency_name, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Email, u.Password, u.Name, u.AgencyName, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// StoreResetToken persists a reset token and its expiry on the user record,
// overwriting any prior token.
func (s *Store) StoreResetToken(ctx context.Context, userID int, token string, expiry time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`,
		token, expiry, userID)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// ValidateResetToken reports whether the supplied token matches the stored one
// and the current time is strictly before its expiry. Any mismatch, missing
// token, or expiry yields false, not an error.
func (s *Store) ValidateResetToken(ctx context.Context, userID int, token string) (bool, error) {
	var stored sql.NullString
	var expiry sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT reset_token, reset_token_expiry FROM users WHERE id = $1`, userID).
		Scan(&stored, &expiry)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read reset token: %w", err)
	}

	if !stored.Valid || !expiry.Valid {
		return false, nil
	}
	if stored.String != token {
		return false, nil
	}
	return time.Now().Before(expiry.Time), nil
}

// ClearResetToken unconditionally nulls both token fields.
func (s *Store) ClearResetToken(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET reset_token = NULL, reset_token_expiry = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

// ClearExpiredResetTokens nulls token fields whose expiry has passed. Run
// periodically by the sweep loop in main.
func (s *Store) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET reset_token = NULL, reset_token_expiry = NULL
		 WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
