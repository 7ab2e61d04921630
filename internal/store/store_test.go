package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Serena-AI862/Serena/internal/models"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	return New(db), mock, func() { db.Close() }
}

func userRow(id int, email string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password", "name", "agency_name",
		"reset_token", "reset_token_expiry", "created_at",
	}).AddRow(id, email, "hash", "John Adeyo", "Golden Gate Properties", nil, nil, time.Now())
}

func TestStore_GetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock, closeDB := newTestStore(t)
		defer closeDB()

		mock.ExpectQuery("FROM users WHERE id").
			WithArgs(1).
			WillReturnRows(userRow(1, "agent@example.com"))

		user, err := store.GetUser(context.Background(), 1)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "agent@example.com", user.Email)
	})

	t.Run("absent user is nil, not an error", func(t *testing.T) {
		store, mock, closeDB := newTestStore(t)
		defer closeDB()

		mock.ExpectQuery("FROM users WHERE id").
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "email", "password", "name", "agency_name",
				"reset_token", "reset_token_expiry", "created_at",
			}))

		user, err := store.GetUser(context.Background(), 99)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestStore_GetUserByEmail(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	// Lookup lowercases before hitting the database.
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("agent@example.com").
		WillReturnRows(userRow(1, "agent@example.com"))

	user, err := store.GetUserByEmail(context.Background(), "Agent@Example.COM")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, 1, user.ID)
}

func TestStore_CreateUser(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("agent@example.com", "hash", "John Adeyo", "Golden Gate Properties", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	user, err := store.CreateUser(context.Background(), "Agent@Example.com", "hash", "John Adeyo", "Golden Gate Properties")
	assert.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "agent@example.com", user.Email)
}

func TestStore_ValidateResetToken(t *testing.T) {
	tokenRows := func(token any, expiry any) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"reset_token", "reset_token_expiry"}).AddRow(token, expiry)
	}

	t.Run("valid before expiry", func(t *testing.T) {
		store, mock, closeDB := newTestStore(t)
		defer closeDB()

		mock.ExpectQuery("SELECT reset_token, reset_token_expiry FROM users").
			WithArgs(1).
			WillReturnRows(tokenRows("tok", time.Now().Add(30*time.Minute)))

		valid, err := store.ValidateResetToken(context.Background(), 1, "tok")
		assert.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("expired", func(t *testing.T) {
		store, mock, closeDB := newTestStore(t)
		defer closeDB()

		mock.ExpectQuery("SELECT reset_token, reset_token_expiry FROM users").
			WithArgs(1).
			WillReturnRows(tokenRows("tok", time.Now().Add(-time.Minute)))

		valid, err := store.ValidateResetToken(context.Background(), 1, "tok")
		assert.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("wrong token", func(t *testing.T) {
		store, mock, closeDB := newTestStore(t)
		defer closeDB()

		mock.ExpectQuery("SELECT reset_token, reset_token_expiry FROM users").
			WithArgs(1).
			WillReturnRows(tokenRows("tok", time.Now().Add(30*time.Minute)))

		valid, err := store.ValidateResetToken(context.Background(), 1, "other")
		assert.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("cleared token", func(t *testing.T) {
		store, mock, closeDB := newTestStore(t)
		defer closeDB()

		mock.ExpectQuery("SELECT reset_token, reset_token_expiry FROM users").
			WithArgs(1).
			WillReturnRows(tokenRows(nil, nil))

		valid, err := store.ValidateResetToken(context.Background(), 1, "tok")
		assert.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestStore_GetCalls(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "phone_number", "duration_seconds", "call_type",
		"appointment_booked", "rating", "timestamp", "notes",
	}).
		AddRow(2, 1, "(415) 555-0100", 120, "inbound", true, 5, now, nil).
		AddRow(1, 1, "(415) 555-0101", 60, "outbound", false, 3, now.Add(-time.Hour), nil)

	mock.ExpectQuery("ORDER BY timestamp DESC").
		WithArgs(1).
		WillReturnRows(rows)

	calls, err := store.GetCalls(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, calls, 2)
	assert.Equal(t, 2, calls[0].ID)
	assert.True(t, calls[0].Timestamp.After(calls[1].Timestamp))
}

func TestStore_CreateCall(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	call := models.Call{
		UserID:            1,
		PhoneNumber:       "(415) 555-0100",
		DurationSeconds:   180,
		CallType:          models.CallTypeInbound,
		AppointmentBooked: true,
		Rating:            4,
		Timestamp:         time.Now(),
	}

	mock.ExpectQuery("INSERT INTO calls").
		WithArgs(call.UserID, call.PhoneNumber, call.DurationSeconds, call.CallType,
			call.AppointmentBooked, call.Rating, call.Timestamp, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	created, err := store.CreateCall(context.Background(), call)
	assert.NoError(t, err)
	assert.Equal(t, 11, created.ID)
}

func TestStore_ClearExpiredResetTokens(t *testing.T) {
	store, mock, closeDB := newTestStore(t)
	defer closeDB()

	mock.ExpectExec("UPDATE users SET reset_token = NULL").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.ClearExpiredResetTokens(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
