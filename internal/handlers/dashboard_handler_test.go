package handlers

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Serena-AI862/Serena/internal/models"
	"github.com/Serena-AI862/Serena/internal/services"
	"github.com/Serena-AI862/Serena/internal/store"
)

func newTestHandler(t *testing.T) (*DashboardHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	st := store.New(db)
	return NewDashboardHandler(st, services.NewStatsService(st)), mock, func() { db.Close() }
}

func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, body)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r.WithContext(context.WithValue(r.Context(), "userID", 1))
}

func callRows(rows ...[]driver.Value) *sqlmock.Rows {
	result := sqlmock.NewRows([]string{
		"id", "user_id", "phone_number", "duration_seconds", "call_type",
		"appointment_booked", "rating", "timestamp", "notes",
	})
	for _, row := range rows {
		result.AddRow(row...)
	}
	return result
}

func TestDashboardHandler_GetCalls(t *testing.T) {
	t.Run("returns the user's calls", func(t *testing.T) {
		handler, mock, closeDB := newTestHandler(t)
		defer closeDB()

		now := time.Now()
		mock.ExpectQuery("ORDER BY timestamp DESC").
			WithArgs(1).
			WillReturnRows(callRows(
				[]driver.Value{2, 1, "(415) 555-0100", 120, "inbound", true, 5, now, nil},
				[]driver.Value{1, 1, "(415) 555-0101", 60, "outbound", false, 3, now.Add(-time.Hour), nil},
			))

		w := httptest.NewRecorder()
		handler.GetCalls(w, authedRequest("GET", "/api/calls", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var calls []models.Call
		json.Unmarshal(w.Body.Bytes(), &calls)
		assert.Len(t, calls, 2)
		assert.Equal(t, 2, calls[0].ID)
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		handler, mock, closeDB := newTestHandler(t)
		defer closeDB()

		mock.ExpectQuery("ORDER BY timestamp DESC").
			WithArgs(1).
			WillReturnRows(callRows())

		w := httptest.NewRecorder()
		handler.GetCalls(w, authedRequest("GET", "/api/calls", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("no user in context", func(t *testing.T) {
		handler, _, closeDB := newTestHandler(t)
		defer closeDB()

		w := httptest.NewRecorder()
		handler.GetCalls(w, httptest.NewRequest("GET", "/api/calls", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDashboardHandler_CreateCall(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		handler, mock, closeDB := newTestHandler(t)
		defer closeDB()

		mock.ExpectQuery("INSERT INTO calls").
			WithArgs(1, "(415) 555-0100", 180, "inbound", true, 4, sqlmock.AnyArg(), nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		body, _ := json.Marshal(CreateCallRequest{
			PhoneNumber:       "(415) 555-0100",
			DurationSeconds:   180,
			CallType:          "inbound",
			AppointmentBooked: true,
			Rating:            4,
		})

		w := httptest.NewRecorder()
		handler.CreateCall(w, authedRequest("POST", "/api/calls", bytes.NewBuffer(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		var call models.Call
		json.Unmarshal(w.Body.Bytes(), &call)
		assert.Equal(t, 11, call.ID)
		assert.Equal(t, 1, call.UserID)
	})

	t.Run("rejects an unknown call type", func(t *testing.T) {
		handler, _, closeDB := newTestHandler(t)
		defer closeDB()

		body := []byte(`{"phoneNumber":"(415) 555-0100","durationSeconds":60,"callType":"carrier","rating":3}`)

		w := httptest.NewRecorder()
		handler.CreateCall(w, authedRequest("POST", "/api/calls", bytes.NewBuffer(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an out of range rating", func(t *testing.T) {
		handler, _, closeDB := newTestHandler(t)
		defer closeDB()

		body := []byte(`{"phoneNumber":"(415) 555-0100","durationSeconds":60,"callType":"inbound","rating":6}`)

		w := httptest.NewRecorder()
		handler.CreateCall(w, authedRequest("POST", "/api/calls", bytes.NewBuffer(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDashboardHandler_GetStats(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery("AND timestamp >=").
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnRows(callRows(
			[]driver.Value{1, 1, "(415) 555-0100", 120, "inbound", true, 5, now.Add(-time.Hour), nil},
			[]driver.Value{2, 1, "(415) 555-0101", 240, "outbound", false, 3, now.Add(-2*time.Hour), nil},
		))

	w := httptest.NewRecorder()
	handler.GetStats(w, authedRequest("GET", "/api/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.WeeklyStats
	json.Unmarshal(w.Body.Bytes(), &stats)
	assert.Equal(t, 2, stats.TotalCalls)
	assert.Equal(t, 1, stats.AppointmentsBooked)
	assert.Equal(t, "3:00", stats.AvgDuration)
	assert.Equal(t, 4.0, stats.AvgRating)
	assert.Equal(t, 50.0, stats.CallToAppointmentRate)
	assert.Equal(t, 8.2, stats.MissedCallsPercentage)
	assert.Len(t, stats.WeeklyCallVolume, 7)
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	handler, mock, closeDB := newTestHandler(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password", "name", "agency_name",
			"reset_token", "reset_token_expiry", "created_at",
		}).AddRow(1, "agent@example.com", "hash", "John Adeyo", "Golden Gate Properties", nil, nil, now))
	mock.ExpectQuery("AND timestamp >=").
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnRows(callRows())
	mock.ExpectQuery("ORDER BY timestamp DESC").
		WithArgs(1).
		WillReturnRows(callRows())

	w := httptest.NewRecorder()
	handler.GetDashboard(w, authedRequest("GET", "/api/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]json.RawMessage
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Contains(t, response, "user")
	assert.Contains(t, response, "stats")
	assert.Contains(t, response, "calls")

	var user map[string]any
	json.Unmarshal(response["user"], &user)
	assert.Equal(t, "agent@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "resetToken")
}
