package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/Serena-AI862/Serena/internal/config"
)

func testSessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		CookieName:       "serena_session",
		SessionTTL:       7 * 24 * time.Hour,
		ResetTokenTTL:    time.Hour,
		MaxResetRequests: 5,
		ResetRateWindow:  time.Hour,
	}
}

func TestSessionService_Create(t *testing.T) {
	client, mock := redismock.NewClientMock()
	service := NewSessionService(client, testSessionConfig())

	mock.Regexp().ExpectSet(`session:[0-9a-f]{64}`, `42`, 7*24*time.Hour).SetVal("OK")

	sessionID, err := service.Create(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, sessionID, 64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionService_Resolve(t *testing.T) {
	cfg := testSessionConfig()

	t.Run("valid session renews its ttl", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		service := NewSessionService(client, cfg)

		mock.ExpectGet("session:abc123").SetVal("42")
		mock.ExpectExpire("session:abc123", cfg.SessionTTL).SetVal(true)

		userID, err := service.Resolve(context.Background(), "abc123")
		assert.NoError(t, err)
		assert.Equal(t, 42, userID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown session", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		service := NewSessionService(client, cfg)

		mock.ExpectGet("session:missing").RedisNil()

		_, err := service.Resolve(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestSessionService_Destroy(t *testing.T) {
	cfg := testSessionConfig()

	t.Run("deletes the key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		service := NewSessionService(client, cfg)

		mock.ExpectDel("session:abc123").SetVal(1)

		assert.NoError(t, service.Destroy(context.Background(), "abc123"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty id is a no-op", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		service := NewSessionService(client, cfg)

		assert.NoError(t, service.Destroy(context.Background(), ""))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionService_Cookies(t *testing.T) {
	client, _ := redismock.NewClientMock()
	service := NewSessionService(client, testSessionConfig())

	t.Run("set", func(t *testing.T) {
		w := httptest.NewRecorder()
		service.SetCookie(w, "abc123")

		cookies := w.Result().Cookies()
		assert.Len(t, cookies, 1)
		assert.Equal(t, "serena_session", cookies[0].Name)
		assert.Equal(t, "abc123", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, int(7*24*time.Hour/time.Second), cookies[0].MaxAge)
	})

	t.Run("clear", func(t *testing.T) {
		w := httptest.NewRecorder()
		service.ClearCookie(w)

		cookies := w.Result().Cookies()
		assert.Len(t, cookies, 1)
		assert.Empty(t, cookies[0].Value)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}
