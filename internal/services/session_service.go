package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Serena-AI862/Serena/internal/config"
)

// ErrNoSession is returned when a session id is unknown or has expired.
var ErrNoSession = errors.New("session not found")

const sessionKeyPrefix = "session:"

// SessionService stores authenticated sessions in Redis. Session ids are
// opaque 32-byte random values; each key carries the user id with a TTL that
// slides forward on every resolution, so a session lives 7 days from its last
// renewal and Redis expiry handles the purge.
type SessionService struct {
	redis  *redis.Client
	config *config.SessionConfig
}

func NewSessionService(redisClient *redis.Client, cfg *config.SessionConfig) *SessionService {
	return &SessionService{
		redis:  redisClient,
		config: cfg,
	}
}

// Create establishes a new session bound to userID and returns its id.
func (s *SessionService) Create(ctx context.Context, userID int) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	sessionID := hex.EncodeToString(b)

	key := sessionKeyPrefix + sessionID
	if err := s.redis.Set(ctx, key, strconv.Itoa(userID), s.config.SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, nil
}

// Resolve returns the user id bound to sessionID and renews its TTL.
// Unknown or expired sessions yield ErrNoSession.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (int, error) {
	key := sessionKeyPrefix + sessionID
	val, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}

	if err := s.redis.Expire(ctx, key, s.config.SessionTTL).Err(); err != nil {
		// Renewal failure is not fatal; the session stays valid until its
		// previous TTL runs out.
		log.Printf("[SESSION] Failed to renew session TTL: %v", err)
	}
	return userID, nil
}

// Destroy deletes the session. Deleting a missing session is not an error.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.redis.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// CookieName exposes the configured session cookie name.
func (s *SessionService) CookieName() string {
	return s.config.CookieName
}

// SetCookie attaches the session cookie to the response.
func (s *SessionService) SetCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.config.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (s *SessionService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
