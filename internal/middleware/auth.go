package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/Serena-AI862/Serena/internal/services"
)

var sessions *services.SessionService

// InitAuthMiddleware wires the session service the middleware resolves
// cookies against. Must be called before the router is built.
func InitAuthMiddleware(s *services.SessionService) {
	sessions = s
}

// AuthMiddleware gates protected routes behind a valid session cookie. The
// resolved user id is placed in the request context under "userID"; resolving
// also slides the session TTL forward. Every failure answers the uniform
// unauthenticated body, so a missing cookie and an expired session are
// indistinguishable to the caller.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessions.CookieName())
		if err != nil || cookie.Value == "" {
			services.SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
			return
		}

		userID, err := sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			if err != services.ErrNoSession {
				log.Printf("[SESSION] Resolution failed: %v", err)
			}
			services.SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
