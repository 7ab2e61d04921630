package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"

	"github.com/Serena-AI862/Serena/internal/config"
	"github.com/Serena-AI862/Serena/internal/store"
)

type AuthService struct {
	store     *store.Store
	sessions  *SessionService
	redis     *redis.Client
	validator *ValidationHelper
	config    *config.SessionConfig
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email" example:"agent@example.com"`
	Password   string `json:"password" validate:"required,min=6" example:"password123"`
	Name       string `json:"name" example:"John Adeyo"`
	AgencyName string `json:"agencyName" example:"Golden Gate Properties"`
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"agent@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

func NewAuthService(st *store.Store, sessions *SessionService, redisClient *redis.Client, cfg *config.SessionConfig) *AuthService {
	return &AuthService{
		store:     st,
		sessions:  sessions,
		redis:     redisClient,
		validator: NewValidationHelper(),
		config:    cfg,
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must only contain a single JSON object")
	}
	return nil
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new dashboard account and establish a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} models.User "Registration successful"
// @Failure 400 {object} ErrorResponse "Missing fields or duplicate email"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	var req RegisterRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		log.Printf("[AUTH] Registration failed - invalid request: %v", err)
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		log.Printf("[AUTH] Registration validation failed: %v", err)
		SendErrorResponse(w, "Email and password are required", http.StatusBadRequest, err)
		return
	}

	existing, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[AUTH] Registration lookup failed for %s: %v", req.Email, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	if existing != nil {
		log.Printf("[AUTH] Registration rejected, email already exists: %s", req.Email)
		SendErrorResponse(w, "Email already exists", http.StatusBadRequest, nil)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed for %s: %v", req.Email, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Email, hash, req.Name, req.AgencyName)
	if err != nil {
		log.Printf("[AUTH] User creation failed for %s: %v", req.Email, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	sessionID, err := s.sessions.Create(r.Context(), user.ID)
	if err != nil {
		log.Printf("[AUTH] Session creation failed for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	s.sessions.SetCookie(w, sessionID)

	log.Printf("[AUTH] Registration successful - ID: %d, Email: %s", user.ID, user.Email)
	SendJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate with email and password and establish a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} models.User "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	var req LoginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		log.Printf("[AUTH] Login failed - invalid request: %v", err)
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		log.Printf("[AUTH] Login validation failed: %v", err)
		SendErrorResponse(w, "Email and password are required", http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[AUTH] Login lookup failed for %s: %v", req.Email, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	// Unknown email and wrong password answer identically so the response
	// cannot be used to enumerate accounts.
	if user == nil || !VerifyPassword(req.Password, user.Password) {
		log.Printf("[AUTH] Invalid credentials for email: %s", req.Email)
		SendErrorResponse(w, "Invalid email or password", http.StatusUnauthorized, nil)
		return
	}

	sessionID, err := s.sessions.Create(r.Context(), user.ID)
	if err != nil {
		log.Printf("[AUTH] Session creation failed for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	s.sessions.SetCookie(w, sessionID)

	log.Printf("[AUTH] Login successful for user %d", user.ID)
	SendJSON(w, http.StatusOK, user)
}

// Logout invalidates the current session
// @Summary Logout user
// @Description Destroy the session and clear the cookie; idempotent
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /api/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.sessions.CookieName()); err == nil {
		if err := s.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			log.Printf("[AUTH] Failed to destroy session: %v", err)
		}
	}
	s.sessions.ClearCookie(w)
	SendJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// CurrentUser returns the authenticated user
// @Summary Get current user
// @Description Resolve the session back to its user record
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/user [get]
func (s *AuthService) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		log.Printf("[AUTH] Failed to fetch user %d: %v", userID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	if user == nil {
		SendErrorResponse(w, "Not authenticated", http.StatusUnauthorized, nil)
		return
	}

	SendJSON(w, http.StatusOK, user)
}

// resetRequestMessage is returned for every reset request, known email or not.
const resetRequestMessage = "If your email exists in our system, you will receive password reset instructions."

// RequestPasswordReset issues a reset token
// @Summary Request a password reset
// @Description Generate a reset token for the account; responds 200 regardless of whether the email exists
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Reset request"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse "Missing email"
// @Router /api/request-password-reset [post]
func (s *AuthService) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := decodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Email is required", http.StatusBadRequest, err)
		return
	}

	// The rate-limited and unknown-email paths answer with the same body as
	// the success path, so the response never confirms an account.
	if limited, err := s.resetRequestsLimited(r.Context(), req.Email); err != nil {
		log.Printf("[AUTH] Reset rate limit check failed: %v", err)
	} else if limited {
		log.Printf("[AUTH] Reset request rate limited for email: %s", req.Email)
		SendJSON(w, http.StatusOK, map[string]string{"message": resetRequestMessage})
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[AUTH] Reset request lookup failed for %s: %v", req.Email, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	if user == nil {
		SendJSON(w, http.StatusOK, map[string]string{"message": resetRequestMessage})
		return
	}

	token, expiry, err := GenerateResetToken(s.config.ResetTokenTTL)
	if err != nil {
		log.Printf("[AUTH] Reset token generation failed for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	if err := s.store.StoreResetToken(r.Context(), user.ID, token, expiry); err != nil {
		log.Printf("[AUTH] Failed to store reset token for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	s.countResetRequest(r.Context(), req.Email)

	log.Printf("[AUTH] Reset token issued for user %d", user.ID)

	// Returning the raw token to the caller is inherited from the original
	// contract; a mail-based delivery would replace it.
	SendJSON(w, http.StatusOK, map[string]string{
		"message":    "Password reset instructions have been sent to your email.",
		"resetToken": token,
		"email":      user.Email,
	})
}

// ResetPassword consumes a reset token
// @Summary Reset password with a token
// @Description Validate the reset token and set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{resetToken=string,email=string,newPassword=string} true "Reset payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse "Invalid or expired reset token"
// @Router /api/reset-password [post]
func (s *AuthService) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken  string `json:"resetToken" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
		NewPassword string `json:"newPassword" validate:"required,min=6"`
	}

	if err := decodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "All fields are required", http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[AUTH] Reset lookup failed for %s: %v", req.Email, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	// Wrong email and wrong token report the same failure; the caller cannot
	// tell which part was invalid.
	if user == nil {
		SendErrorResponse(w, "Invalid or expired reset token", http.StatusBadRequest, nil)
		return
	}

	valid, err := s.store.ValidateResetToken(r.Context(), user.ID, req.ResetToken)
	if err != nil {
		log.Printf("[AUTH] Reset token validation failed for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}
	if !valid {
		SendErrorResponse(w, "Invalid or expired reset token", http.StatusBadRequest, nil)
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	if err := s.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		log.Printf("[AUTH] Password update failed for user %d: %v", user.ID, err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	if err := s.store.ClearResetToken(r.Context(), user.ID); err != nil {
		log.Printf("[AUTH] Failed to clear reset token for user %d: %v", user.ID, err)
	}

	log.Printf("[AUTH] Password reset completed for user %d", user.ID)
	SendJSON(w, http.StatusOK, map[string]string{"message": "Your password has been updated successfully"})
}

func (s *AuthService) resetRequestsLimited(ctx context.Context, email string) (bool, error) {
	key := fmt.Sprintf("resetlimit:%s", email)
	count, err := s.redis.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return false, err
	}
	return count >= s.config.MaxResetRequests, nil
}

func (s *AuthService) countResetRequest(ctx context.Context, email string) {
	key := fmt.Sprintf("resetlimit:%s", email)
	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.config.ResetRateWindow)
	pipe.Exec(ctx)
}
