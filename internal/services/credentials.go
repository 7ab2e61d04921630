package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the stored demo hashes were produced
// with; changing it would not invalidate existing hashes but keeps new ones
// consistent.
const bcryptCost = 10

const resetTokenBytes = 32

// HashPassword produces a salted bcrypt hash. Safe for concurrent use.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// bcrypt's own comparison is used, so timing does not leak correctness.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateResetToken returns a hex-encoded 32-byte random token and its
// expiry, ttl ahead of now.
func GenerateResetToken(ttl time.Duration) (string, time.Time, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), time.Now().Add(ttl), nil
}
