package config

import (
	"os"
	"strconv"
	"time"
)

type SessionConfig struct {
	CookieName       string
	CookieSecure     bool
	SessionTTL       time.Duration
	ResetTokenTTL    time.Duration
	SweepInterval    time.Duration
	MaxResetRequests int
	ResetRateWindow  time.Duration
}

func LoadSessionConfig() *SessionConfig {
	return &SessionConfig{
		CookieName:       getEnv("SESSION_COOKIE_NAME", "serena_session"),
		CookieSecure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
		ResetTokenTTL:    getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
		SweepInterval:    getEnvAsDuration("RESET_SWEEP_INTERVAL", 24*time.Hour),
		MaxResetRequests: getEnvAsInt("RESET_MAX_REQUESTS", 5),
		ResetRateWindow:  getEnvAsDuration("RESET_RATE_WINDOW", 1*time.Hour),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
