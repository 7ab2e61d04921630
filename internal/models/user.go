package models

import "time"

// User represents a dashboard account. Password and reset-token fields are
// never serialized; every user-shaped API response relies on these json:"-"
// tags for redaction.
type User struct {
	ID               int        `json:"id" example:"1"`
	Email            string     `json:"email" example:"agent@example.com"`
	Password         string     `json:"-"`
	Name             string     `json:"name" example:"John Adeyo"`
	AgencyName       string     `json:"agencyName" example:"Golden Gate Properties"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
}
