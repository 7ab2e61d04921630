package models

import "time"

const (
	CallTypeInbound  = "inbound"
	CallTypeOutbound = "outbound"
)

// Call is a single answered call owned by one user. Calls are immutable once
// recorded; there are no update or delete paths.
type Call struct {
	ID                int       `json:"id" example:"1"`
	UserID            int       `json:"userId" example:"1"`
	PhoneNumber       string    `json:"phoneNumber" example:"(415) 555-0132"`
	DurationSeconds   int       `json:"durationSeconds" example:"245"`
	CallType          string    `json:"callType" example:"inbound"`
	AppointmentBooked bool      `json:"appointmentBooked"`
	Rating            int       `json:"rating" example:"4"`
	Timestamp         time.Time `json:"timestamp"`
	Notes             *string   `json:"notes,omitempty"`
}
