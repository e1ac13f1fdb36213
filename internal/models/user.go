package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolePatient   = "patient"
	RoleTherapist = "therapist"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TherapistProfile is the slice of the profile store the booking core consumes:
// display name for notifications and the hourly rate that prices a session.
type TherapistProfile struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	HourlyRate *float64  `json:"hourly_rate"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
