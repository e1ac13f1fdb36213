package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionTypeOnline   = "online"
	SessionTypeInPerson = "in_person"
)

const (
	SessionStatusPendingPayment = "pending_payment"
	SessionStatusScheduled      = "scheduled"
	SessionStatusCompleted      = "completed"
	SessionStatusCancelled      = "cancelled"
)

type Session struct {
	ID              uuid.UUID  `json:"id"`
	TherapistID     uuid.UUID  `json:"therapist_id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	StartAt         time.Time  `json:"start_at"`
	DurationMinutes int        `json:"duration_minutes"`
	SessionType     string     `json:"session_type"`
	Status          string     `json:"status"`
	VideoRoom       *string    `json:"video_room,omitempty"`
	TherapistNote   *string    `json:"therapist_note,omitempty"`
	PaymentRef      *uuid.UUID `json:"payment_ref,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EndAt is the scheduled end of the session.
func (s *Session) EndAt() time.Time {
	return s.StartAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// IsTerminal reports whether the session can no longer change state.
func (s *Session) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusRefunded  = "refunded"
)

type PaymentRecord struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	ProviderRef string    `json:"provider_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

type SessionDetail struct {
	Session
	Payment *PaymentRecord `json:"payment,omitempty"`
}
