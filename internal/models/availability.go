package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityWindow is a recurring weekly interval during which a therapist
// accepts bookings. Times are 24-hour "HH:MM" wall-clock strings.
type AvailabilityWindow struct {
	ID          uuid.UUID `json:"id"`
	TherapistID uuid.UUID `json:"therapist_id"`
	DayOfWeek   int       `json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
