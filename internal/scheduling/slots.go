package scheduling

import (
	"time"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
)

// Candidate start times are generated on hour boundaries regardless of the
// requested duration; existing clients render the hourly grid.
const slotStepMinutes = 60

// IsBookableDate reports whether any availability window falls on the
// weekday of the given date.
func IsBookableDate(windows []models.AvailabilityWindow, date time.Time) bool {
	for _, w := range windows {
		if w.DayOfWeek == int(date.Weekday()) {
			return true
		}
	}
	return false
}

// SlotsForDate derives the candidate start times ("HH:MM") on a calendar
// date from the therapist's weekly windows. Slot generation only looks at
// availability; conflicts with existing sessions are checked at booking and
// confirmation time.
func SlotsForDate(windows []models.AvailabilityWindow, date time.Time, durationMinutes int) ([]string, error) {
	slots := make([]string, 0)
	for _, w := range windows {
		if w.DayOfWeek != int(date.Weekday()) {
			continue
		}
		start, err := ParseClock(w.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := ParseClock(w.EndTime)
		if err != nil {
			return nil, err
		}
		for t := start; t+Clock(durationMinutes) <= end; t += slotStepMinutes {
			slots = append(slots, t.String())
		}
	}
	return slots, nil
}

// WindowCovers reports whether a session starting at startAt and running
// durationMinutes fits entirely inside one of the windows.
func WindowCovers(windows []models.AvailabilityWindow, startAt time.Time, durationMinutes int) (bool, error) {
	sessionStart := Clock(startAt.Hour()*60 + startAt.Minute())
	sessionEnd := sessionStart + Clock(durationMinutes)
	for _, w := range windows {
		if w.DayOfWeek != int(startAt.Weekday()) {
			continue
		}
		start, err := ParseClock(w.StartTime)
		if err != nil {
			return false, err
		}
		end, err := ParseClock(w.EndTime)
		if err != nil {
			return false, err
		}
		if sessionStart >= start && sessionEnd <= end {
			return true, nil
		}
	}
	return false, nil
}
