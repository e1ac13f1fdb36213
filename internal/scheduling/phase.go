package scheduling

import "time"

// Phase classifies a scheduled session relative to the current time. It is
// presentation state: re-derived on every call, never stored, so clients can
// poll it on a one-second cadence.
type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseActive   Phase = "active"
	PhaseEnded    Phase = "ended"
)

// SessionPhase derives the phase and the countdown for a session starting at
// startAt and running durationMinutes. During PhaseUpcoming the countdown
// runs to the start, during PhaseActive to the end, and it is zero once the
// session has ended.
func SessionPhase(startAt time.Time, durationMinutes int, now time.Time) (Phase, time.Duration) {
	endAt := startAt.Add(time.Duration(durationMinutes) * time.Minute)
	switch {
	case now.Before(startAt):
		return PhaseUpcoming, startAt.Sub(now)
	case now.Before(endAt):
		return PhaseActive, endAt.Sub(now)
	default:
		return PhaseEnded, 0
	}
}
