package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/scheduling"
)

var (
	ErrForbidden              = errors.New("actor is not allowed to perform this action")
	ErrNotTherapist           = errors.New("user is not a therapist")
	ErrInvalidStateTransition = errors.New("invalid session state transition")
	ErrAlreadyTerminal        = errors.New("session is already cancelled or completed")
	ErrInvalidWindow          = errors.New("availability window is invalid")
	ErrWindowOverlap          = errors.New("availability window overlaps an existing window")
	ErrInvalidSlot            = errors.New("requested slot is outside the therapist's availability")
	ErrSlotTaken              = errors.New("requested slot is already booked")
	ErrSessionNotStarted      = errors.New("session has not started yet")
	ErrSessionNotYetOver      = errors.New("session has not finished yet")
	ErrTooLateToCancel        = errors.New("session can no longer be cancelled")
	ErrPaymentDeclined        = errors.New("payment was declined")
	ErrPaymentProvider        = errors.New("payment provider is unavailable")
	ErrRoomUnavailable        = errors.New("video room is not available for this session")
	ErrNotOnlineSession       = errors.New("session is not held online")
)

// NotJoinableError reports why a join attempt was refused and how far the
// session currently is from its joinable window.
type NotJoinableError struct {
	Phase     scheduling.Phase
	Countdown time.Duration
}

func (e *NotJoinableError) Error() string {
	if e.Phase == scheduling.PhaseUpcoming {
		return fmt.Sprintf("session is not joinable yet, starts in %s", e.Countdown.Round(time.Second))
	}
	return "session is no longer joinable"
}
