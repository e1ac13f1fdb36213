package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSessionConfirmed = "confirmed"
	EventSessionCancelled = "cancelled"
	EventSessionCompleted = "completed"
)

type Event struct {
	Type        string    `json:"type"`
	SessionID   uuid.UUID `json:"session_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier delivers session lifecycle events to the notification
// pipeline. Delivery is best effort; callers log failures and move on.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopNotifier is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Event) error { return nil }
func (NopNotifier) Close() error                         { return nil }
