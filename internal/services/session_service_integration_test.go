package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/notifications"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/repository"
)

type refundCall struct {
	providerRef string
	amount      float64
	reason      string
}

type recordingGateway struct {
	charges   []ChargeRequest
	refunds   []refundCall
	chargeErr error
}

func (g *recordingGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.charges = append(g.charges, req)
	return &ChargeResult{ProviderRef: "ch_" + req.SessionID.String()}, nil
}

func (g *recordingGateway) Refund(_ context.Context, providerRef string, amount float64, reason string) error {
	g.refunds = append(g.refunds, refundCall{providerRef: providerRef, amount: amount, reason: reason})
	return nil
}

type recordingNotifier struct {
	events []notifications.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event notifications.Event) error {
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) recipients(eventType string) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool)
	for _, event := range n.events {
		if event.Type == eventType {
			out[event.RecipientID] = true
		}
	}
	return out
}

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		t.Skip("DB_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("connect to database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func newTestService(t *testing.T, pool *pgxpool.Pool, gateway PaymentGateway, notifier notifications.Notifier) *SessionService {
	t.Helper()
	if notifier == nil {
		notifier = notifications.NopNotifier{}
	}
	return NewSessionService(pool, gateway, NewJitsiRoomProvisioner(""), notifier, zap.NewNop())
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, role string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	email := fmt.Sprintf("%s-%s@test.local", role, uuid.NewString())
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email, role) VALUES ($1, $2) RETURNING id`, email, role).Scan(&id)
	if err != nil {
		t.Fatalf("create %s: %v", role, err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func createTestWindow(t *testing.T, pool *pgxpool.Pool, therapistID uuid.UUID, day int, start, end string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO availability_windows (therapist_id, day_of_week, start_time, end_time) VALUES ($1, $2, $3, $4)`,
		therapistID, day, start, end)
	if err != nil {
		t.Fatalf("create availability window: %v", err)
	}
}

// nextSlot returns a start time two days out, aligned to 10:00 UTC.
func nextSlot() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 2)
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.UTC)
}

func TestSessionLifecycleIntegration(t *testing.T) {
	pool := newTestPool(t)
	gateway := &recordingGateway{}
	notifier := &recordingNotifier{}
	svc := newTestService(t, pool, gateway, notifier)

	therapistID := createTestUser(t, pool, models.RoleTherapist)
	patientID := createTestUser(t, pool, models.RolePatient)
	rivalID := createTestUser(t, pool, models.RolePatient)

	startAt := nextSlot()
	createTestWindow(t, pool, therapistID, int(startAt.Weekday()), "09:00", "17:00")

	patient := Actor{ID: patientID, Role: models.RolePatient}
	rival := Actor{ID: rivalID, Role: models.RolePatient}

	session, err := svc.CreatePendingSession(context.Background(), patient, CreateSessionInput{
		TherapistID:     therapistID,
		StartAt:         startAt,
		DurationMinutes: 60,
		SessionType:     models.SessionTypeOnline,
	})
	if err != nil {
		t.Fatalf("CreatePendingSession: %v", err)
	}
	if session.Status != models.SessionStatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", session.Status)
	}

	// A pending session holds no reservation: a rival can request the
	// same slot.
	rivalSession, err := svc.CreatePendingSession(context.Background(), rival, CreateSessionInput{
		TherapistID:     therapistID,
		StartAt:         startAt,
		DurationMinutes: 60,
		SessionType:     models.SessionTypeOnline,
	})
	if err != nil {
		t.Fatalf("rival CreatePendingSession: %v", err)
	}

	confirmed, err := svc.ConfirmSession(context.Background(), patient, session.ID)
	if err != nil {
		t.Fatalf("ConfirmSession: %v", err)
	}
	if confirmed.Status != models.SessionStatusScheduled {
		t.Fatalf("expected scheduled, got %s", confirmed.Status)
	}
	if confirmed.PaymentRef == nil {
		t.Fatal("expected payment_ref to be set")
	}
	if confirmed.VideoRoom == nil {
		t.Fatal("expected a video room for an online session")
	}
	if len(gateway.charges) != 1 {
		t.Fatalf("expected exactly one charge, got %d", len(gateway.charges))
	}

	// Confirmation notifies both sides of the booking.
	confirmedTo := notifier.recipients(notifications.EventSessionConfirmed)
	if !confirmedTo[therapistID] || !confirmedTo[patientID] {
		t.Fatalf("expected confirmation events for therapist and patient, got %v", confirmedTo)
	}

	// Confirming again is a no-op, not a second charge.
	again, err := svc.ConfirmSession(context.Background(), patient, session.ID)
	if err != nil {
		t.Fatalf("repeat ConfirmSession: %v", err)
	}
	if again.Status != models.SessionStatusScheduled || len(gateway.charges) != 1 {
		t.Fatalf("repeat confirmation charged again: %d charges", len(gateway.charges))
	}

	// The rival's pending session now loses the race at confirmation.
	if _, err := svc.ConfirmSession(context.Background(), rival, rivalSession.ID); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for rival confirmation, got %v", err)
	}

	// And the confirmed slot rejects fresh booking attempts outright.
	_, err = svc.CreatePendingSession(context.Background(), rival, CreateSessionInput{
		TherapistID:     therapistID,
		StartAt:         startAt,
		DurationMinutes: 60,
		SessionType:     models.SessionTypeOnline,
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Cancelling before the start refunds the payment.
	cancelled, err := svc.CancelSession(context.Background(), patient, session.ID)
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if cancelled.Status != models.SessionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if len(gateway.refunds) != 1 {
		t.Fatalf("expected one refund, got %d", len(gateway.refunds))
	}

	cancelledTo := notifier.recipients(notifications.EventSessionCancelled)
	if !cancelledTo[therapistID] || !cancelledTo[patientID] {
		t.Fatalf("expected cancellation events for therapist and patient, got %v", cancelledTo)
	}

	payments := repository.NewPaymentRepository(pool)
	payment, err := payments.GetBySessionID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.Status != models.PaymentStatusRefunded {
		t.Fatalf("expected refunded payment, got %s", payment.Status)
	}
	refund := gateway.refunds[0]
	if refund.providerRef != payment.ProviderRef || refund.amount != payment.Amount || refund.reason == "" {
		t.Fatalf("refund call missing detail: %+v", refund)
	}

	// Cancelling twice surfaces the terminal state.
	if _, err := svc.CancelSession(context.Background(), patient, session.ID); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestConfirmDeclinedPaymentIntegration(t *testing.T) {
	pool := newTestPool(t)
	gateway := &recordingGateway{chargeErr: ErrPaymentDeclined}
	svc := newTestService(t, pool, gateway, nil)

	therapistID := createTestUser(t, pool, models.RoleTherapist)
	patientID := createTestUser(t, pool, models.RolePatient)

	startAt := nextSlot()
	createTestWindow(t, pool, therapistID, int(startAt.Weekday()), "09:00", "17:00")

	patient := Actor{ID: patientID, Role: models.RolePatient}
	session, err := svc.CreatePendingSession(context.Background(), patient, CreateSessionInput{
		TherapistID:     therapistID,
		StartAt:         startAt,
		DurationMinutes: 60,
		SessionType:     models.SessionTypeInPerson,
	})
	if err != nil {
		t.Fatalf("CreatePendingSession: %v", err)
	}

	if _, err := svc.ConfirmSession(context.Background(), patient, session.ID); !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}

	reloaded, err := repository.NewSessionRepository(pool).GetByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.Status != models.SessionStatusPendingPayment {
		t.Fatalf("declined payment must leave the session pending, got %s", reloaded.Status)
	}
}

func TestCompleteSessionIntegration(t *testing.T) {
	pool := newTestPool(t)
	gateway := &recordingGateway{}
	svc := newTestService(t, pool, gateway, nil)

	therapistID := createTestUser(t, pool, models.RoleTherapist)
	patientID := createTestUser(t, pool, models.RolePatient)

	sessions := repository.NewSessionRepository(pool)
	past, err := sessions.Create(context.Background(), repository.CreateSessionInput{
		TherapistID:     therapistID,
		PatientID:       patientID,
		StartAt:         time.Now().UTC().Add(-2 * time.Hour),
		DurationMinutes: 60,
		SessionType:     models.SessionTypeInPerson,
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if _, err := sessions.UpdateStatusIfCurrent(context.Background(), past.ID, models.SessionStatusPendingPayment, models.SessionStatusScheduled); err != nil {
		t.Fatalf("schedule seed session: %v", err)
	}

	therapist := Actor{ID: therapistID, Role: models.RoleTherapist}
	patient := Actor{ID: patientID, Role: models.RolePatient}

	if _, err := svc.CompleteSession(context.Background(), patient, past.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for patient completion, got %v", err)
	}

	completed, err := svc.CompleteSession(context.Background(), therapist, past.ID)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if completed.Status != models.SessionStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}

	if _, err := svc.CompleteSession(context.Background(), therapist, past.ID); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}

	// A completed session cannot be cancelled either.
	if _, err := svc.CancelSession(context.Background(), patient, past.ID); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal cancelling a completed session, got %v", err)
	}

	// The therapist can attach a note once the session has started.
	noted, err := svc.AddTherapistNote(context.Background(), therapist, past.ID, "productive session")
	if err != nil {
		t.Fatalf("AddTherapistNote: %v", err)
	}
	if noted.TherapistNote == nil || *noted.TherapistNote != "productive session" {
		t.Fatalf("unexpected note: %+v", noted.TherapistNote)
	}
}

func TestCompleteSessionTooEarlyIntegration(t *testing.T) {
	pool := newTestPool(t)
	svc := newTestService(t, pool, &recordingGateway{}, nil)

	therapistID := createTestUser(t, pool, models.RoleTherapist)
	patientID := createTestUser(t, pool, models.RolePatient)

	sessions := repository.NewSessionRepository(pool)
	future, err := sessions.Create(context.Background(), repository.CreateSessionInput{
		TherapistID:     therapistID,
		PatientID:       patientID,
		StartAt:         time.Now().UTC().Add(2 * time.Hour),
		DurationMinutes: 60,
		SessionType:     models.SessionTypeInPerson,
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if _, err := sessions.UpdateStatusIfCurrent(context.Background(), future.ID, models.SessionStatusPendingPayment, models.SessionStatusScheduled); err != nil {
		t.Fatalf("schedule seed session: %v", err)
	}

	therapist := Actor{ID: therapistID, Role: models.RoleTherapist}
	if _, err := svc.CompleteSession(context.Background(), therapist, future.ID); !errors.Is(err, ErrSessionNotYetOver) {
		t.Fatalf("expected ErrSessionNotYetOver, got %v", err)
	}
	if _, err := svc.AddTherapistNote(context.Background(), therapist, future.ID, "too soon"); !errors.Is(err, ErrSessionNotStarted) {
		t.Fatalf("expected ErrSessionNotStarted, got %v", err)
	}
}
