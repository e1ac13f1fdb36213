package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/notifications"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/repository"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/scheduling"
)

// Actor identifies who is performing an operation. Handlers build it
// from the authenticated request; services never reach into ambient
// request state.
type Actor struct {
	ID   uuid.UUID
	Role string
}

type LiveSessionState struct {
	SessionID        uuid.UUID        `json:"session_id"`
	Status           string           `json:"status"`
	Phase            scheduling.Phase `json:"phase"`
	CountdownSeconds int64            `json:"countdown_seconds"`
	StartAt          time.Time        `json:"start_at"`
	EndAt            time.Time        `json:"end_at"`
	Joinable         bool             `json:"joinable"`
}

const (
	defaultHourlyRate = 60.0
	paymentCurrency   = "EUR"
)

// Serializes concurrent confirmations for the same therapist. The lock
// is released automatically when the transaction ends.
const advisoryLockQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`

type SessionService struct {
	pool     *pgxpool.Pool
	sessions *repository.SessionRepository
	payments *repository.PaymentRepository
	windows  *repository.AvailabilityRepository
	users    *repository.UserRepository
	profiles *repository.TherapistProfileRepository
	gateway  PaymentGateway
	rooms    VideoRoomProvisioner
	notifier notifications.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionService(
	pool *pgxpool.Pool,
	gateway PaymentGateway,
	rooms VideoRoomProvisioner,
	notifier notifications.Notifier,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		pool:     pool,
		sessions: repository.NewSessionRepository(pool),
		payments: repository.NewPaymentRepository(pool),
		windows:  repository.NewAvailabilityRepository(pool),
		users:    repository.NewUserRepository(pool),
		profiles: repository.NewTherapistProfileRepository(pool),
		gateway:  gateway,
		rooms:    rooms,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateSessionInput struct {
	TherapistID     uuid.UUID
	StartAt         time.Time
	DurationMinutes int
	SessionType     string
}

// CreatePendingSession books a slot tentatively. The session holds no
// reservation until it is confirmed by payment.
func (s *SessionService) CreatePendingSession(ctx context.Context, actor Actor, input CreateSessionInput) (*models.Session, error) {
	if actor.Role != models.RolePatient {
		return nil, ErrForbidden
	}
	if !input.StartAt.After(s.now()) {
		return nil, ErrInvalidSlot
	}

	therapist, err := s.users.GetByID(ctx, input.TherapistID)
	if err != nil {
		return nil, err
	}
	if therapist.Role != models.RoleTherapist {
		return nil, ErrNotTherapist
	}

	windows, err := s.windows.ListByTherapist(ctx, input.TherapistID)
	if err != nil {
		return nil, err
	}
	covered, err := scheduling.WindowCovers(windows, input.StartAt, input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if !covered {
		return nil, ErrInvalidSlot
	}

	taken, err := s.sessions.HasConflict(ctx, input.TherapistID, input.StartAt, input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	session, err := s.sessions.Create(ctx, repository.CreateSessionInput{
		TherapistID:     input.TherapistID,
		PatientID:       actor.ID,
		StartAt:         input.StartAt,
		DurationMinutes: input.DurationMinutes,
		SessionType:     input.SessionType,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session requested",
		zap.String("session_id", session.ID.String()),
		zap.String("therapist_id", session.TherapistID.String()),
		zap.String("patient_id", session.PatientID.String()),
		zap.Time("start_at", session.StartAt),
	)
	return session, nil
}

// ConfirmSession charges the patient and flips the session to scheduled.
// Confirming an already scheduled session is a no-op that returns it
// unchanged, so payment retries are safe.
func (s *SessionService) ConfirmSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != actor.ID {
		return nil, ErrForbidden
	}
	switch session.Status {
	case models.SessionStatusScheduled:
		return session, nil
	case models.SessionStatusCancelled, models.SessionStatusCompleted:
		return nil, ErrInvalidStateTransition
	}

	amount, err := s.sessionPrice(ctx, session)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, advisoryLockQuery, session.TherapistID.String()); err != nil {
		return nil, err
	}

	txSessions := repository.NewSessionRepository(tx)
	locked, err := txSessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if locked.Status == models.SessionStatusScheduled {
		return locked, nil
	}
	if locked.Status != models.SessionStatusPendingPayment {
		return nil, ErrInvalidStateTransition
	}

	conflict, err := txSessions.HasConflictExcludingSession(ctx, locked.TherapistID, locked.StartAt, locked.DurationMinutes, locked.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotTaken
	}

	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		IdempotencyKey: "session-" + sessionID.String(),
		SessionID:      sessionID,
		PatientID:      locked.PatientID,
		Amount:         amount,
		Currency:       paymentCurrency,
	})
	if err != nil {
		return nil, err
	}

	payment, err := repository.NewPaymentRepository(tx).Create(ctx, repository.CreatePaymentInput{
		SessionID:   sessionID,
		Amount:      amount,
		Status:      models.PaymentStatusSucceeded,
		ProviderRef: charge.ProviderRef,
	})
	if err != nil {
		return nil, err
	}

	var room *string
	if locked.SessionType == models.SessionTypeOnline {
		url, roomErr := s.rooms.CreateRoom(ctx, sessionID)
		if roomErr != nil {
			s.logger.Warn("video room provisioning failed",
				zap.String("session_id", sessionID.String()),
				zap.Error(roomErr),
			)
		} else {
			room = &url
		}
	}

	confirmed, err := txSessions.Confirm(ctx, sessionID, payment.ID, room)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("session confirmed",
		zap.String("session_id", confirmed.ID.String()),
		zap.Float64("amount", amount),
	)
	s.notify(ctx, notifications.EventSessionConfirmed, confirmed, "A session has been booked and paid",
		confirmed.TherapistID, confirmed.PatientID)
	return confirmed, nil
}

// CancelSession cancels a pending or scheduled session. Paid sessions
// are refunded best effort after the cancellation is recorded.
func (s *SessionService) CancelSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != actor.ID {
		return nil, ErrForbidden
	}
	if session.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	if session.Status == models.SessionStatusPendingPayment {
		cancelled, err := s.sessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionStatusPendingPayment, models.SessionStatusCancelled)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
		return cancelled, nil
	}

	if !s.now().Before(session.StartAt) {
		return nil, ErrTooLateToCancel
	}

	cancelled, err := s.sessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionStatusScheduled, models.SessionStatusCancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.refund(ctx, cancelled)
	s.notify(ctx, notifications.EventSessionCancelled, cancelled, "A session has been cancelled by the patient",
		cancelled.TherapistID, cancelled.PatientID)
	return cancelled, nil
}

// CompleteSession marks a scheduled session as held once its time has
// fully elapsed.
func (s *SessionService) CompleteSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TherapistID != actor.ID || actor.Role != models.RoleTherapist {
		return nil, ErrForbidden
	}
	if session.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	if session.Status != models.SessionStatusScheduled {
		return nil, ErrInvalidStateTransition
	}
	if s.now().Before(session.EndAt()) {
		return nil, ErrSessionNotYetOver
	}

	completed, err := s.sessions.UpdateStatusIfCurrent(ctx, sessionID, models.SessionStatusScheduled, models.SessionStatusCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	s.notify(ctx, notifications.EventSessionCompleted, completed, "Your session has been marked as completed",
		completed.PatientID)
	return completed, nil
}

// AddTherapistNote attaches or replaces the therapist's private note.
// Notes are allowed once the session has started.
func (s *SessionService) AddTherapistNote(ctx context.Context, actor Actor, sessionID uuid.UUID, note string) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TherapistID != actor.ID || actor.Role != models.RoleTherapist {
		return nil, ErrForbidden
	}
	if session.Status == models.SessionStatusPendingPayment || session.Status == models.SessionStatusCancelled {
		return nil, ErrInvalidStateTransition
	}
	if s.now().Before(session.StartAt) {
		return nil, ErrSessionNotStarted
	}
	return s.sessions.SetTherapistNote(ctx, sessionID, note)
}

func (s *SessionService) ListSessions(ctx context.Context, actor Actor, status, timeframe string) ([]models.SessionDetail, error) {
	sessions, err := s.sessions.List(ctx, repository.SessionListFilter{
		ActorID:   actor.ID,
		Role:      actor.Role,
		Status:    status,
		Timeframe: timeframe,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}
	payments, err := s.payments.ListBySessionIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]models.SessionDetail, len(sessions))
	for i, session := range sessions {
		details[i] = models.SessionDetail{Session: session}
		if payment, ok := payments[session.ID]; ok {
			p := payment
			details[i].Payment = &p
		}
	}
	return details, nil
}

func (s *SessionService) GetSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (*models.SessionDetail, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(actor, session) {
		return nil, ErrForbidden
	}

	detail := &models.SessionDetail{Session: *session}
	payment, err := s.payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	} else {
		detail.Payment = payment
	}
	return detail, nil
}

// LiveState reports where the session stands relative to the clock so
// clients can render countdowns and gate the join button.
func (s *SessionService) LiveState(ctx context.Context, actor Actor, sessionID uuid.UUID) (*LiveSessionState, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(actor, session) {
		return nil, ErrForbidden
	}

	now := s.now()
	phase, countdown := scheduling.SessionPhase(session.StartAt, session.DurationMinutes, now)
	return &LiveSessionState{
		SessionID:        session.ID,
		Status:           session.Status,
		Phase:            phase,
		CountdownSeconds: int64(countdown / time.Second),
		StartAt:          session.StartAt,
		EndAt:            session.EndAt(),
		Joinable:         s.isJoinable(session, now),
	}, nil
}

// JoinSession returns the video room URL once the session is inside its
// joinable window.
func (s *SessionService) JoinSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (string, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !isParticipant(actor, session) {
		return "", ErrForbidden
	}
	if session.SessionType != models.SessionTypeOnline {
		return "", ErrNotOnlineSession
	}

	switch session.Status {
	case models.SessionStatusCancelled:
		return "", ErrAlreadyTerminal
	case models.SessionStatusPendingPayment:
		return "", ErrInvalidStateTransition
	case models.SessionStatusCompleted:
		return "", &NotJoinableError{Phase: scheduling.PhaseEnded}
	}

	phase, countdown := scheduling.SessionPhase(session.StartAt, session.DurationMinutes, s.now())
	if phase != scheduling.PhaseActive {
		return "", &NotJoinableError{Phase: phase, Countdown: countdown}
	}
	if session.VideoRoom == nil {
		return "", ErrRoomUnavailable
	}
	return *session.VideoRoom, nil
}

func (s *SessionService) sessionPrice(ctx context.Context, session *models.Session) (float64, error) {
	rate := defaultHourlyRate
	profile, err := s.profiles.GetByUserID(ctx, session.TherapistID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, err
		}
	} else if profile.HourlyRate != nil {
		rate = *profile.HourlyRate
	}
	return rate * float64(session.DurationMinutes) / 60, nil
}

func (s *SessionService) refund(ctx context.Context, session *models.Session) {
	payment, err := s.payments.GetBySessionID(ctx, session.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("refund lookup failed", zap.String("session_id", session.ID.String()), zap.Error(err))
		}
		return
	}
	if payment.Status != models.PaymentStatusSucceeded {
		return
	}

	if err := s.gateway.Refund(ctx, payment.ProviderRef, payment.Amount, "session cancelled by patient"); err != nil {
		s.logger.Warn("refund failed",
			zap.String("session_id", session.ID.String()),
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}
	if _, err := s.payments.UpdateStatusIfCurrent(ctx, payment.ID, models.PaymentStatusSucceeded, models.PaymentStatusRefunded); err != nil {
		s.logger.Warn("refund recorded at provider but not locally",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *SessionService) isJoinable(session *models.Session, now time.Time) bool {
	if session.Status != models.SessionStatusScheduled ||
		session.SessionType != models.SessionTypeOnline ||
		session.VideoRoom == nil {
		return false
	}
	phase, _ := scheduling.SessionPhase(session.StartAt, session.DurationMinutes, now)
	return phase == scheduling.PhaseActive
}

func (s *SessionService) notify(ctx context.Context, eventType string, session *models.Session, message string, recipientIDs ...uuid.UUID) {
	for _, recipientID := range recipientIDs {
		err := s.notifier.Publish(ctx, notifications.Event{
			Type:        eventType,
			SessionID:   session.ID,
			RecipientID: recipientID,
			Message:     message,
			OccurredAt:  s.now().UTC(),
		})
		if err != nil {
			s.logger.Warn("notification publish failed",
				zap.String("session_id", session.ID.String()),
				zap.String("event", eventType),
				zap.String("recipient_id", recipientID.String()),
				zap.Error(err),
			)
		}
	}
}

func isParticipant(actor Actor, session *models.Session) bool {
	return actor.ID == session.PatientID || actor.ID == session.TherapistID
}
