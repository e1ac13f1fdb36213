package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
)

const sessionColumns = `id, therapist_id, patient_id, start_at, duration_min, session_type, status, video_room, therapist_note, payment_ref, created_at, updated_at`

type CreateSessionInput struct {
	TherapistID     uuid.UUID
	PatientID       uuid.UUID
	StartAt         time.Time
	DurationMinutes int
	SessionType     string
}

type SessionListFilter struct {
	ActorID   uuid.UUID
	Role      string
	Status    string
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.TherapistID,
		&session.PatientID,
		&session.StartAt,
		&session.DurationMinutes,
		&session.SessionType,
		&session.Status,
		&session.VideoRoom,
		&session.TherapistNote,
		&session.PaymentRef,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (therapist_id, patient_id, start_at, duration_min, session_type, status)
		VALUES ($1, $2, $3, $4, $5, 'pending_payment')
		RETURNING %s
	`, sessionColumns)

	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.TherapistID,
		input.PatientID,
		input.StartAt,
		input.DurationMinutes,
		input.SessionType,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1 FOR UPDATE`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.Session, error) {
	actorColumn := "patient_id"
	if filter.Role == models.RoleTherapist {
		actorColumn = "therapist_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "(start_at + (duration_min * INTERVAL '1 minute')) > NOW()")
	case "past":
		whereParts = append(whereParts, "(start_at + (duration_min * INTERVAL '1 minute')) <= NOW()")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY start_at ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID uuid.UUID,
	currentStatus string,
	nextStatus string,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus))
}

// Confirm flips a pending session to scheduled, recording the payment
// reference and, for online sessions, the provisioned video room.
func (r *SessionRepository) Confirm(
	ctx context.Context,
	sessionID uuid.UUID,
	paymentRef uuid.UUID,
	videoRoom *string,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = 'scheduled', payment_ref = $2, video_room = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending_payment'
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, paymentRef, videoRoom))
}

func (r *SessionRepository) SetTherapistNote(ctx context.Context, sessionID uuid.UUID, note string) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET therapist_note = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, note))
}

// HasConflict reports whether a non-cancelled, non-pending session of the
// therapist overlaps the requested interval. Pending sessions do not reserve
// the slot; the slot is only taken once payment confirms it.
func (r *SessionRepository) HasConflict(
	ctx context.Context,
	therapistID uuid.UUID,
	startAt time.Time,
	durationMinutes int,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE therapist_id = $1
			  AND status IN ('scheduled', 'completed')
			  AND start_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (start_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, therapistID, startAt, durationMinutes).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

func (r *SessionRepository) HasConflictExcludingSession(
	ctx context.Context,
	therapistID uuid.UUID,
	startAt time.Time,
	durationMinutes int,
	excludedSessionID uuid.UUID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE therapist_id = $1
			  AND id <> $4
			  AND status IN ('scheduled', 'completed')
			  AND start_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (start_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, therapistID, startAt, durationMinutes, excludedSessionID).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

// CancelStalePending cancels unpaid pending sessions created before the
// cutoff and returns how many were swept.
func (r *SessionRepository) CancelStalePending(ctx context.Context, createdBefore time.Time) (int64, error) {
	query := `
		UPDATE sessions
		SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending_payment' AND created_at < $1
	`
	tag, err := r.db.Exec(ctx, query, createdBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
