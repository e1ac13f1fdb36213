package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
)

const windowColumns = `id, therapist_id, day_of_week, start_time, end_time, created_at, updated_at`

type AvailabilityWindowInput struct {
	TherapistID uuid.UUID
	DayOfWeek   int
	StartTime   string
	EndTime     string
}

type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func scanWindow(row interface{ Scan(dest ...any) error }) (*models.AvailabilityWindow, error) {
	var w models.AvailabilityWindow
	err := row.Scan(
		&w.ID,
		&w.TherapistID,
		&w.DayOfWeek,
		&w.StartTime,
		&w.EndTime,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListByTherapist returns the therapist's windows in a stable display order.
func (r *AvailabilityRepository) ListByTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.AvailabilityWindow, error) {
	query := `
		SELECT ` + windowColumns + `
		FROM availability_windows
		WHERE therapist_id = $1
		ORDER BY day_of_week ASC, start_time ASC
	`

	rows, err := r.db.Query(ctx, query, therapistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]models.AvailabilityWindow, 0)
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return windows, nil
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, windowID uuid.UUID) (*models.AvailabilityWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM availability_windows WHERE id = $1`
	return scanWindow(r.db.QueryRow(ctx, query, windowID))
}

func (r *AvailabilityRepository) Create(ctx context.Context, input AvailabilityWindowInput) (*models.AvailabilityWindow, error) {
	query := `
		INSERT INTO availability_windows (therapist_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + windowColumns + `
	`
	return scanWindow(r.db.QueryRow(ctx, query, input.TherapistID, input.DayOfWeek, input.StartTime, input.EndTime))
}

func (r *AvailabilityRepository) Update(ctx context.Context, windowID uuid.UUID, input AvailabilityWindowInput) (*models.AvailabilityWindow, error) {
	query := `
		UPDATE availability_windows
		SET day_of_week = $2, start_time = $3, end_time = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + windowColumns + `
	`
	return scanWindow(r.db.QueryRow(ctx, query, windowID, input.DayOfWeek, input.StartTime, input.EndTime))
}

func (r *AvailabilityRepository) Delete(ctx context.Context, windowID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM availability_windows WHERE id = $1`, windowID)
	return err
}
