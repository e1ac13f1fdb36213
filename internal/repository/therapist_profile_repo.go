package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
)

type TherapistProfileRepository struct {
	db DBTX
}

func NewTherapistProfileRepository(db DBTX) *TherapistProfileRepository {
	return &TherapistProfileRepository{db: db}
}

func (r *TherapistProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.TherapistProfile, error) {
	query := `
		SELECT id, user_id, full_name, hourly_rate, created_at, updated_at
		FROM therapist_profiles
		WHERE user_id = $1
	`
	var profile models.TherapistProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.HourlyRate,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
