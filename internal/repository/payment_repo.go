package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
)

type CreatePaymentInput struct {
	SessionID   uuid.UUID
	Amount      float64
	Status      string
	ProviderRef string
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, input CreatePaymentInput) (*models.PaymentRecord, error) {
	query := `
		INSERT INTO payments (session_id, amount, status, provider_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING id, session_id, amount, status, provider_ref, created_at
	`

	var payment models.PaymentRecord
	err := r.db.QueryRow(ctx, query, input.SessionID, input.Amount, input.Status, input.ProviderRef).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.ProviderRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.PaymentRecord, error) {
	query := `
		SELECT id, session_id, amount, status, provider_ref, created_at
		FROM payments
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var payment models.PaymentRecord
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.ProviderRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListBySessionIDs(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]models.PaymentRecord, error) {
	payments := make(map[uuid.UUID]models.PaymentRecord, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return payments, nil
	}

	query := `
		SELECT DISTINCT ON (session_id) id, session_id, amount, status, provider_ref, created_at
		FROM payments
		WHERE session_id = ANY($1)
		ORDER BY session_id, created_at DESC
	`

	rows, err := r.db.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.PaymentRecord
		if err := rows.Scan(
			&payment.ID,
			&payment.SessionID,
			&payment.Amount,
			&payment.Status,
			&payment.ProviderRef,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments[payment.SessionID] = payment
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	paymentID uuid.UUID,
	currentStatus string,
	nextStatus string,
) (*models.PaymentRecord, error) {
	query := `
		UPDATE payments
		SET status = $3
		WHERE id = $1 AND status = $2
		RETURNING id, session_id, amount, status, provider_ref, created_at
	`

	var payment models.PaymentRecord
	err := r.db.QueryRow(ctx, query, paymentID, currentStatus, nextStatus).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.ProviderRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
