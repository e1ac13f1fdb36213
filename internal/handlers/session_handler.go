package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/services"
)

type SessionService interface {
	CreatePendingSession(ctx context.Context, actor services.Actor, input services.CreateSessionInput) (*models.Session, error)
	ConfirmSession(ctx context.Context, actor services.Actor, sessionID uuid.UUID) (*models.Session, error)
	CancelSession(ctx context.Context, actor services.Actor, sessionID uuid.UUID) (*models.Session, error)
	CompleteSession(ctx context.Context, actor services.Actor, sessionID uuid.UUID) (*models.Session, error)
	AddTherapistNote(ctx context.Context, actor services.Actor, sessionID uuid.UUID, note string) (*models.Session, error)
	ListSessions(ctx context.Context, actor services.Actor, status, timeframe string) ([]models.SessionDetail, error)
	GetSession(ctx context.Context, actor services.Actor, sessionID uuid.UUID) (*models.SessionDetail, error)
	LiveState(ctx context.Context, actor services.Actor, sessionID uuid.UUID) (*services.LiveSessionState, error)
	JoinSession(ctx context.Context, actor services.Actor, sessionID uuid.UUID) (string, error)
}

type SessionHandler struct {
	service  SessionService
	validate *validator.Validate
}

func NewSessionHandler(service SessionService) *SessionHandler {
	return &SessionHandler{
		service:  service,
		validate: validator.New(),
	}
}

type createSessionRequest struct {
	TherapistID     string    `json:"therapist_id" validate:"required,uuid"`
	StartAt         time.Time `json:"start_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=15,max=240"`
	SessionType     string    `json:"session_type" validate:"required,oneof=online in_person"`
}

type noteRequest struct {
	Note string `json:"note" validate:"required,max=4000"`
}

func (h *SessionHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	therapistID, err := uuid.Parse(req.TherapistID)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid therapist id")
	}

	session, err := h.service.CreatePendingSession(c.Context(), actor, services.CreateSessionInput{
		TherapistID:     therapistID,
		StartAt:         req.StartAt,
		DurationMinutes: req.DurationMinutes,
		SessionType:     req.SessionType,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *SessionHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, h.service.ConfirmSession)
}

func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.service.CancelSession)
}

func (h *SessionHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.service.CompleteSession)
}

func (h *SessionHandler) transition(
	c *fiber.Ctx,
	op func(ctx context.Context, actor services.Actor, sessionID uuid.UUID) (*models.Session, error),
) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	sessionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid session id")
	}

	session, err := op(c.Context(), actor, sessionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) SetNote(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	sessionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid session id")
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.AddTherapistNote(c.Context(), actor, sessionID, req.Note)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(session)
}

func (h *SessionHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	status := c.Query("status")
	switch status {
	case "", models.SessionStatusPendingPayment, models.SessionStatusScheduled,
		models.SessionStatusCompleted, models.SessionStatusCancelled:
	default:
		return errorResponse(c, fiber.StatusBadRequest, "unknown status filter")
	}

	timeframe := c.Query("timeframe")
	switch timeframe {
	case "", "upcoming", "past":
	default:
		return errorResponse(c, fiber.StatusBadRequest, "timeframe must be upcoming or past")
	}

	sessions, err := h.service.ListSessions(c.Context(), actor, status, timeframe)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	sessionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid session id")
	}

	detail, err := h.service.GetSession(c.Context(), actor, sessionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(detail)
}

func (h *SessionHandler) Live(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	sessionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid session id")
	}

	state, err := h.service.LiveState(c.Context(), actor, sessionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(state)
}

func (h *SessionHandler) Join(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	sessionID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid session id")
	}

	room, err := h.service.JoinSession(c.Context(), actor, sessionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"room_url": room})
}
