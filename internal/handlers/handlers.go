package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/scheduling"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/services"
)

func actorFromContext(c *fiber.Ctx) (services.Actor, error) {
	rawID, ok := c.Locals("user_id").(string)
	if !ok || rawID == "" {
		return services.Actor{}, errors.New("missing user id")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return services.Actor{}, err
	}
	role, _ := c.Locals("role").(string)
	return services.Actor{ID: id, Role: role}, nil
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// mapServiceError translates service sentinel errors into HTTP statuses.
func mapServiceError(c *fiber.Ctx, err error) error {
	var notJoinable *services.NotJoinableError
	if errors.As(err, &notJoinable) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":             notJoinable.Error(),
			"phase":             notJoinable.Phase,
			"countdown_seconds": int64(notJoinable.Countdown / time.Second),
		})
	}

	switch {
	case errors.Is(err, services.ErrInvalidWindow), errors.Is(err, scheduling.ErrBadTimeFormat):
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPaymentDeclined):
		return errorResponse(c, fiber.StatusPaymentRequired, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return errorResponse(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, services.ErrNotTherapist):
		return errorResponse(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrSlotTaken), errors.Is(err, services.ErrWindowOverlap):
		return errorResponse(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidSlot),
		errors.Is(err, services.ErrInvalidStateTransition),
		errors.Is(err, services.ErrAlreadyTerminal),
		errors.Is(err, services.ErrSessionNotStarted),
		errors.Is(err, services.ErrSessionNotYetOver),
		errors.Is(err, services.ErrTooLateToCancel),
		errors.Is(err, services.ErrNotOnlineSession),
		errors.Is(err, services.ErrRoomUnavailable):
		return errorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrPaymentProvider):
		return errorResponse(c, fiber.StatusBadGateway, err.Error())
	default:
		return errorResponse(c, fiber.StatusInternalServerError, "internal server error")
	}
}
