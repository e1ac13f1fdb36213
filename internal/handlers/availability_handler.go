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

type AvailabilityService interface {
	ListWindows(ctx context.Context, therapistID uuid.UUID) ([]models.AvailabilityWindow, error)
	AddWindow(ctx context.Context, actor services.Actor, dayOfWeek int, startTime, endTime string) (*models.AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, actor services.Actor, windowID uuid.UUID, dayOfWeek int, startTime, endTime string) (*models.AvailabilityWindow, error)
	RemoveWindow(ctx context.Context, actor services.Actor, windowID uuid.UUID) error
	SlotsForDate(ctx context.Context, therapistID uuid.UUID, date time.Time, durationMinutes int) ([]string, error)
	BookableDates(ctx context.Context, therapistID uuid.UUID, month time.Time) ([]string, error)
}

type AvailabilityHandler struct {
	service  AvailabilityService
	validate *validator.Validate
}

func NewAvailabilityHandler(service AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:  service,
		validate: validator.New(),
	}
}

type windowRequest struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func (h *AvailabilityHandler) ListWindows(c *fiber.Ctx) error {
	therapistID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid therapist id")
	}

	windows, err := h.service.ListWindows(c.Context(), therapistID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"windows": windows})
}

func (h *AvailabilityHandler) AddWindow(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req windowRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	window, err := h.service.AddWindow(c.Context(), actor, *req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(window)
}

func (h *AvailabilityHandler) UpdateWindow(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	windowID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid window id")
	}

	var req windowRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	window, err := h.service.UpdateWindow(c.Context(), actor, windowID, *req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(window)
}

func (h *AvailabilityHandler) RemoveWindow(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	windowID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid window id")
	}

	if err := h.service.RemoveWindow(c.Context(), actor, windowID); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AvailabilityHandler) Slots(c *fiber.Ctx) error {
	therapistID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid therapist id")
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
	}
	duration := c.QueryInt("duration", 60)
	if duration < 15 || duration > 240 {
		return errorResponse(c, fiber.StatusBadRequest, "duration must be between 15 and 240 minutes")
	}

	slots, err := h.service.SlotsForDate(c.Context(), therapistID, date, duration)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"date": c.Query("date"), "slots": slots})
}

func (h *AvailabilityHandler) BookableDates(c *fiber.Ctx) error {
	therapistID, err := parseUUIDParam(c, "id")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid therapist id")
	}

	month, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "month must be formatted as YYYY-MM")
	}

	dates, err := h.service.BookableDates(c.Context(), therapistID, month)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"month": c.Query("month"), "dates": dates})
}
