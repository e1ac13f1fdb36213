package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/models"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/repository"
	"github.com/asmaagnf/Mental-Health-Platform-sub000/internal/scheduling"
)

type availabilityStore interface {
	ListByTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.AvailabilityWindow, error)
	GetByID(ctx context.Context, windowID uuid.UUID) (*models.AvailabilityWindow, error)
	Create(ctx context.Context, input repository.AvailabilityWindowInput) (*models.AvailabilityWindow, error)
	Update(ctx context.Context, windowID uuid.UUID, input repository.AvailabilityWindowInput) (*models.AvailabilityWindow, error)
	Delete(ctx context.Context, windowID uuid.UUID) error
}

type conflictChecker interface {
	HasConflict(ctx context.Context, therapistID uuid.UUID, startAt time.Time, durationMinutes int) (bool, error)
}

type AvailabilityService struct {
	store     availabilityStore
	conflicts conflictChecker
	logger    *zap.Logger
}

func NewAvailabilityService(store availabilityStore, conflicts conflictChecker, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{store: store, conflicts: conflicts, logger: logger}
}

func (s *AvailabilityService) ListWindows(ctx context.Context, therapistID uuid.UUID) ([]models.AvailabilityWindow, error) {
	return s.store.ListByTherapist(ctx, therapistID)
}

func (s *AvailabilityService) AddWindow(
	ctx context.Context,
	actor Actor,
	dayOfWeek int,
	startTime string,
	endTime string,
) (*models.AvailabilityWindow, error) {
	if actor.Role != models.RoleTherapist {
		return nil, ErrForbidden
	}
	if err := validateWindowBounds(dayOfWeek, startTime, endTime); err != nil {
		return nil, err
	}

	existing, err := s.store.ListByTherapist(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if overlapsExisting(existing, dayOfWeek, startTime, endTime, uuid.Nil) {
		return nil, ErrWindowOverlap
	}

	window, err := s.store.Create(ctx, repository.AvailabilityWindowInput{
		TherapistID: actor.ID,
		DayOfWeek:   dayOfWeek,
		StartTime:   startTime,
		EndTime:     endTime,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("availability window added",
		zap.String("therapist_id", actor.ID.String()),
		zap.Int("day_of_week", dayOfWeek),
		zap.String("start_time", startTime),
		zap.String("end_time", endTime),
	)
	return window, nil
}

func (s *AvailabilityService) UpdateWindow(
	ctx context.Context,
	actor Actor,
	windowID uuid.UUID,
	dayOfWeek int,
	startTime string,
	endTime string,
) (*models.AvailabilityWindow, error) {
	window, err := s.store.GetByID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if window.TherapistID != actor.ID {
		return nil, ErrForbidden
	}
	if err := validateWindowBounds(dayOfWeek, startTime, endTime); err != nil {
		return nil, err
	}

	existing, err := s.store.ListByTherapist(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if overlapsExisting(existing, dayOfWeek, startTime, endTime, windowID) {
		return nil, ErrWindowOverlap
	}

	return s.store.Update(ctx, windowID, repository.AvailabilityWindowInput{
		TherapistID: actor.ID,
		DayOfWeek:   dayOfWeek,
		StartTime:   startTime,
		EndTime:     endTime,
	})
}

func (s *AvailabilityService) RemoveWindow(ctx context.Context, actor Actor, windowID uuid.UUID) error {
	window, err := s.store.GetByID(ctx, windowID)
	if err != nil {
		return err
	}
	if window.TherapistID != actor.ID {
		return ErrForbidden
	}
	return s.store.Delete(ctx, windowID)
}

// SlotsForDate returns the therapist's free slot start times for a date,
// already filtered against confirmed bookings.
func (s *AvailabilityService) SlotsForDate(
	ctx context.Context,
	therapistID uuid.UUID,
	date time.Time,
	durationMinutes int,
) ([]string, error) {
	windows, err := s.store.ListByTherapist(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	candidates, err := scheduling.SlotsForDate(windows, date, durationMinutes)
	if err != nil {
		return nil, err
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	free := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		clock, err := scheduling.ParseClock(slot)
		if err != nil {
			return nil, err
		}
		startAt := midnight.Add(time.Duration(clock) * time.Minute)

		taken, err := s.conflicts.HasConflict(ctx, therapistID, startAt, durationMinutes)
		if err != nil {
			return nil, err
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free, nil
}

// BookableDates returns the dates of a month on which the therapist has
// at least one availability window.
func (s *AvailabilityService) BookableDates(ctx context.Context, therapistID uuid.UUID, month time.Time) ([]string, error) {
	windows, err := s.store.ListByTherapist(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	dates := make([]string, 0)
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		if scheduling.IsBookableDate(windows, day) {
			dates = append(dates, day.Format("2006-01-02"))
		}
	}
	return dates, nil
}

func validateWindowBounds(dayOfWeek int, startTime, endTime string) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return fmt.Errorf("%w: day of week %d out of range", ErrInvalidWindow, dayOfWeek)
	}
	start, err := scheduling.ParseClock(startTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	end, err := scheduling.ParseClock(endTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if start >= end {
		return fmt.Errorf("%w: start time must precede end time", ErrInvalidWindow)
	}
	return nil
}

func overlapsExisting(existing []models.AvailabilityWindow, dayOfWeek int, startTime, endTime string, excludeID uuid.UUID) bool {
	start, err := scheduling.ParseClock(startTime)
	if err != nil {
		return false
	}
	end, err := scheduling.ParseClock(endTime)
	if err != nil {
		return false
	}

	for _, w := range existing {
		if w.ID == excludeID || w.DayOfWeek != dayOfWeek {
			continue
		}
		ws, err := scheduling.ParseClock(w.StartTime)
		if err != nil {
			continue
		}
		we, err := scheduling.ParseClock(w.EndTime)
		if err != nil {
			continue
		}
		if start < we && end > ws {
			return true
		}
	}
	return false
}
