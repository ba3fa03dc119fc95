package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tsriharsha402/cleaning-booking-system/internal/cache"
	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/repository"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

type AvailabilityService struct {
	availability *calendar.Availability
	cleaners     repository.CleanerRepository
	policy       calendar.Policy
	cache        cache.AvailabilityCache
	logger       *zap.Logger
}

func NewAvailabilityService(
	store *repository.CalendarStore,
	cleaners repository.CleanerRepository,
	policy calendar.Policy,
	availabilityCache cache.AvailabilityCache,
	logger *zap.Logger,
) *AvailabilityService {
	if availabilityCache == nil {
		availabilityCache = cache.Nop{}
	}
	return &AvailabilityService{
		availability: calendar.NewAvailability(store, store, policy),
		cleaners:     cleaners,
		policy:       policy,
		cache:        availabilityCache,
		logger:       logger.Named("availability"),
	}
}

// Daily returns, per cleaner, the slot starts a booking of durationHours could
// use on date. Results are cached per date and duration until a booking on that
// date changes.
func (s *AvailabilityService) Daily(ctx context.Context, date time.Time, durationHours int) (cache.DailySlots, error) {
	if !s.policy.FitsDay(durationHours) {
		return nil, calendar.ErrInvalidDuration
	}
	day := s.policy.Day(date)

	cached, ok, err := s.cache.Get(ctx, day, durationHours)
	if err != nil {
		s.logger.Warn("availability cache read failed", zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	// read before the bookings so a commit landing in between bumps it
	gen, genErr := s.cache.Generation(ctx, day)
	if genErr != nil {
		s.logger.Warn("availability cache generation read failed", zap.Error(genErr))
	}

	slots, err := s.availability.Daily(ctx, day, durationHours)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		err := s.cache.Set(ctx, day, durationHours, slots, gen)
		switch {
		case errors.Is(err, cache.ErrStale):
			s.logger.Debug("availability changed while computing, not cached", zap.Time("date", day))
		case err != nil:
			s.logger.Warn("availability cache write failed", zap.Error(err))
		}
	}
	return slots, nil
}

// Slot returns the ids of cleaners free for the exact window.
func (s *AvailabilityService) Slot(ctx context.Context, date time.Time, startClock time.Duration, durationHours int) ([]int64, error) {
	if !s.policy.FitsDay(durationHours) {
		return nil, calendar.ErrInvalidDuration
	}
	return s.availability.Slot(ctx, date, startClock, durationHours)
}

// FreeCleaners lists cleaners with no booking intersecting [start, end).
func (s *AvailabilityService) FreeCleaners(ctx context.Context, start, end time.Time) ([]calendar.Cleaner, error) {
	if _, err := utils.NewTimeRange(start, end); err != nil {
		return nil, err
	}
	rows, err := s.cleaners.ListAvailable(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list available cleaners: %w", err)
	}
	out := make([]calendar.Cleaner, 0, len(rows))
	for i := range rows {
		out = append(out, repository.ToCalendarCleaner(&rows[i]))
	}
	return out, nil
}
