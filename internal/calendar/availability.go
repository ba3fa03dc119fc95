package calendar

import (
	"context"
	"slices"
	"time"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// Availability answers read-only scheduling queries across the whole directory.
type Availability struct {
	store     BookingStore
	directory CleanerDirectory
	policy    Policy
}

func NewAvailability(store BookingStore, directory CleanerDirectory, policy Policy) *Availability {
	return &Availability{store: store, directory: directory, policy: policy}
}

// Daily maps every cleaner that has at least one candidate slot on date to its
// ordered slot starts for a booking of durationHours.
func (a *Availability) Daily(ctx context.Context, date time.Time, durationHours int) (map[int64][]time.Time, error) {
	if !a.policy.FitsDay(durationHours) {
		return nil, ErrInvalidDuration
	}
	cleaners, err := a.directory.ListCleaners(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[int64][]time.Time)
	if len(cleaners) == 0 {
		return result, nil
	}

	bounds := a.policy.DayBounds(date)
	bookings, err := a.store.FindBookingsInWindow(ctx, bounds.Start, bounds.End)
	if err != nil {
		return nil, err
	}

	perCleaner := make(map[int64][]Booking, len(cleaners))
	for _, b := range bookings {
		for _, id := range b.CleanerIDs {
			perCleaner[id] = append(perCleaner[id], b)
		}
	}

	day := a.policy.Day(date)
	for _, c := range cleaners {
		slots := NewDaySchedule(day, perCleaner[c.ID]).FreeSlots(durationHours, a.policy)
		if len(slots) > 0 {
			result[c.ID] = slots
		}
	}

	return result, nil
}

// Slot returns the ids (ascending) of cleaners with no booking intersecting the
// exact window built from date, startClock and durationHours.
func (a *Availability) Slot(ctx context.Context, date time.Time, startClock time.Duration, durationHours int) ([]int64, error) {
	if !a.policy.FitsDay(durationHours) {
		return nil, ErrInvalidDuration
	}
	w := a.policy.ToWindow(date, startClock, durationHours)
	return a.FreeCleaners(ctx, w)
}

// FreeCleaners returns the ids (ascending) of cleaners free for the whole of w.
func (a *Availability) FreeCleaners(ctx context.Context, w utils.TimeRange) ([]int64, error) {
	cleaners, err := a.directory.ListCleaners(ctx)
	if err != nil {
		return nil, err
	}

	free := []int64{}
	for _, c := range cleaners {
		busy, err := a.store.HasOverlap(ctx, c.ID, w.Start, w.End, nil)
		if err != nil {
			return nil, err
		}
		if !busy {
			free = append(free, c.ID)
		}
	}
	slices.Sort(free)
	return free, nil
}
