package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
)

// CalendarStore exposes the gorm repositories as the scheduling core's
// BookingStore and CleanerDirectory. Instants come back in loc.
type CalendarStore struct {
	bookings BookingRepository
	cleaners CleanerRepository
	loc      *time.Location
}

var (
	_ calendar.BookingStore     = (*CalendarStore)(nil)
	_ calendar.CleanerDirectory = (*CalendarStore)(nil)
)

func NewCalendarStore(bookings BookingRepository, cleaners CleanerRepository, loc *time.Location) *CalendarStore {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarStore{bookings: bookings, cleaners: cleaners, loc: loc}
}

func (s *CalendarStore) FindBookingsInWindow(ctx context.Context, from, to time.Time) ([]calendar.Booking, error) {
	rows, err := s.bookings.FindStartingBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]calendar.Booking, 0, len(rows))
	for i := range rows {
		out = append(out, ToCalendarBooking(&rows[i], s.loc))
	}
	return out, nil
}

func (s *CalendarStore) HasOverlap(ctx context.Context, cleanerID int64, start, end time.Time, exclude *uuid.UUID) (bool, error) {
	return s.bookings.HasOverlap(ctx, cleanerID, start, end, exclude)
}

func (s *CalendarStore) ListCleaners(ctx context.Context) ([]calendar.Cleaner, error) {
	rows, err := s.cleaners.List(ctx)
	if err != nil {
		return nil, err
	}
	return toCalendarCleaners(rows), nil
}

func (s *CalendarStore) FindCleanersByIDs(ctx context.Context, ids []int64) ([]calendar.Cleaner, error) {
	rows, err := s.cleaners.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toCalendarCleaners(rows), nil
}

// ToCalendarBooking converts a stored booking, cleaners preloaded.
func ToCalendarBooking(b *model.Booking, loc *time.Location) calendar.Booking {
	if loc == nil {
		loc = time.UTC
	}
	return calendar.Booking{
		ID:            b.ID,
		Start:         b.StartsAt.In(loc),
		End:           b.EndsAt.In(loc),
		DurationHours: b.DurationHours,
		Customer:      b.Customer,
		VehicleID:     b.VehicleID,
		CleanerIDs:    b.CleanerIDs(),
	}
}

// ToCalendarCleaner converts a stored cleaner, vehicle preloaded.
func ToCalendarCleaner(c *model.Cleaner) calendar.Cleaner {
	out := calendar.Cleaner{ID: c.ID, Name: c.Name, Vehicle: calendar.Vehicle{ID: c.VehicleID}}
	if c.Vehicle != nil {
		out.Vehicle.Label = c.Vehicle.Label
	}
	return out
}

func toCalendarCleaners(rows []model.Cleaner) []calendar.Cleaner {
	out := make([]calendar.Cleaner, 0, len(rows))
	for i := range rows {
		out = append(out, ToCalendarCleaner(&rows[i]))
	}
	return out
}
