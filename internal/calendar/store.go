package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Vehicle, Cleaner and Booking are read snapshots. The core never mutates them
// and never triggers lazy loads: everything it needs is fetched eagerly through
// BookingStore and CleanerDirectory.
type Vehicle struct {
	ID    int64
	Label string
}

type Cleaner struct {
	ID      int64
	Name    string
	Vehicle Vehicle
}

type Booking struct {
	ID            uuid.UUID
	Start         time.Time
	End           time.Time
	DurationHours int
	Customer      string
	VehicleID     int64
	CleanerIDs    []int64
}

// HasCleaner reports whether the booking is assigned to cleanerID.
func (b Booking) HasCleaner(cleanerID int64) bool {
	for _, id := range b.CleanerIDs {
		if id == cleanerID {
			return true
		}
	}
	return false
}

// BookingStore is the read side of booking persistence.
type BookingStore interface {
	// FindBookingsInWindow returns bookings whose start lies within [from, to].
	FindBookingsInWindow(ctx context.Context, from, to time.Time) ([]Booking, error)
	// HasOverlap reports whether cleanerID holds a booking intersecting [start, end),
	// ignoring the booking with id exclude when it is non-nil.
	HasOverlap(ctx context.Context, cleanerID int64, start, end time.Time, exclude *uuid.UUID) (bool, error)
}

// CleanerDirectory resolves cleaners together with their vehicle.
type CleanerDirectory interface {
	ListCleaners(ctx context.Context) ([]Cleaner, error)
	// FindCleanersByIDs may return fewer records than requested; unknown ids are skipped.
	FindCleanersByIDs(ctx context.Context, ids []int64) ([]Cleaner, error)
}
