package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

var errStoreDown = errors.New("store down")

// fakeStore keeps bookings and cleaners in memory and answers overlap queries
// with CleanerBusy.
type fakeStore struct {
	cleaners []Cleaner
	bookings []Booking

	overlapCalls []overlapCall
	failList     bool
	failOverlap  bool
}

type overlapCall struct {
	cleanerID  int64
	start, end time.Time
	exclude    *uuid.UUID
}

func (f *fakeStore) ListCleaners(ctx context.Context) ([]Cleaner, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.cleaners, nil
}

func (f *fakeStore) FindCleanersByIDs(ctx context.Context, ids []int64) ([]Cleaner, error) {
	if f.failList {
		return nil, errStoreDown
	}
	var out []Cleaner
	for _, c := range f.cleaners {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) FindBookingsInWindow(ctx context.Context, from, to time.Time) ([]Booking, error) {
	var out []Booking
	for _, b := range f.bookings {
		if !b.Start.Before(from) && !b.Start.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) HasOverlap(ctx context.Context, cleanerID int64, start, end time.Time, exclude *uuid.UUID) (bool, error) {
	f.overlapCalls = append(f.overlapCalls, overlapCall{cleanerID: cleanerID, start: start, end: end, exclude: exclude})
	if f.failOverlap {
		return false, errStoreDown
	}
	return CleanerBusy(f.bookings, cleanerID, utils.TimeRange{Start: start, End: end}, exclude), nil
}

func (f *fakeStore) add(start time.Time, hours int, cleanerIDs ...int64) Booking {
	b := Booking{
		ID:            uuid.New(),
		Start:         start,
		End:           start.Add(time.Duration(hours) * time.Hour),
		DurationHours: hours,
		CleanerIDs:    cleanerIDs,
	}
	f.bookings = append(f.bookings, b)
	return b
}

// at builds a UTC instant on 2025-07-10 (a Thursday).
func at(hour, min int) time.Time {
	return time.Date(2025, 7, 10, hour, min, 0, 0, time.UTC)
}

func thursday() time.Time {
	return time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
}

func friday() time.Time {
	return time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
}

func vehicleCleaners() []Cleaner {
	v10 := Vehicle{ID: 10, Label: "Van 10"}
	v11 := Vehicle{ID: 11, Label: "Van 11"}
	return []Cleaner{
		{ID: 101, Name: "Ayla", Vehicle: v10},
		{ID: 102, Name: "Bora", Vehicle: v10},
		{ID: 103, Name: "Cem", Vehicle: v10},
		{ID: 104, Name: "Deniz", Vehicle: v10},
		{ID: 201, Name: "Emre", Vehicle: v11},
	}
}
