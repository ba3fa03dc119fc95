package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// AdmissionRequest is a proposed booking, new or replacing an existing one.
type AdmissionRequest struct {
	Date          time.Time
	StartClock    time.Duration
	DurationHours int
	CleanerIDs    []int64

	// ExcludeBookingID is the booking being updated; it never conflicts with itself.
	ExcludeBookingID *uuid.UUID
}

// Admission is what a caller needs to persist an admitted booking.
type Admission struct {
	Window   utils.TimeRange
	Cleaners []Cleaner
	Vehicle  Vehicle
}

// CleanerIDs of the admitted cleaners in request order.
func (a *Admission) CleanerIDs() []int64 {
	ids := make([]int64, 0, len(a.Cleaners))
	for _, c := range a.Cleaners {
		ids = append(ids, c.ID)
	}
	return ids
}

// Validator is the gate a booking create or update passes before it is stored.
type Validator struct {
	store     BookingStore
	directory CleanerDirectory
	policy    Policy
}

func NewValidator(store BookingStore, directory CleanerDirectory, policy Policy) *Validator {
	return &Validator{store: store, directory: directory, policy: policy}
}

// ValidateAndResolve runs the admission rules in a fixed order and stops at the
// first violation:
//   - blackout day;
//   - operating hours;
//   - allowed duration;
//   - cleaner count;
//   - every cleaner exists;
//   - all cleaners share one vehicle;
//   - every cleaner is free for [start-break, end).
//
// Widening the window by the break on the left enforces both "no double booking"
// and "enough rest before this booking" with one overlap query per cleaner.
func (v *Validator) ValidateAndResolve(ctx context.Context, req AdmissionRequest) (*Admission, error) {
	p := v.policy

	if p.IsBlackoutDay(req.Date) {
		return nil, ErrBlackoutDay
	}

	w := p.ToWindow(req.Date, req.StartClock, req.DurationHours)
	if !p.WithinOperatingHours(w) {
		return nil, outsideHoursError(p)
	}

	if !p.IsAllowedDuration(req.DurationHours) {
		return nil, invalidDurationError(p)
	}

	ids := uniqueIDs(req.CleanerIDs)
	if len(ids) < p.MinCleaners || len(ids) > p.MaxCleaners {
		return nil, invalidCleanerCountError(p)
	}

	found, err := v.directory.FindCleanersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	cleaners, missing := orderByIDs(ids, found)
	if len(missing) > 0 {
		return nil, cleanerNotFoundError(missing)
	}

	vehicle := cleaners[0].Vehicle
	for _, c := range cleaners[1:] {
		if c.Vehicle.ID != vehicle.ID {
			return nil, ErrVehicleMismatch
		}
	}

	probeStart := w.Start.Add(-p.Break)
	for _, c := range cleaners {
		busy, err := v.store.HasOverlap(ctx, c.ID, probeStart, w.End, req.ExcludeBookingID)
		if err != nil {
			return nil, err
		}
		if busy {
			return nil, cleanerUnavailableError(c.ID)
		}
	}

	return &Admission{Window: w, Cleaners: cleaners, Vehicle: vehicle}, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// orderByIDs lines found cleaners up with the requested ids and reports the gaps.
func orderByIDs(ids []int64, found []Cleaner) ([]Cleaner, []int64) {
	byID := make(map[int64]Cleaner, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	var (
		cleaners = make([]Cleaner, 0, len(ids))
		missing  []int64
	)
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		cleaners = append(cleaners, c)
	}
	return cleaners, missing
}
