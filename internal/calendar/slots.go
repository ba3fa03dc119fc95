package calendar

import (
	"slices"
	"time"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// DaySchedule is one cleaner's bookings on one calendar day, ordered by start.
// It owns its slice; callers keep whatever they passed in untouched.
type DaySchedule struct {
	day      time.Time
	bookings []Booking
}

// NewDaySchedule copies bookings and sorts the copy by start time.
func NewDaySchedule(day time.Time, bookings []Booking) DaySchedule {
	sorted := slices.Clone(bookings)
	slices.SortStableFunc(sorted, func(a, b Booking) int {
		return a.Start.Compare(b.Start)
	})
	return DaySchedule{day: day, bookings: sorted}
}

// Bookings returns a copy of the ordered snapshot.
func (s DaySchedule) Bookings() []Booking {
	return slices.Clone(s.bookings)
}

// FreeSlots returns one candidate start per gap: the first moment a booking of
// durationHours fits before the next booking, plus the cursor after the last
// booking if the duration still ends by closing time. The cursor moves to
// booking end + break after every booking whether or not a slot was emitted.
func (s DaySchedule) FreeSlots(durationHours int, p Policy) []time.Time {
	if !p.FitsDay(durationHours) {
		return nil
	}
	duration := time.Duration(durationHours) * time.Hour
	bounds := p.DayBounds(s.day)

	slots := []time.Time{}
	cursor := bounds.Start

	for _, b := range s.bookings {
		if b.Start.Sub(cursor) >= duration {
			slots = append(slots, cursor)
		}
		cursor = b.End.Add(p.Break)
	}

	if !cursor.Add(duration).After(bounds.End) {
		slots = append(slots, cursor)
	}

	return slots
}

// SlotWindows pairs each slot start with its end for display.
func SlotWindows(starts []time.Time, durationHours int) []utils.TimeRange {
	out := make([]utils.TimeRange, 0, len(starts))
	for _, s := range starts {
		out = append(out, utils.TimeRange{Start: s, End: s.Add(time.Duration(durationHours) * time.Hour)})
	}
	return out
}
