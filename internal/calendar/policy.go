package calendar

import (
	"slices"
	"time"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// Policy holds the booking rules of one operating day. It is passed into every
// entry point of the package instead of living in package-level constants.
type Policy struct {
	DayStart time.Duration // offset from local midnight, inclusive
	DayEnd   time.Duration // offset from local midnight, inclusive for booking ends

	// Break is the minimum idle time a cleaner needs between two bookings.
	Break time.Duration

	AllowedDurations []int // whole hours
	MinCleaners      int
	MaxCleaners      int
	BlackoutDays     []time.Weekday

	Location *time.Location
}

// DefaultPolicy: 08:00-22:00, 30 minute break, 2h or 4h, 1-3 cleaners, no Fridays.
func DefaultPolicy() Policy {
	return Policy{
		DayStart:         8 * time.Hour,
		DayEnd:           22 * time.Hour,
		Break:            30 * time.Minute,
		AllowedDurations: []int{2, 4},
		MinCleaners:      1,
		MaxCleaners:      3,
		BlackoutDays:     []time.Weekday{time.Friday},
		Location:         time.UTC,
	}
}

// Zone is the single time zone every wall-clock value is read in.
func (p Policy) Zone() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Day returns local midnight of date's calendar day in the policy location.
func (p Policy) Day(date time.Time) time.Time {
	return utils.AtClock(date, 0, p.Zone())
}

// DayBounds returns the operating window [open, close] of date.
func (p Policy) DayBounds(date time.Time) utils.TimeRange {
	return utils.TimeRange{
		Start: utils.AtClock(date, p.DayStart, p.Zone()),
		End:   utils.AtClock(date, p.DayEnd, p.Zone()),
	}
}

// ToWindow converts a date, a start clock and a duration in hours into [start, end).
func (p Policy) ToWindow(date time.Time, startClock time.Duration, durationHours int) utils.TimeRange {
	start := utils.AtClock(date, startClock, p.Zone())
	return utils.TimeRange{
		Start: start,
		End:   start.Add(time.Duration(durationHours) * time.Hour),
	}
}

// WithinOperatingHours is true iff the window starts no earlier than the opening
// clock and ends no later than the closing clock of its start date.
func (p Policy) WithinOperatingHours(w utils.TimeRange) bool {
	bounds := p.DayBounds(w.Start.In(p.Zone()))
	return !w.Start.Before(bounds.Start) && !w.End.After(bounds.End)
}

// IsBlackoutDay reports whether no bookings may be admitted on date.
func (p Policy) IsBlackoutDay(date time.Time) bool {
	return slices.Contains(p.BlackoutDays, date.In(p.Zone()).Weekday())
}

// FitsDay reports whether a job of durationHours is positive and no longer than
// the operating day. Anything longer can never be scheduled and, past a few
// million hours, would overflow time.Duration.
func (p Policy) FitsDay(durationHours int) bool {
	return durationHours > 0 && int64(durationHours) <= int64((p.DayEnd-p.DayStart)/time.Hour)
}

// IsAllowedDuration reports whether durationHours is one of the bookable lengths.
func (p Policy) IsAllowedDuration(durationHours int) bool {
	return slices.Contains(p.AllowedDurations, durationHours)
}
