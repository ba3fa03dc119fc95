package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidClock     = errors.New("invalid clock value, expected HH:MM")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange builds an interval and rejects zero or inverted bounds.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// Duration of the interval.
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps reports a non-empty intersection of two half-open intervals.
// Touching endpoints do not overlap.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return rangesOverlap(tr, other, false)
}

// HasOverlap checks newRange against existing and returns the conflicting ranges.
// inclusive = true treats touching endpoints as a conflict.
func HasOverlap(
	newRange TimeRange,
	existing []TimeRange,
	inclusive bool,
) (bool, []TimeRange) {
	var conflicts []TimeRange

	for _, tr := range existing {
		if rangesOverlap(newRange, tr, inclusive) {
			conflicts = append(conflicts, tr)
		}
	}

	return len(conflicts) > 0, conflicts
}

func rangesOverlap(a, b TimeRange, inclusive bool) bool {
	if inclusive {
		// closed intervals: a.Start <= b.End && b.Start <= a.End
		return !a.Start.After(b.End) && !b.Start.After(a.End)
	}

	// half-open: b.End > a.Start && b.Start < a.End
	return b.End.After(a.Start) && b.Start.Before(a.End)
}

// DateOnly drops the clock part, keeping t's location.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// AtClock places a wall-clock offset (e.g. 8h30m) on the calendar date of date in loc.
// A nil loc keeps date's own location.
func AtClock(date time.Time, clock time.Duration, loc *time.Location) time.Time {
	if loc == nil {
		loc = date.Location()
	}
	year, month, day := date.Date()
	hours := int(clock / time.Hour)
	minutes := int((clock % time.Hour) / time.Minute)
	return time.Date(year, month, day, hours, minutes, 0, 0, loc)
}

// ClockOf returns the wall-clock offset of t from its local midnight.
func ClockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, ErrInvalidClock
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// FormatClock renders an offset from midnight as "HH:MM".
func FormatClock(clock time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(clock/time.Hour), int((clock%time.Hour)/time.Minute))
}

// ParseDate parses "YYYY-MM-DD" as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// FormatSlotForUser renders an interval as a human readable string,
// e.g. "Thursday, 10.07.2025, 10:00–12:00".
// If loc != nil the bounds are converted first. includeID appends the id in brackets.
func FormatSlotForUser(
	tr TimeRange,
	loc *time.Location,
	includeID bool,
	id string,
) string {
	start := tr.Start
	end := tr.End

	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	base := fmt.Sprintf("%s, %s, %s–%s",
		start.Weekday(),
		start.Format("02.01.2006"),
		start.Format(ClockLayout),
		end.Format(ClockLayout),
	)

	if includeID && id != "" {
		return fmt.Sprintf("%s (ID: %s)", base, id)
	}

	return base
}
