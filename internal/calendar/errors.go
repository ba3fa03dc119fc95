package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// Kind classifies a business-rule rejection. Transports map kinds to status codes.
type Kind string

const (
	KindBlackoutDay           Kind = "blackout_day"
	KindOutsideOperatingHours Kind = "outside_operating_hours"
	KindInvalidDuration       Kind = "invalid_duration"
	KindInvalidCleanerCount   Kind = "invalid_cleaner_count"
	KindCleanerNotFound       Kind = "cleaner_not_found"
	KindVehicleMismatch       Kind = "vehicle_mismatch"
	KindCleanerUnavailable    Kind = "cleaner_unavailable"
	KindBookingNotFound       Kind = "booking_not_found"
)

// Error is a user-correctable rejection. Match on kind with errors.Is against the
// Err* sentinels, read details with errors.As.
type Error struct {
	Kind Kind

	// CleanerID is set for KindCleanerUnavailable.
	CleanerID int64
	// Missing lists unresolved ids for KindCleanerNotFound.
	Missing []int64

	msg string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.Kind)
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrBlackoutDay           = &Error{Kind: KindBlackoutDay, msg: "no bookings allowed on this day"}
	ErrOutsideOperatingHours = &Error{Kind: KindOutsideOperatingHours, msg: "booking must be within operating hours"}
	ErrInvalidDuration       = &Error{Kind: KindInvalidDuration, msg: "invalid booking duration"}
	ErrInvalidCleanerCount   = &Error{Kind: KindInvalidCleanerCount, msg: "invalid number of cleaners"}
	ErrCleanerNotFound       = &Error{Kind: KindCleanerNotFound, msg: "one or more cleaners not found"}
	ErrVehicleMismatch       = &Error{Kind: KindVehicleMismatch, msg: "all cleaners must belong to the same vehicle"}
	ErrCleanerUnavailable    = &Error{Kind: KindCleanerUnavailable, msg: "cleaner is busy or break too short"}
	ErrBookingNotFound       = &Error{Kind: KindBookingNotFound, msg: "booking not found"}
)

func outsideHoursError(p Policy) *Error {
	return &Error{
		Kind: KindOutsideOperatingHours,
		msg: fmt.Sprintf("booking must be within %s-%s",
			utils.FormatClock(p.DayStart), utils.FormatClock(p.DayEnd)),
	}
}

func invalidDurationError(p Policy) *Error {
	parts := make([]string, 0, len(p.AllowedDurations))
	for _, d := range p.AllowedDurations {
		parts = append(parts, fmt.Sprint(d))
	}
	return &Error{
		Kind: KindInvalidDuration,
		msg:  fmt.Sprintf("duration must be one of %s hours", strings.Join(parts, ", ")),
	}
}

func invalidCleanerCountError(p Policy) *Error {
	return &Error{
		Kind: KindInvalidCleanerCount,
		msg:  fmt.Sprintf("must assign %d-%d cleaners", p.MinCleaners, p.MaxCleaners),
	}
}

func cleanerNotFoundError(missing []int64) *Error {
	return &Error{
		Kind:    KindCleanerNotFound,
		Missing: missing,
		msg:     fmt.Sprintf("cleaners not found: %v", missing),
	}
}

func cleanerUnavailableError(id int64) *Error {
	return &Error{
		Kind:      KindCleanerUnavailable,
		CleanerID: id,
		msg:       fmt.Sprintf("cleaner %d is busy or break too short", id),
	}
}

// IsRejection reports whether err is a business-rule rejection rather than a
// collaborator failure.
func IsRejection(err error) bool {
	_, ok := KindOf(err)
	return ok
}

// KindOf extracts the rejection kind from err.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
