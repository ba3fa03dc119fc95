package httpapi

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// LocalDateTimeLayout is a wall-clock timestamp in the service time zone.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

type createBookingRequest struct {
	Date          string  `json:"date" binding:"required"`
	StartTime     string  `json:"startTime" binding:"required"`
	DurationHours int     `json:"durationHours"`
	Customer      string  `json:"customer"`
	CleanerIDs    []int64 `json:"cleanerIds"`
}

type updateBookingRequest struct {
	NewDate          *string `json:"newDate"`
	NewStartTime     *string `json:"newStartTime"`
	NewDurationHours *int    `json:"newDurationHours"`
	NewCustomer      *string `json:"newCustomer"`
	NewCleanerIDs    []int64 `json:"newCleanerIds"`
}

type bookingResponse struct {
	ID            uuid.UUID `json:"id"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	DurationHours int       `json:"durationH"`
	Customer      string    `json:"customer"`
	VehicleID     int64     `json:"vehicleId"`
	CleanerIDs    []int64   `json:"cleanerIds"`
	Summary       string    `json:"summary"`
}

type availabilitySlot struct {
	CleanerID      int64    `json:"cleanerId"`
	FreeStartTimes []string `json:"freeStartTimes"`
}

type cleanerResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	VehicleLabel string `json:"vehicleLabel"`
}

type eventResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      model.EventType `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	Details   any             `json:"details,omitempty"`
}

func toBookingResponse(b *calendar.Booking, loc *time.Location) bookingResponse {
	ids := b.CleanerIDs
	if ids == nil {
		ids = []int64{}
	}
	return bookingResponse{
		ID:            b.ID,
		StartTime:     b.Start.In(loc).Format(LocalDateTimeLayout),
		EndTime:       b.End.In(loc).Format(LocalDateTimeLayout),
		DurationHours: b.DurationHours,
		Customer:      b.Customer,
		VehicleID:     b.VehicleID,
		CleanerIDs:    ids,
		Summary:       utils.FormatSlotForUser(utils.TimeRange{Start: b.Start, End: b.End}, loc, false, ""),
	}
}

// toAvailability orders the response by cleaner id.
func toAvailability(slots map[int64][]time.Time, loc *time.Location) []availabilitySlot {
	out := make([]availabilitySlot, 0, len(slots))
	for id, starts := range slots {
		times := make([]string, 0, len(starts))
		for _, s := range starts {
			times = append(times, s.In(loc).Format(utils.ClockLayout))
		}
		out = append(out, availabilitySlot{CleanerID: id, FreeStartTimes: times})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CleanerID < out[j].CleanerID })
	return out
}

func toCleanerResponses(cleaners []calendar.Cleaner) []cleanerResponse {
	out := make([]cleanerResponse, 0, len(cleaners))
	for _, c := range cleaners {
		out = append(out, cleanerResponse{ID: c.ID, Name: c.Name, VehicleLabel: c.Vehicle.Label})
	}
	return out
}

// parseClock accepts "HH:MM" and "HH:MM:SS" with zero seconds.
func parseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ":") == 2 {
		if !strings.HasSuffix(s, ":00") {
			return 0, utils.ErrInvalidClock
		}
		s = strings.TrimSuffix(s, ":00")
	}
	return utils.ParseClock(s)
}

// parseLocalDateTime reads "2006-01-02T15:04[:05]" in loc.
func parseLocalDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{LocalDateTimeLayout, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, badRequest{msg: "invalid date-time " + strings.TrimSpace(s) + ", expected YYYY-MM-DDTHH:MM:SS"}
}
