package calendar

import (
	"github.com/google/uuid"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// CleanerBusy scans a bookings snapshot the same way BookingStore.HasOverlap
// queries the store: only bookings holding cleanerID count, exclude is skipped.
// Intervals are half-open, so touching endpoints do not conflict. It is the
// in-memory reference the package's test store answers overlap queries with.
func CleanerBusy(bookings []Booking, cleanerID int64, w utils.TimeRange, exclude *uuid.UUID) bool {
	var held []utils.TimeRange
	for _, b := range bookings {
		if exclude != nil && b.ID == *exclude {
			continue
		}
		if b.HasCleaner(cleanerID) {
			held = append(held, utils.TimeRange{Start: b.Start, End: b.End})
		}
	}
	busy, _ := utils.HasOverlap(w, held, false)
	return busy
}
