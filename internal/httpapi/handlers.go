package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/service"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

type Handler struct {
	bookings     *service.BookingService
	availability *service.AvailabilityService
	policy       calendar.Policy
	ping         func(ctx context.Context) error
	logger       *zap.Logger
}

// GET /api/v1/availability?date=2025-07-10&durationHours=2
func (h *Handler) DailyAvailability(c *gin.Context) {
	date, err := utils.ParseDate(c.Query("date"), h.policy.Zone())
	if err != nil {
		h.fail(c, err)
		return
	}
	hours, err := intParam(c, "durationHours")
	if err != nil {
		h.fail(c, err)
		return
	}

	slots, err := h.availability.Daily(c.Request.Context(), date, hours)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toAvailability(slots, h.policy.Zone()))
}

// GET /api/v1/availability/slot?date=2025-07-10&startTime=10:00&durationHours=2
func (h *Handler) SlotAvailability(c *gin.Context) {
	date, err := utils.ParseDate(c.Query("date"), h.policy.Zone())
	if err != nil {
		h.fail(c, err)
		return
	}
	start, err := parseClock(c.Query("startTime"))
	if err != nil {
		h.fail(c, err)
		return
	}
	hours, err := intParam(c, "durationHours")
	if err != nil {
		h.fail(c, err)
		return
	}

	ids, err := h.availability.Slot(c.Request.Context(), date, start, hours)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

// GET /api/v1/cleaners/available?startTime=2025-07-10T10:00:00&endTime=2025-07-10T12:00:00
func (h *Handler) AvailableCleaners(c *gin.Context) {
	start, err := parseLocalDateTime(c.Query("startTime"), h.policy.Zone())
	if err != nil {
		h.fail(c, err)
		return
	}
	end, err := parseLocalDateTime(c.Query("endTime"), h.policy.Zone())
	if err != nil {
		h.fail(c, err)
		return
	}

	cleaners, err := h.availability.FreeCleaners(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCleanerResponses(cleaners))
}

// POST /api/v1/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badRequest{msg: err.Error()})
		return
	}
	date, err := utils.ParseDate(req.Date, h.policy.Zone())
	if err != nil {
		h.fail(c, err)
		return
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		h.fail(c, err)
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), service.CreateBookingInput{
		Date:          date,
		StartClock:    start,
		DurationHours: req.DurationHours,
		Customer:      req.Customer,
		CleanerIDs:    req.CleanerIDs,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b, h.policy.Zone()))
}

// PATCH /api/v1/bookings/:id
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badRequest{msg: err.Error()})
		return
	}

	in := service.UpdateBookingInput{
		DurationHours: req.NewDurationHours,
		Customer:      req.NewCustomer,
		CleanerIDs:    req.NewCleanerIDs,
	}
	if req.NewDate != nil {
		date, err := utils.ParseDate(*req.NewDate, h.policy.Zone())
		if err != nil {
			h.fail(c, err)
			return
		}
		in.Date = &date
	}
	if req.NewStartTime != nil {
		start, err := parseClock(*req.NewStartTime)
		if err != nil {
			h.fail(c, err)
			return
		}
		in.StartClock = &start
	}

	b, err := h.bookings.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b, h.policy.Zone()))
}

// GET /api/v1/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b, h.policy.Zone()))
}

// DELETE /api/v1/bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/bookings/:id/events
func (h *Handler) BookingHistory(c *gin.Context) {
	id, err := bookingID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	trail, err := h.bookings.History(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]eventResponse, 0, len(trail))
	for _, ev := range trail {
		resp := eventResponse{ID: ev.ID, Type: ev.EventType, CreatedAt: ev.CreatedAt}
		if len(ev.Details) > 0 {
			resp.Details = json.RawMessage(ev.Details)
		}
		out = append(out, resp)
	}

	page, err := optIntParam(c, "page")
	if err != nil {
		h.fail(c, err)
		return
	}
	size, err := optIntParam(c, "pageSize")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar.Paginate(out, page, size))
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bookingID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, badRequest{msg: "invalid booking id"}
	}
	return id, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, badRequest{msg: name + " is required"}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest{msg: name + " must be an integer"}
	}
	return v, nil
}

func optIntParam(c *gin.Context, name string) (int, error) {
	if c.Query(name) == "" {
		return 0, nil
	}
	return intParam(c, name)
}
