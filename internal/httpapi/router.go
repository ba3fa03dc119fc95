package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/service"
)

type Deps struct {
	Bookings     *service.BookingService
	Availability *service.AvailabilityService
	Policy       calendar.Policy
	Logger       *zap.Logger

	// RequestsPerMin per client IP; 0 disables limiting.
	RequestsPerMin int
	// Ping backs /healthz; nil always reports ok.
	Ping func(ctx context.Context) error
}

func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger.Named("http")
	h := &Handler{
		bookings:     d.Bookings,
		availability: d.Availability,
		policy:       d.Policy,
		ping:         d.Ping,
		logger:       logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), AccessLog(logger))

	r.GET("/healthz", h.Health)

	api := r.Group("/api/v1", RateLimit(d.RequestsPerMin, logger))
	{
		api.GET("/availability", h.DailyAvailability)
		api.GET("/availability/slot", h.SlotAvailability)
		api.GET("/cleaners/available", h.AvailableCleaners)

		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/:id", h.GetBooking)
		api.PATCH("/bookings/:id", h.UpdateBooking)
		api.DELETE("/bookings/:id", h.DeleteBooking)
		api.GET("/bookings/:id/events", h.BookingHistory)
	}

	return r
}
