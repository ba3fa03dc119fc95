package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// badRequest marks malformed input detected by the transport itself.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func errorBody(status int, kind calendar.Kind, msg string) gin.H {
	body := gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    status,
		"error":     http.StatusText(status),
		"message":   msg,
	}
	if kind != "" {
		body["kind"] = kind
	}
	return body
}

// StatusOf maps an error to its HTTP status: not-found 404, business-rule
// rejections and malformed input 400, anything else 500.
func StatusOf(err error) int {
	var br badRequest
	switch {
	case errors.Is(err, calendar.ErrBookingNotFound):
		return http.StatusNotFound
	case calendar.IsRejection(err), errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrInvalidTimeRange),
		errors.Is(err, utils.ErrInvalidClock),
		errors.Is(err, utils.ErrInvalidDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := StatusOf(err)
	kind, _ := calendar.KindOf(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "an unexpected error occurred"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody(status, kind, msg))
}
