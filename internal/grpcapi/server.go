package grpcapi

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/service"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

type Server struct {
	bookings     *service.BookingService
	availability *service.AvailabilityService
	policy       calendar.Policy
	logger       *zap.Logger
}

var _ SchedulingServer = (*Server)(nil)

func NewServer(
	bookings *service.BookingService,
	availability *service.AvailabilityService,
	policy calendar.Policy,
	logger *zap.Logger,
) *Server {
	return &Server{
		bookings:     bookings,
		availability: availability,
		policy:       policy,
		logger:       logger.Named("grpc"),
	}
}

// DailyAvailability: {date, durationHours} -> {slots: [{cleanerId, freeStartTimes}]}
func (s *Server) DailyAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	rawDate, err := reqString(in, "date")
	if err != nil {
		return nil, err
	}
	date, err := parseDate(rawDate, s.policy.Zone())
	if err != nil {
		return nil, err
	}
	hours, err := reqInt(in, "durationHours")
	if err != nil {
		return nil, err
	}

	slots, err := s.availability.Daily(ctx, date, hours)
	if err != nil {
		return nil, s.toStatus(err)
	}

	ids := make([]int64, 0, len(slots))
	for id := range slots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	list := make([]any, 0, len(ids))
	for _, id := range ids {
		times := make([]any, 0, len(slots[id]))
		for _, start := range slots[id] {
			times = append(times, start.In(s.policy.Zone()).Format(utils.ClockLayout))
		}
		list = append(list, map[string]any{"cleanerId": id, "freeStartTimes": times})
	}
	return newStruct(map[string]any{"slots": list})
}

// SlotAvailability: {date, startTime, durationHours} -> {cleanerIds}
func (s *Server) SlotAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	rawDate, err := reqString(in, "date")
	if err != nil {
		return nil, err
	}
	date, err := parseDate(rawDate, s.policy.Zone())
	if err != nil {
		return nil, err
	}
	rawStart, err := reqString(in, "startTime")
	if err != nil {
		return nil, err
	}
	start, err := parseClock(rawStart)
	if err != nil {
		return nil, err
	}
	hours, err := reqInt(in, "durationHours")
	if err != nil {
		return nil, err
	}

	ids, err := s.availability.Slot(ctx, date, start, hours)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return newStruct(map[string]any{"cleanerIds": idList(ids)})
}

// CreateBooking: {date, startTime, durationHours, customer, cleanerIds} -> {booking}
func (s *Server) CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	rawDate, err := reqString(in, "date")
	if err != nil {
		return nil, err
	}
	date, err := parseDate(rawDate, s.policy.Zone())
	if err != nil {
		return nil, err
	}
	rawStart, err := reqString(in, "startTime")
	if err != nil {
		return nil, err
	}
	start, err := parseClock(rawStart)
	if err != nil {
		return nil, err
	}
	hours, err := reqInt(in, "durationHours")
	if err != nil {
		return nil, err
	}
	customer, _, err := optString(in, "customer")
	if err != nil {
		return nil, err
	}
	ids, err := optIDs(in, "cleanerIds")
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.Create(ctx, service.CreateBookingInput{
		Date:          date,
		StartClock:    start,
		DurationHours: hours,
		Customer:      customer,
		CleanerIDs:    ids,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return newStruct(map[string]any{"booking": bookingFields(b, s.policy.Zone())})
}

// UpdateBooking: {id, newDate?, newStartTime?, newDurationHours?, newCustomer?, newCleanerIds?} -> {booking}
func (s *Server) UpdateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseID(in)
	if err != nil {
		return nil, err
	}

	var upd service.UpdateBookingInput
	if raw, ok, err := optString(in, "newDate"); err != nil {
		return nil, err
	} else if ok {
		date, err := parseDate(raw, s.policy.Zone())
		if err != nil {
			return nil, err
		}
		upd.Date = &date
	}
	if raw, ok, err := optString(in, "newStartTime"); err != nil {
		return nil, err
	} else if ok {
		start, err := parseClock(raw)
		if err != nil {
			return nil, err
		}
		upd.StartClock = &start
	}
	if hours, ok, err := optInt(in, "newDurationHours"); err != nil {
		return nil, err
	} else if ok {
		upd.DurationHours = &hours
	}
	if customer, ok, err := optString(in, "newCustomer"); err != nil {
		return nil, err
	} else if ok {
		upd.Customer = &customer
	}
	if upd.CleanerIDs, err = optIDs(in, "newCleanerIds"); err != nil {
		return nil, err
	}

	b, err := s.bookings.Update(ctx, id, upd)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return newStruct(map[string]any{"booking": bookingFields(b, s.policy.Zone())})
}

// GetBooking: {id} -> {booking}
func (s *Server) GetBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseID(in)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return newStruct(map[string]any{"booking": bookingFields(b, s.policy.Zone())})
}

// DeleteBooking: {id} -> {}
func (s *Server) DeleteBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseID(in)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return nil, s.toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// toStatus maps core errors to gRPC codes. Conflicts with existing bookings are
// FailedPrecondition; every other rejection is InvalidArgument.
func (s *Server) toStatus(err error) error {
	switch {
	case errors.Is(err, calendar.ErrBookingNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, calendar.ErrCleanerUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case calendar.IsRejection(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, utils.ErrInvalidTimeRange):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error("rpc failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
