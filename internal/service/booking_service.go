package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tsriharsha402/cleaning-booking-system/internal/cache"
	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/events"
	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
	"github.com/tsriharsha402/cleaning-booking-system/internal/repository"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

type CreateBookingInput struct {
	Date          time.Time
	StartClock    time.Duration
	DurationHours int
	Customer      string
	CleanerIDs    []int64
}

// UpdateBookingInput replaces only the fields that are set; nil keeps the
// stored value.
type UpdateBookingInput struct {
	Date          *time.Time
	StartClock    *time.Duration
	DurationHours *int
	Customer      *string
	CleanerIDs    []int64
}

type BookingService struct {
	db        *gorm.DB
	policy    calendar.Policy
	cache     cache.AvailabilityCache
	publisher events.Publisher
	logger    *zap.Logger
}

func NewBookingService(
	db *gorm.DB,
	policy calendar.Policy,
	availabilityCache cache.AvailabilityCache,
	publisher events.Publisher,
	logger *zap.Logger,
) *BookingService {
	if availabilityCache == nil {
		availabilityCache = cache.Nop{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &BookingService{
		db:        db,
		policy:    policy,
		cache:     availabilityCache,
		publisher: publisher,
		logger:    logger.Named("booking"),
	}
}

// txRepos binds every repository the booking flow needs to one transaction.
type txRepos struct {
	bookings repository.BookingRepository
	events   repository.EventRepository
	calendar *repository.CalendarStore
}

func (s *BookingService) repos(tx *gorm.DB) txRepos {
	bookings := repository.NewGormBookingRepository(tx)
	return txRepos{
		bookings: bookings,
		events:   repository.NewGormEventRepository(tx),
		calendar: repository.NewCalendarStore(bookings, repository.NewGormCleanerRepository(tx), s.policy.Zone()),
	}
}

func (s *BookingService) validator(r txRepos) *calendar.Validator {
	return calendar.NewValidator(r.calendar, r.calendar, s.policy)
}

// Create admits and stores a new booking. Validation and the insert share one
// transaction so a concurrent writer cannot slip in between.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*calendar.Booking, error) {
	var created calendar.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos(tx)

		adm, err := s.validator(r).ValidateAndResolve(ctx, calendar.AdmissionRequest{
			Date:          in.Date,
			StartClock:    in.StartClock,
			DurationHours: in.DurationHours,
			CleanerIDs:    in.CleanerIDs,
		})
		if err != nil {
			return err
		}

		row := &model.Booking{
			StartsAt:      adm.Window.Start,
			EndsAt:        adm.Window.End,
			DurationHours: in.DurationHours,
			Customer:      in.Customer,
			VehicleID:     adm.Vehicle.ID,
		}
		if err := r.bookings.Create(ctx, row, adm.CleanerIDs()); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		created = s.fromAdmission(row, adm)
		return s.audit(ctx, r, model.EventTypeBookingCreated, row.ID, map[string]any{"booking": events.Snapshot(created)})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", created.ID.String()),
		zap.Time("start", created.Start),
		zap.Int64s("cleaners", created.CleanerIDs),
	)
	s.afterCommit(ctx, events.BookingCreated, created.ID, events.Snapshot(created), created.Start)
	return &created, nil
}

// Update re-admits a booking with its omitted fields taken from the stored
// version. The booking never conflicts with itself.
func (s *BookingService) Update(ctx context.Context, id uuid.UUID, in UpdateBookingInput) (*calendar.Booking, error) {
	var before, after calendar.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos(tx)

		row, err := r.bookings.GetByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		before = repository.ToCalendarBooking(row, s.policy.Zone())

		req := calendar.AdmissionRequest{
			Date:             utils.DateOnly(before.Start),
			StartClock:       utils.ClockOf(before.Start),
			DurationHours:    before.DurationHours,
			CleanerIDs:       before.CleanerIDs,
			ExcludeBookingID: &id,
		}
		if in.Date != nil {
			req.Date = *in.Date
		}
		if in.StartClock != nil {
			req.StartClock = *in.StartClock
		}
		if in.DurationHours != nil {
			req.DurationHours = *in.DurationHours
		}
		if in.CleanerIDs != nil {
			req.CleanerIDs = in.CleanerIDs
		}

		adm, err := s.validator(r).ValidateAndResolve(ctx, req)
		if err != nil {
			return err
		}

		row.StartsAt = adm.Window.Start
		row.EndsAt = adm.Window.End
		row.DurationHours = req.DurationHours
		row.VehicleID = adm.Vehicle.ID
		if in.Customer != nil {
			row.Customer = *in.Customer
		}
		if err := r.bookings.Update(ctx, row, adm.CleanerIDs()); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		after = s.fromAdmission(row, adm)
		return s.audit(ctx, r, model.EventTypeBookingUpdated, id, map[string]any{
			"before": events.Snapshot(before),
			"after":  events.Snapshot(after),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking updated",
		zap.String("booking_id", id.String()),
		zap.Time("start", after.Start),
		zap.Int64s("cleaners", after.CleanerIDs),
	)
	s.afterCommit(ctx, events.BookingUpdated, id, events.Snapshot(after), before.Start, after.Start)
	return &after, nil
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*calendar.Booking, error) {
	row, err := repository.NewGormBookingRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	b := repository.ToCalendarBooking(row, s.policy.Zone())
	return &b, nil
}

// Delete removes the booking record; nothing else is cascaded.
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted calendar.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := s.repos(tx)

		row, err := r.bookings.GetByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		deleted = repository.ToCalendarBooking(row, s.policy.Zone())

		if err := r.bookings.Delete(ctx, id); err != nil {
			return notFound(err)
		}
		return s.audit(ctx, r, model.EventTypeBookingDeleted, id, map[string]any{"booking": events.Snapshot(deleted)})
	})
	if err != nil {
		return err
	}

	s.logger.Info("booking deleted", zap.String("booking_id", id.String()))
	s.afterCommit(ctx, events.BookingDeleted, id, nil, deleted.Start)
	return nil
}

// History returns the audit trail of a booking, oldest first. It outlives the
// booking itself.
func (s *BookingService) History(ctx context.Context, id uuid.UUID) ([]model.Event, error) {
	trail, err := repository.NewGormEventRepository(s.db).ListByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if len(trail) == 0 {
		return nil, calendar.ErrBookingNotFound
	}
	return trail, nil
}

func (s *BookingService) fromAdmission(row *model.Booking, adm *calendar.Admission) calendar.Booking {
	return calendar.Booking{
		ID:            row.ID,
		Start:         adm.Window.Start,
		End:           adm.Window.End,
		DurationHours: row.DurationHours,
		Customer:      row.Customer,
		VehicleID:     adm.Vehicle.ID,
		CleanerIDs:    adm.CleanerIDs(),
	}
}

func (s *BookingService) audit(ctx context.Context, r txRepos, t model.EventType, bookingID uuid.UUID, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}
	id := bookingID
	if err := r.events.Create(ctx, &model.Event{EventType: t, BookingID: &id, Details: datatypes.JSON(raw)}); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	return nil
}

// afterCommit drops cached availability for every touched date and announces
// the change. Failures here cannot undo the commit, so they are only logged.
func (s *BookingService) afterCommit(
	ctx context.Context,
	t events.Type,
	id uuid.UUID,
	snapshot *events.BookingSnapshot,
	starts ...time.Time,
) {
	dates := make([]time.Time, 0, len(starts))
	for _, start := range starts {
		dates = append(dates, s.policy.Day(start.In(s.policy.Zone())))
	}
	if err := s.cache.Invalidate(ctx, dates...); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, events.NewBookingEvent(t, id, snapshot)); err != nil {
		s.logger.Warn("booking event publish failed",
			zap.String("type", string(t)),
			zap.String("booking_id", id.String()),
			zap.Error(err),
		)
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return calendar.ErrBookingNotFound
	}
	return err
}
