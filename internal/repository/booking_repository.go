package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
)

type BookingRepository interface {
	// Create a booking and its cleaner assignments.
	Create(ctx context.Context, booking *model.Booking, cleanerIDs []int64) error
	// GetByID loads a booking with its cleaners; gorm.ErrRecordNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Update the window, duration, customer and vehicle and replace the cleaner set.
	Update(ctx context.Context, booking *model.Booking, cleanerIDs []int64) error
	// Delete a booking and its assignments; gorm.ErrRecordNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
	// FindStartingBetween returns bookings with from <= start <= to.
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	// HasOverlap reports whether cleanerID holds a booking intersecting [start, end).
	HasOverlap(ctx context.Context, cleanerID int64, start, end time.Time, exclude *uuid.UUID) (bool, error)
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func preloadCleaners(db *gorm.DB) *gorm.DB {
	return db.Preload("Cleaners", func(db *gorm.DB) *gorm.DB {
		return db.Order("cleaners.id ASC")
	})
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking, cleanerIDs []int64) error {
	booking.StartsAt = booking.StartsAt.UTC()
	booking.EndsAt = booking.EndsAt.UTC()

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(booking).Error; err != nil {
		return err
	}
	return insertAssignments(db, booking.ID, cleanerIDs)
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := preloadCleaners(r.db.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) Update(ctx context.Context, booking *model.Booking, cleanerIDs []int64) error {
	booking.StartsAt = booking.StartsAt.UTC()
	booking.EndsAt = booking.EndsAt.UTC()

	db := r.db.WithContext(ctx)
	res := db.Model(&model.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"starts_at":      booking.StartsAt,
			"ends_at":        booking.EndsAt,
			"duration_hours": booking.DurationHours,
			"customer":       booking.Customer,
			"vehicle_id":     booking.VehicleID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := db.Delete(&model.BookingCleaner{}, "booking_id = ?", booking.ID).Error; err != nil {
		return err
	}
	return insertAssignments(db, booking.ID, cleanerIDs)
}

func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	res := db.Delete(&model.Booking{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.Delete(&model.BookingCleaner{}, "booking_id = ?", id).Error
}

func (r *GormBookingRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := preloadCleaners(r.db.WithContext(ctx)).
		Where("starts_at >= ? AND starts_at <= ?", from.UTC(), to.UTC()).
		Order("starts_at ASC").
		Find(&bookings).
		Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) HasOverlap(
	ctx context.Context,
	cleanerID int64,
	start, end time.Time,
	exclude *uuid.UUID,
) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Joins("JOIN booking_cleaners ON booking_cleaners.booking_id = bookings.id").
		Where("booking_cleaners.cleaner_id = ?", cleanerID).
		Where("bookings.starts_at < ? AND bookings.ends_at > ?", end.UTC(), start.UTC())

	if exclude != nil {
		q = q.Where("bookings.id <> ?", *exclude)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func insertAssignments(db *gorm.DB, bookingID uuid.UUID, cleanerIDs []int64) error {
	if len(cleanerIDs) == 0 {
		return nil
	}
	rows := make([]model.BookingCleaner, 0, len(cleanerIDs))
	for _, id := range cleanerIDs {
		rows = append(rows, model.BookingCleaner{BookingID: bookingID, CleanerID: id})
	}
	return db.Create(&rows).Error
}
