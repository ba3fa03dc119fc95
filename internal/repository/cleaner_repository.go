package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
)

type CleanerRepository interface {
	// List every cleaner with its vehicle, ordered by id.
	List(ctx context.Context) ([]model.Cleaner, error)
	// ListByIDs returns the cleaners that exist among ids; unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []int64) ([]model.Cleaner, error)
	// ListAvailable returns cleaners with no booking intersecting [start, end).
	ListAvailable(ctx context.Context, start, end time.Time) ([]model.Cleaner, error)
}

type GormCleanerRepository struct {
	db *gorm.DB
}

func NewGormCleanerRepository(db *gorm.DB) *GormCleanerRepository {
	return &GormCleanerRepository{db: db}
}

func (r *GormCleanerRepository) List(ctx context.Context) ([]model.Cleaner, error) {
	var cleaners []model.Cleaner
	if err := r.db.WithContext(ctx).Preload("Vehicle").Order("id ASC").Find(&cleaners).Error; err != nil {
		return nil, err
	}
	return cleaners, nil
}

func (r *GormCleanerRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Cleaner, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cleaners []model.Cleaner
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&cleaners).
		Error
	if err != nil {
		return nil, err
	}
	return cleaners, nil
}

func (r *GormCleanerRepository) ListAvailable(ctx context.Context, start, end time.Time) ([]model.Cleaner, error) {
	var cleaners []model.Cleaner
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Where(`NOT EXISTS (
			SELECT 1 FROM booking_cleaners
			JOIN bookings ON bookings.id = booking_cleaners.booking_id
			WHERE booking_cleaners.cleaner_id = cleaners.id
			  AND bookings.starts_at < ?
			  AND bookings.ends_at > ?
		)`, end.UTC(), start.UTC()).
		Order("id ASC").
		Find(&cleaners).
		Error
	if err != nil {
		return nil, err
	}
	return cleaners, nil
}
