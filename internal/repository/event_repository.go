package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
)

type EventRepository interface {
	// Create appends an audit event.
	Create(ctx context.Context, event *model.Event) error
	// ListByBooking returns the trail of one booking, oldest first.
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormEventRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&events).
		Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
