package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit event type.
type EventType string

const (
	EventTypeBookingCreated EventType = "booking_created"
	EventTypeBookingUpdated EventType = "booking_updated"
	EventTypeBookingDeleted EventType = "booking_deleted"
)

// events is an append-only audit log. BookingID has no foreign key so the trail
// survives booking deletion.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	BookingID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSON
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
