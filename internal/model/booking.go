package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// bookings
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// UTC instants; [StartsAt, EndsAt)
	StartsAt      time.Time `gorm:"not null;index"`
	EndsAt        time.Time `gorm:"not null;index"`
	DurationHours int       `gorm:"not null"`
	Customer      string    `gorm:"type:varchar(255)"`
	VehicleID     int64     `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Vehicle  *Vehicle  `gorm:"foreignKey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Cleaners []Cleaner `gorm:"many2many:booking_cleaners;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// CleanerIDs in the order they were loaded.
func (b *Booking) CleanerIDs() []int64 {
	ids := make([]int64, 0, len(b.Cleaners))
	for _, c := range b.Cleaners {
		ids = append(ids, c.ID)
	}
	return ids
}

// booking_cleaners is written explicitly by the repository so that a booking and
// its assignments always change in the same statement batch.
type BookingCleaner struct {
	BookingID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CleanerID int64     `gorm:"primaryKey;index"`
}
