package model

import "gorm.io/gorm"

// AutoMigrate creates or updates every table of the scheduling store.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Vehicle{},
		&Cleaner{},
		&Booking{},
		&BookingCleaner{},
		&Event{},
	)
}
