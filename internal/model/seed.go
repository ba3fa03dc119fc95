package model

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SeedVehicles           = 5
	SeedCleanersPerVehicle = 5
	seedFirstVehicleID     = 10
	seedFirstCleanerID     = 101
)

var seedNames = []string{
	"Ahmed", "Fatima", "Omar", "Layla", "Yusuf",
	"Mariam", "Khalid", "Noor", "Hassan", "Sara",
	"Ali", "Huda", "Karim", "Amina", "Tariq",
	"Rania", "Samir", "Dina", "Faisal", "Lina",
	"Nabil", "Reem", "Zaid", "Hala", "Bilal",
}

// Seed inserts the reference fleet: vehicles 10..14 with five cleaners each
// (ids 101..125). Existing rows are left untouched, so it is safe to rerun.
func Seed(db *gorm.DB) error {
	vehicles := make([]Vehicle, 0, SeedVehicles)
	cleaners := make([]Cleaner, 0, SeedVehicles*SeedCleanersPerVehicle)

	for v := 0; v < SeedVehicles; v++ {
		vehicleID := int64(seedFirstVehicleID + v)
		vehicles = append(vehicles, Vehicle{ID: vehicleID, Label: fmt.Sprintf("Vehicle %d", vehicleID)})

		for c := 0; c < SeedCleanersPerVehicle; c++ {
			n := v*SeedCleanersPerVehicle + c
			cleaners = append(cleaners, Cleaner{
				ID:        int64(seedFirstCleanerID + n),
				Name:      seedNames[n%len(seedNames)],
				VehicleID: vehicleID,
			})
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vehicles).Error; err != nil {
			return fmt.Errorf("seed vehicles: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Vehicle").Create(&cleaners).Error; err != nil {
			return fmt.Errorf("seed cleaners: %w", err)
		}
		return nil
	})
}
