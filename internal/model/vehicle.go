package model

import "time"

// vehicles
type Vehicle struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Label string `gorm:"type:varchar(50);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Cleaners []Cleaner `gorm:"foreignKey:VehicleID"`
}

// cleaners; a cleaner always travels with one vehicle
type Cleaner struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"type:varchar(50);not null"`
	VehicleID int64  `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
