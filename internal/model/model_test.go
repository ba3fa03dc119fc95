package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/tsriharsha402/cleaning-booking-system/internal/config"
	"github.com/tsriharsha402/cleaning-booking-system/internal/db"
	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
)

func TestSeedIsIdempotent(t *testing.T) {
	gdb, err := db.NewGormDB(&config.DBConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))

	require.NoError(t, model.Seed(gdb))
	require.NoError(t, model.Seed(gdb))

	var vehicles, cleaners int64
	require.NoError(t, gdb.Model(&model.Vehicle{}).Count(&vehicles).Error)
	require.NoError(t, gdb.Model(&model.Cleaner{}).Count(&cleaners).Error)
	assert.Equal(t, int64(model.SeedVehicles), vehicles)
	assert.Equal(t, int64(model.SeedVehicles*model.SeedCleanersPerVehicle), cleaners)

	var c model.Cleaner
	require.NoError(t, gdb.Preload("Vehicle").First(&c, 125).Error)
	assert.Equal(t, int64(14), c.VehicleID)
	assert.Equal(t, "Vehicle 14", c.Vehicle.Label)
}

func TestEventGetsID(t *testing.T) {
	gdb, err := db.NewGormDB(&config.DBConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))

	ev := model.Event{EventType: model.EventTypeBookingDeleted, Details: datatypes.JSON(`{"reason":"test"}`)}
	require.NoError(t, gdb.Create(&ev).Error)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", ev.ID.String())

	var got model.Event
	require.NoError(t, gdb.First(&got, "id = ?", ev.ID).Error)
	assert.JSONEq(t, `{"reason":"test"}`, string(got.Details))
}
