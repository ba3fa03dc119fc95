package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(store *fakeStore) *Validator {
	return NewValidator(store, store, DefaultPolicy())
}

func request(date time.Time, hour, min, hours int, cleanerIDs ...int64) AdmissionRequest {
	return AdmissionRequest{
		Date:          date,
		StartClock:    time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute,
		DurationHours: hours,
		CleanerIDs:    cleanerIDs,
	}
}

func TestValidate_TwoCleanersSameVehicle(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}

	adm, err := newValidator(store).ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 2, 101, 102))
	require.NoError(t, err)

	assert.Equal(t, int64(10), adm.Vehicle.ID)
	assert.Equal(t, []int64{101, 102}, adm.CleanerIDs())
	assert.True(t, adm.Window.Start.Equal(at(10, 0)))
	assert.True(t, adm.Window.End.Equal(at(12, 0)))
}

func TestValidate_FridayRejectedRegardlessOfOtherFields(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}

	for _, req := range []AdmissionRequest{
		request(friday(), 10, 0, 2, 101),
		request(friday(), 6, 0, 3),
		request(friday(), 23, 0, 7, 999, 201),
	} {
		_, err := newValidator(store).ValidateAndResolve(context.Background(), req)
		assert.ErrorIs(t, err, ErrBlackoutDay)
	}
}

func TestValidate_OperatingHours(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	v := newValidator(store)

	cases := []AdmissionRequest{
		request(thursday(), 7, 30, 2, 101),
		request(thursday(), 20, 30, 2, 101),
		request(thursday(), 21, 0, 4, 101),
		request(thursday(), 23, 0, 2, 101), // crosses midnight
	}
	for _, req := range cases {
		_, err := v.ValidateAndResolve(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideOperatingHours, "start %v", req.StartClock)
	}

	_, err := v.ValidateAndResolve(context.Background(), request(thursday(), 18, 0, 4, 101))
	assert.NoError(t, err, "18:00 + 4h ends exactly at closing")
}

func TestValidate_Duration(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	v := newValidator(store)

	_, err := v.ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 3, 101))
	assert.ErrorIs(t, err, ErrInvalidDuration)

	for _, hours := range []int{2, 4} {
		_, err := v.ValidateAndResolve(context.Background(), request(thursday(), 10, 0, hours, 101))
		assert.NoError(t, err, "duration %d", hours)
	}
}

func TestValidate_CleanerCount(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	v := newValidator(store)

	_, err := v.ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 2))
	assert.ErrorIs(t, err, ErrInvalidCleanerCount)

	_, err = v.ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 2, 101, 102, 103, 104))
	assert.ErrorIs(t, err, ErrInvalidCleanerCount)

	// Duplicates collapse to one cleaner.
	adm, err := v.ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 2, 101, 101, 101, 101))
	require.NoError(t, err)
	assert.Equal(t, []int64{101}, adm.CleanerIDs())
}

func TestValidate_UnknownCleaner(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}

	_, err := newValidator(store).ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 2, 101, 999))
	require.ErrorIs(t, err, ErrCleanerNotFound)

	var rej *Error
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, []int64{999}, rej.Missing)
}

func TestValidate_VehicleMismatchBeforeAvailability(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	store.add(at(10, 0), 2, 101) // 101 would also be unavailable

	_, err := newValidator(store).ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 2, 101, 201))
	assert.ErrorIs(t, err, ErrVehicleMismatch)
	assert.Empty(t, store.overlapCalls)
}

func TestValidate_BreakBeforeNewBooking(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	store.add(at(10, 0), 2, 101)
	v := newValidator(store)

	_, err := v.ValidateAndResolve(context.Background(), request(thursday(), 12, 0, 2, 101))
	require.ErrorIs(t, err, ErrCleanerUnavailable)
	var rej *Error
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, int64(101), rej.CleanerID)

	last := store.overlapCalls[len(store.overlapCalls)-1]
	assert.True(t, last.start.Equal(at(11, 30)), "probe starts one break earlier")
	assert.True(t, last.end.Equal(at(14, 0)))

	_, err = v.ValidateAndResolve(context.Background(), request(thursday(), 12, 30, 2, 101))
	assert.NoError(t, err)
}

func TestValidate_DoubleBooking(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	store.add(at(10, 0), 4, 102)

	_, err := newValidator(store).ValidateAndResolve(context.Background(), request(thursday(), 11, 0, 2, 101, 102))
	var rej *Error
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, KindCleanerUnavailable, rej.Kind)
	assert.Equal(t, int64(102), rej.CleanerID)
}

func TestValidate_UpdateExcludesItself(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	existing := store.add(at(10, 0), 2, 101, 102)

	req := request(thursday(), 10, 0, 2, 101, 102)
	_, err := newValidator(store).ValidateAndResolve(context.Background(), req)
	assert.ErrorIs(t, err, ErrCleanerUnavailable, "without exclusion the booking conflicts with itself")

	req.ExcludeBookingID = &existing.ID
	_, err = newValidator(store).ValidateAndResolve(context.Background(), req)
	assert.NoError(t, err)
}

func TestValidate_StoreFailureIsNotARejection(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners(), failOverlap: true}

	_, err := newValidator(store).ValidateAndResolve(context.Background(), request(thursday(), 10, 0, 2, 101))
	require.Equal(t, errStoreDown, err)
	assert.False(t, IsRejection(err))
}

func TestValidate_BreakIsConfigurable(t *testing.T) {
	store := &fakeStore{cleaners: vehicleCleaners()}
	store.add(at(10, 0), 2, 101)
	p := DefaultPolicy()
	p.Break = 0

	_, err := NewValidator(store, store, p).ValidateAndResolve(context.Background(), request(thursday(), 12, 0, 2, 101))
	assert.NoError(t, err)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(cleanerUnavailableError(7))
	assert.True(t, ok)
	assert.Equal(t, KindCleanerUnavailable, kind)

	_, ok = KindOf(errors.New("boom"))
	assert.False(t, ok)

	assert.ErrorIs(t, cleanerNotFoundError([]int64{1}), ErrCleanerNotFound)
	assert.NotErrorIs(t, ErrBlackoutDay, ErrCleanerNotFound)
	assert.Equal(t, "cleaner 7 is busy or break too short", cleanerUnavailableError(7).Error())
}

func TestBookingHasCleaner(t *testing.T) {
	b := Booking{ID: uuid.New(), CleanerIDs: []int64{1, 2}}
	assert.True(t, b.HasCleaner(2))
	assert.False(t, b.HasCleaner(3))
}
