package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tsriharsha402/cleaning-booking-system/internal/cache"
	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/config"
	"github.com/tsriharsha402/cleaning-booking-system/internal/db"
	"github.com/tsriharsha402/cleaning-booking-system/internal/events"
	"github.com/tsriharsha402/cleaning-booking-system/internal/model"
	"github.com/tsriharsha402/cleaning-booking-system/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.NewGormDB(&config.DBConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := model.Seed(gdb); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return gdb
}

// memoryCache is an in-process AvailabilityCache that records invalidations.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]cache.DailySlots
	generations map[string]int64
	invalidated []string
	gets        int

	// beforeSet runs outside the lock at the start of Set.
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]cache.DailySlots{}, generations: map[string]int64{}}
}

func entryKey(date time.Time, hours int) string {
	return fmt.Sprintf("%s/%d", cache.Key(date), hours)
}

func (c *memoryCache) Get(_ context.Context, date time.Time, hours int) (cache.DailySlots, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[entryKey(date, hours)]
	return v, ok, nil
}

func (c *memoryCache) Generation(_ context.Context, date time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[cache.Key(date)], nil
}

func (c *memoryCache) Set(_ context.Context, date time.Time, hours int, slots cache.DailySlots, gen int64) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[cache.Key(date)] != gen {
		return cache.ErrStale
	}
	c.entries[entryKey(date, hours)] = slots
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, dates ...time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		c.invalidated = append(c.invalidated, cache.Key(d))
		c.generations[cache.Key(d)]++
		for k := range c.entries {
			if len(k) > len(cache.Key(d)) && k[:len(cache.Key(d))] == cache.Key(d) {
				delete(c.entries, k)
			}
		}
	}
	return nil
}

type recordingPublisher struct {
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.BookingEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	db           *gorm.DB
	bookings     *BookingService
	availability *AvailabilityService
	cache        *memoryCache
	publisher    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := newTestDB(t)
	policy := calendar.DefaultPolicy()
	mc := newMemoryCache()
	pub := &recordingPublisher{}
	logger := zap.NewNop()

	bookingRepo := repository.NewGormBookingRepository(gdb)
	cleanerRepo := repository.NewGormCleanerRepository(gdb)
	store := repository.NewCalendarStore(bookingRepo, cleanerRepo, policy.Zone())

	return &fixture{
		db:           gdb,
		bookings:     NewBookingService(gdb, policy, mc, pub, logger),
		availability: NewAvailabilityService(store, cleanerRepo, policy, mc, logger),
		cache:        mc,
		publisher:    pub,
	}
}

func thursday() time.Time {
	return time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
}

func at(hour, min int) time.Time {
	return time.Date(2025, 7, 10, hour, min, 0, 0, time.UTC)
}

func clock(hour, min int) time.Duration {
	return time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute
}

func mustCreate(t *testing.T, f *fixture, hour, min, hours int, cleanerIDs ...int64) *calendar.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), CreateBookingInput{
		Date:          thursday(),
		StartClock:    clock(hour, min),
		DurationHours: hours,
		Customer:      "Jane",
		CleanerIDs:    cleanerIDs,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func expectKind(t *testing.T, err error, want calendar.Kind) {
	t.Helper()
	got, ok := calendar.KindOf(err)
	if !ok || got != want {
		t.Fatalf("expected %s rejection, got %v", want, err)
	}
}

func TestBookingService_CreateStoresAuditsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := mustCreate(t, f, 10, 0, 2, 101, 102)
	if b.VehicleID != 10 {
		t.Fatalf("expected vehicle 10, got %d", b.VehicleID)
	}
	if !b.Start.Equal(at(10, 0)) || !b.End.Equal(at(12, 0)) {
		t.Fatalf("unexpected window %v-%v", b.Start, b.End)
	}

	got, err := f.bookings.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if len(got.CleanerIDs) != 2 || got.CleanerIDs[0] != 101 || got.CleanerIDs[1] != 102 {
		t.Fatalf("unexpected cleaners %v", got.CleanerIDs)
	}
	if got.Customer != "Jane" {
		t.Fatalf("unexpected customer %q", got.Customer)
	}

	trail, err := f.bookings.History(ctx, b.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(trail) != 1 || trail[0].EventType != model.EventTypeBookingCreated {
		t.Fatalf("unexpected audit trail %+v", trail)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != events.BookingCreated {
		t.Fatalf("unexpected published events %+v", f.publisher.events)
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != "availability:2025-07-10" {
		t.Fatalf("unexpected invalidations %v", f.cache.invalidated)
	}
}

func TestBookingService_BreakRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mustCreate(t, f, 10, 0, 2, 101)

	_, err := f.bookings.Create(ctx, CreateBookingInput{
		Date: thursday(), StartClock: clock(12, 0), DurationHours: 2, CleanerIDs: []int64{101},
	})
	expectKind(t, err, calendar.KindCleanerUnavailable)
	var rej *calendar.Error
	if !errors.As(err, &rej) || rej.CleanerID != 101 {
		t.Fatalf("expected cleaner 101 in rejection, got %v", err)
	}

	mustCreate(t, f, 12, 30, 2, 101)
}

func TestBookingService_RejectionsLeaveNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateBookingInput
		want calendar.Kind
	}{
		{"friday", CreateBookingInput{Date: thursday().AddDate(0, 0, 1), StartClock: clock(10, 0), DurationHours: 2, CleanerIDs: []int64{101}}, calendar.KindBlackoutDay},
		{"early", CreateBookingInput{Date: thursday(), StartClock: clock(7, 0), DurationHours: 2, CleanerIDs: []int64{101}}, calendar.KindOutsideOperatingHours},
		{"duration", CreateBookingInput{Date: thursday(), StartClock: clock(10, 0), DurationHours: 3, CleanerIDs: []int64{101}}, calendar.KindInvalidDuration},
		{"no cleaners", CreateBookingInput{Date: thursday(), StartClock: clock(10, 0), DurationHours: 2}, calendar.KindInvalidCleanerCount},
		{"unknown", CreateBookingInput{Date: thursday(), StartClock: clock(10, 0), DurationHours: 2, CleanerIDs: []int64{999}}, calendar.KindCleanerNotFound},
		{"two vehicles", CreateBookingInput{Date: thursday(), StartClock: clock(10, 0), DurationHours: 2, CleanerIDs: []int64{101, 106}}, calendar.KindVehicleMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.bookings.Create(ctx, tc.in)
			expectKind(t, err, tc.want)
		})
	}

	var n int64
	if err := f.db.Model(&model.Booking{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no bookings, got %d", n)
	}
	if len(f.publisher.events) != 0 {
		t.Fatalf("rejections must not publish, got %d events", len(f.publisher.events))
	}
}

func TestBookingService_UpdateKeepsOmittedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := mustCreate(t, f, 10, 0, 2, 101, 102)

	// Same window, same cleaners: must not collide with itself.
	four := 4
	updated, err := f.bookings.Update(ctx, b.ID, UpdateBookingInput{DurationHours: &four})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DurationHours != 4 || !updated.End.Equal(at(14, 0)) {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if len(updated.CleanerIDs) != 2 || updated.Customer != "Jane" {
		t.Fatalf("omitted fields changed: %+v", updated)
	}

	start := clock(15, 0)
	updated, err = f.bookings.Update(ctx, b.ID, UpdateBookingInput{StartClock: &start, CleanerIDs: []int64{103}})
	if err != nil {
		t.Fatalf("move booking: %v", err)
	}
	if !updated.Start.Equal(at(15, 0)) || updated.CleanerIDs[0] != 103 {
		t.Fatalf("unexpected move result %+v", updated)
	}

	// 101 is free again once the booking moved away.
	mustCreate(t, f, 10, 0, 2, 101)

	trail, err := f.bookings.History(ctx, b.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(trail) != 3 || trail[2].EventType != model.EventTypeBookingUpdated {
		t.Fatalf("unexpected audit trail length %d", len(trail))
	}
}

func TestBookingService_UpdateConflictWithOtherBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mustCreate(t, f, 14, 0, 2, 102)
	b := mustCreate(t, f, 10, 0, 2, 101)

	_, err := f.bookings.Update(ctx, b.ID, UpdateBookingInput{CleanerIDs: []int64{101, 102}, StartClock: durationPtr(clock(13, 0))})
	expectKind(t, err, calendar.KindCleanerUnavailable)

	got, err := f.bookings.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Start.Equal(at(10, 0)) || len(got.CleanerIDs) != 1 {
		t.Fatalf("rejected update must not change the booking: %+v", got)
	}
}

func TestBookingService_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := mustCreate(t, f, 10, 0, 2, 101).ID

	if err := f.bookings.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.bookings.Get(ctx, id); !errors.Is(err, calendar.ErrBookingNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	if _, err := f.bookings.Update(ctx, id, UpdateBookingInput{}); !errors.Is(err, calendar.ErrBookingNotFound) {
		t.Fatalf("update after delete: %v", err)
	}
	if err := f.bookings.Delete(ctx, id); !errors.Is(err, calendar.ErrBookingNotFound) {
		t.Fatalf("second delete: %v", err)
	}

	trail, err := f.bookings.History(ctx, id)
	if err != nil {
		t.Fatalf("history survives deletion: %v", err)
	}
	if trail[len(trail)-1].EventType != model.EventTypeBookingDeleted {
		t.Fatalf("last event %s", trail[len(trail)-1].EventType)
	}
}

func TestBookingService_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	b := mustCreate(t, f, 10, 0, 2, 101)
	if _, err := f.bookings.Get(context.Background(), b.ID); err != nil {
		t.Fatalf("booking must be stored: %v", err)
	}
}

func TestAvailabilityService_DailyCachesUntilBookingChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.availability.Daily(ctx, thursday(), 2)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(first) != 25 {
		t.Fatalf("expected all 25 cleaners, got %d", len(first))
	}
	if !first[101][0].Equal(at(8, 0)) {
		t.Fatalf("expected 08:00 first slot, got %v", first[101])
	}
	if _, ok := f.cache.entries[entryKey(thursday(), 2)]; !ok {
		t.Fatalf("result not cached")
	}

	mustCreate(t, f, 8, 0, 4, 101)
	if _, ok := f.cache.entries[entryKey(thursday(), 2)]; ok {
		t.Fatalf("booking must invalidate the date")
	}

	second, err := f.availability.Daily(ctx, thursday(), 2)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if !second[101][0].Equal(at(12, 30)) {
		t.Fatalf("expected 12:30 first slot after booking, got %v", second[101])
	}
}

func TestAvailabilityService_DailyDoesNotCacheResultOvertakenByBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a booking commits after Daily read the store but before it writes the cache
	f.cache.beforeSet = func() {
		f.cache.beforeSet = nil
		mustCreate(t, f, 8, 0, 4, 101)
	}

	stale, err := f.availability.Daily(ctx, thursday(), 2)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if !stale[101][0].Equal(at(8, 0)) {
		t.Fatalf("expected the pre-booking view, got %v", stale[101])
	}
	if _, ok := f.cache.entries[entryKey(thursday(), 2)]; ok {
		t.Fatalf("overtaken result must not be cached")
	}

	fresh, err := f.availability.Daily(ctx, thursday(), 2)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if !fresh[101][0].Equal(at(12, 30)) {
		t.Fatalf("expected 12:30 first slot after booking, got %v", fresh[101])
	}
	if _, ok := f.cache.entries[entryKey(thursday(), 2)]; !ok {
		t.Fatalf("fresh result should be cached")
	}
}

func TestAvailabilityService_Slot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mustCreate(t, f, 10, 0, 2, 101, 102)

	free, err := f.availability.Slot(ctx, thursday(), clock(11, 0), 2)
	if err != nil {
		t.Fatalf("slot: %v", err)
	}
	if len(free) != 23 || free[0] != 103 {
		t.Fatalf("unexpected free cleaners %v", free)
	}

	if _, err := f.availability.Slot(ctx, thursday(), clock(11, 0), 0); !errors.Is(err, calendar.ErrInvalidDuration) {
		t.Fatalf("expected invalid duration, got %v", err)
	}
	if _, err := f.availability.Daily(ctx, thursday(), -1); !errors.Is(err, calendar.ErrInvalidDuration) {
		t.Fatalf("expected invalid duration, got %v", err)
	}
}

func TestAvailabilityService_RejectsDurationsLongerThanTheDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mustCreate(t, f, 10, 0, 2, 101)

	for _, hours := range []int{15, 2562048} {
		if _, err := f.availability.Daily(ctx, thursday(), hours); !errors.Is(err, calendar.ErrInvalidDuration) {
			t.Fatalf("daily %dh: expected invalid duration, got %v", hours, err)
		}
		if _, err := f.availability.Slot(ctx, thursday(), clock(8, 0), hours); !errors.Is(err, calendar.ErrInvalidDuration) {
			t.Fatalf("slot %dh: expected invalid duration, got %v", hours, err)
		}
	}
	if f.cache.gets != 0 {
		t.Fatalf("rejected queries must not reach the cache, got %d reads", f.cache.gets)
	}
}

func TestAvailabilityService_FreeCleaners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mustCreate(t, f, 10, 0, 2, 101)

	free, err := f.availability.FreeCleaners(ctx, at(9, 0), at(11, 0))
	if err != nil {
		t.Fatalf("free cleaners: %v", err)
	}
	if len(free) != 24 || free[0].ID != 102 || free[0].Vehicle.Label != "Vehicle 10" {
		t.Fatalf("unexpected free cleaners %+v", free[:1])
	}

	if _, err := f.availability.FreeCleaners(ctx, at(11, 0), at(9, 0)); err == nil {
		t.Fatalf("expected inverted range to fail")
	}
}

func durationPtr(d time.Duration) *time.Duration { return &d }
