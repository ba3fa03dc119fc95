package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tsriharsha402/cleaning-booking-system/internal/cache"
	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/config"
	"github.com/tsriharsha402/cleaning-booking-system/internal/db"
	"github.com/tsriharsha402/cleaning-booking-system/internal/events"
	"github.com/tsriharsha402/cleaning-booking-system/internal/logging"
	"github.com/tsriharsha402/cleaning-booking-system/internal/repository"
	"github.com/tsriharsha402/cleaning-booking-system/internal/service"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	policy calendar.Policy

	redis     *redis.Client
	cache     cache.AvailabilityCache
	publisher events.Publisher

	bookings     *service.BookingService
	availability *service.AvailabilityService
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	policy, err := cfg.Policy.Policy()
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	gormDB, err := db.NewGormDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		db:        gormDB,
		policy:    policy,
		cache:     cache.Nop{},
		publisher: events.Nop{},
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("availability cache disabled", zap.Error(err))
		} else {
			a.redis = client
			a.cache = cache.NewRedisCache(client, cfg.Redis.TTL)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		a.publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		logger.Info("booking events disabled (no kafka brokers configured)")
	}

	bookingRepo := repository.NewGormBookingRepository(gormDB)
	cleanerRepo := repository.NewGormCleanerRepository(gormDB)
	store := repository.NewCalendarStore(bookingRepo, cleanerRepo, policy.Zone())

	a.bookings = service.NewBookingService(gormDB, policy, a.cache, a.publisher, logger)
	a.availability = service.NewAvailabilityService(store, cleanerRepo, policy, a.cache, logger)

	return a, nil
}

func (a *app) ping(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *app) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("close publisher", zap.Error(err))
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
