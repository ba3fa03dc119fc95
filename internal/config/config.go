package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tsriharsha402/cleaning-booking-system/internal/calendar"
	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

type Config struct {
	Env    string
	DB     *DBConfig
	Server ServerConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Log    LogConfig
	Policy PolicyConfig
}

type ServerConfig struct {
	HTTPAddr          string
	GRPCAddr          string
	ShutdownTimeout   time.Duration
	MaxRequestsPerMin int
}

type RedisConfig struct {
	Addr     string // empty disables the cache
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers []string // empty disables publishing
	Topic   string
}

type LogConfig struct {
	Level string
}

// PolicyConfig is the raw form of calendar.Policy as it appears in the environment.
type PolicyConfig struct {
	DayStart         string
	DayEnd           string
	BreakMinutes     int
	AllowedDurations string
	MaxCleaners      int
	BlackoutDays     string
	TimeZone         string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	return v
}

// Load reads .env (if any), config.yaml (if any) and the environment, in
// increasing priority.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := newViper()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	setDBDefaults(v)

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 120)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "booking-events")

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DAY_START", "08:00")
	v.SetDefault("DAY_END", "22:00")
	v.SetDefault("BREAK_MINUTES", 30)
	v.SetDefault("ALLOWED_DURATIONS", "2,4")
	v.SetDefault("MAX_CLEANERS", 3)
	v.SetDefault("BLACKOUT_DAYS", "friday")
	v.SetDefault("TIME_ZONE", "UTC")
}

func fromViper(v *viper.Viper) (*Config, error) {
	dbCfg, err := loadDBConfig(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		DB:  dbCfg,
		Server: ServerConfig{
			HTTPAddr:          v.GetString("HTTP_ADDR"),
			GRPCAddr:          v.GetString("GRPC_ADDR"),
			ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
			MaxRequestsPerMin: v.GetInt("MAX_REQUESTS_PER_MIN"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("CACHE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Log: LogConfig{Level: v.GetString("LOG_LEVEL")},
		Policy: PolicyConfig{
			DayStart:         v.GetString("DAY_START"),
			DayEnd:           v.GetString("DAY_END"),
			BreakMinutes:     v.GetInt("BREAK_MINUTES"),
			AllowedDurations: v.GetString("ALLOWED_DURATIONS"),
			MaxCleaners:      v.GetInt("MAX_CLEANERS"),
			BlackoutDays:     v.GetString("BLACKOUT_DAYS"),
			TimeZone:         v.GetString("TIME_ZONE"),
		},
	}

	if _, err := cfg.Policy.Policy(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy converts the raw values into a calendar.Policy.
func (pc PolicyConfig) Policy() (calendar.Policy, error) {
	p := calendar.DefaultPolicy()

	start, err := utils.ParseClock(pc.DayStart)
	if err != nil {
		return p, fmt.Errorf("DAY_START: %w", err)
	}
	end, err := utils.ParseClock(pc.DayEnd)
	if err != nil {
		return p, fmt.Errorf("DAY_END: %w", err)
	}
	if end <= start {
		return p, fmt.Errorf("DAY_END must be after DAY_START")
	}
	if pc.BreakMinutes < 0 {
		return p, fmt.Errorf("BREAK_MINUTES must not be negative")
	}
	if pc.MaxCleaners < p.MinCleaners {
		return p, fmt.Errorf("MAX_CLEANERS must be at least %d", p.MinCleaners)
	}

	durations, err := parseDurations(pc.AllowedDurations)
	if err != nil {
		return p, fmt.Errorf("ALLOWED_DURATIONS: %w", err)
	}
	blackout, err := parseWeekdays(pc.BlackoutDays)
	if err != nil {
		return p, fmt.Errorf("BLACKOUT_DAYS: %w", err)
	}
	loc, err := time.LoadLocation(pc.TimeZone)
	if err != nil {
		return p, fmt.Errorf("TIME_ZONE: %w", err)
	}

	p.DayStart = start
	p.DayEnd = end
	p.Break = time.Duration(pc.BreakMinutes) * time.Minute
	p.AllowedDurations = durations
	p.MaxCleaners = pc.MaxCleaners
	p.BlackoutDays = blackout
	p.Location = loc
	return p, nil
}

func parseDurations(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("at least one duration is required")
	}
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		h, err := strconv.Atoi(part)
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("invalid duration %q", part)
		}
		out = append(out, h)
	}
	return out, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, part := range splitList(s) {
		d, ok := weekdays[strings.ToLower(part)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
