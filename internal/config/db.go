package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Driver          string // postgres | sqlite
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // minutes
}

func setDBDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "postgres")
	v.SetDefault("DB_USER", "cleaning")
	v.SetDefault("DB_PASSWORD", "cleaning")
	v.SetDefault("DB_NAME", "cleaning_db")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_SQLITE_PATH", "cleaning.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MIN", 30)
}

func loadDBConfig(v *viper.Viper) (*DBConfig, error) {
	cfg := &DBConfig{
		Driver:          v.GetString("DB_DRIVER"),
		Host:            v.GetString("DB_HOST"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSLMODE"),
		TimeZone:        v.GetString("DB_TIMEZONE"),
		SQLitePath:      v.GetString("DB_SQLITE_PATH"),
		Port:            v.GetInt("DB_PORT"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifeTime: v.GetInt("DB_CONN_MAX_LIFETIME_MIN"),
	}

	switch cfg.Driver {
	case "postgres":
		if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
			return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("invalid DB config: DB_SQLITE_PATH must not be empty")
		}
	default:
		return nil, fmt.Errorf("invalid DB config: unknown driver %q", cfg.Driver)
	}

	return cfg, nil
}

// LoadDBConfig reads only the database section, for commands that need nothing else.
func LoadDBConfig() (*DBConfig, error) {
	v := newViper()
	setDBDefaults(v)
	return loadDBConfig(v)
}
