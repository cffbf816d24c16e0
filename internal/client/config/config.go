package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the authkeeper CLI.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration

	// SessionDuration is how long a session lives after login.
	SessionDuration time.Duration
	// SessionCheckInterval is the period of the expiry sweep.
	SessionCheckInterval time.Duration
	// ExpiryWarningWindow is how close to expiry the sweep starts warning.
	ExpiryWarningWindow time.Duration

	StoreDriver  string
	DataDir      string
	DatabaseFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://192.168.1.24:5000"
	c.RequestTimeout = 15 * time.Second
	c.SessionDuration = 7 * 24 * time.Hour
	c.SessionCheckInterval = 5 * time.Minute
	c.ExpiryWarningWindow = 24 * time.Hour
	c.StoreDriver = DriverSQLite
	c.DataDir = "data"
	c.DatabaseFile = "session.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPassword = ""
	c.RedisDB = 0
	c.LogLevel = "info"
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.APIBaseURL == "":
		return fmt.Errorf("%w: api base url is empty", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	case c.SessionDuration <= 0:
		return fmt.Errorf("%w: session duration must be positive", ErrInvalidConfig)
	case c.SessionCheckInterval <= 0:
		return fmt.Errorf("%w: session check interval must be positive", ErrInvalidConfig)
	case c.ExpiryWarningWindow < 0:
		return fmt.Errorf("%w: expiry warning window must not be negative", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return fmt.Errorf("%w: database file is empty", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis address is empty", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, envSource(dotEnvFile))
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
