package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Role slot modes.
const (
	RoleSlotCookie = "cookie"
	RoleSlotRedis  = "redis"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"edudash_session"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	// RoleSlot picks where the selected role lives: "cookie" keeps it in
	// the browser session, "redis" in the single key RoleSlotKey.
	RoleSlot    string `envconfig:"SESSION_ROLE_SLOT" default:"cookie"`
	RoleSlotKey string `envconfig:"ROLE_SLOT_KEY" default:"edudash:role"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	switch cfg.RoleSlot {
	case RoleSlotCookie:
	case RoleSlotRedis:
		if cfg.RoleSlotKey == "" {
			return nil, errors.New("role slot key must be provided in redis slot mode")
		}
	default:
		return nil, fmt.Errorf("unknown role slot %q (want %s or %s)", cfg.RoleSlot, RoleSlotCookie, RoleSlotRedis)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
