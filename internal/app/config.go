package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// OrderServiceURL points at the authoritative remote order service.
	OrderServiceURL     string        `envconfig:"ORDER_SERVICE_URL" required:"true"`
	OrderServiceTimeout time.Duration `envconfig:"ORDER_SERVICE_TIMEOUT" default:"10s"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// PGDSN is optional; when empty the postgres snapshot store is not wired
	// and drafts persist to redis only.
	PGDSN string `envconfig:"PG_DSN" default:""`

	// DraftTTL bounds how long an untouched draft survives in durable storage.
	DraftTTL   time.Duration `envconfig:"DRAFT_TTL" default:"168h"`
	HistoryTTL time.Duration `envconfig:"HISTORY_CACHE_TTL" default:"5m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.OrderServiceURL = strings.TrimRight(cfg.OrderServiceURL, "/")
	if cfg.OrderServiceURL == "" {
		return nil, errors.New("order service url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
