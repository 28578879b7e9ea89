package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the vibe service.
// Environment variables are parsed from the VIBECHECK_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres catalog store
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Shared cache / rate-limit backend. Empty disables the shared backend
	// for the process lifetime: the photo/details cache degrades to
	// always-miss and the rate limiter uses its process-local window map.
	RedisURL string `envconfig:"REDIS_URL" default:""`

	// Places provider
	PlacesAPIKey    string        `envconfig:"PLACES_API_KEY" default:""`
	PlacesBaseURL   string        `envconfig:"PLACES_BASE_URL" default:"https://maps.googleapis.com/maps/api/place"`
	PlacesPageDelay time.Duration `envconfig:"PLACES_PAGE_DELAY" default:"2s"`
	PlacesTimeout   time.Duration `envconfig:"PLACES_TIMEOUT" default:"10s"`

	// Report submission rate limit: capacity per key within the window.
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1h"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"3"`

	// Lazy materialization slug probing bound.
	SlugMaxAttempts int `envconfig:"SLUG_MAX_ATTEMPTS" default:"50"`

	// Discovery fan-out settings.
	DiscoveryTimeout  time.Duration `envconfig:"DISCOVERY_TIMEOUT" default:"15s"`
	PhotoWorkers      int           `envconfig:"PHOTO_WORKERS" default:"4"`
	DefaultSearchText string        `envconfig:"DEFAULT_SEARCH_TEXT" default:"night clubs"`

	// Admin API key for moderation endpoints. Empty disables admin routes.
	AdminAPIKey string `envconfig:"ADMIN_API_KEY" default:""`
}

// ResolveDefaults validates derived settings and clamps nonsensical values.
func (c *Config) ResolveDefaults() error {
	if c.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", c.RateLimitMax)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow)
	}
	if c.SlugMaxAttempts <= 0 {
		c.SlugMaxAttempts = 50
	}
	if c.PhotoWorkers <= 0 {
		c.PhotoWorkers = 4
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with VIBECHECK_, e.g. VIBECHECK_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("VIBECHECK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("redis_url_present", cfg.RedisURL != "").
		Bool("places_key_present", cfg.PlacesAPIKey != "").
		Dur("rate_limit_window", cfg.RateLimitWindow).
		Int("rate_limit_max", cfg.RateLimitMax).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:       EnvTesting,
		LogLevel:          "debug",
		HTTPPort:          8080,
		PlacesBaseURL:     "http://localhost:0",
		PlacesPageDelay:   time.Millisecond,
		PlacesTimeout:     time.Second,
		RateLimitWindow:   time.Hour,
		RateLimitMax:      3,
		SlugMaxAttempts:   50,
		DiscoveryTimeout:  2 * time.Second,
		PhotoWorkers:      2,
		DefaultSearchText: "night clubs",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
