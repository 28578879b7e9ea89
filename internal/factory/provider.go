package factory

import (
	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/cache"
	"github.com/vibecheck/vibecheck/internal/config"
	"github.com/vibecheck/vibecheck/internal/places"
	"github.com/vibecheck/vibecheck/internal/services"
)

// NewProvider builds the places client. Without an API key discovery runs
// catalog-only, so a nil provider is returned rather than an error.
func NewProvider(cfg *config.Config, shared cache.Store, log zerolog.Logger) services.PlacesProvider {
	if cfg.PlacesAPIKey == "" {
		log.Info().Msg("places api key not configured, discovery is catalog-only")
		return nil
	}
	return places.New(places.Config{
		APIKey:    cfg.PlacesAPIKey,
		BaseURL:   cfg.PlacesBaseURL,
		PageDelay: cfg.PlacesPageDelay,
		Timeout:   cfg.PlacesTimeout,
	}, shared, log)
}
