package factory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/cache"
	"github.com/vibecheck/vibecheck/internal/config"
)

// NewCache selects the shared cache backend once at startup. Without a
// Redis URL, or when the connection cannot be established, the process
// runs with an always-miss store for its whole lifetime; the rate limiter
// then falls back to its in-process window map on first use.
func NewCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) cache.Store {
	if cfg.RedisURL == "" {
		log.Info().Msg("redis not configured, shared cache disabled")
		return cache.NewNull()
	}

	r, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis connection failed, shared cache disabled")
		return cache.NewNull()
	}
	log.Info().Msg("redis cache connected")
	return r
}
