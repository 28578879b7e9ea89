package factory

import (
	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/cache"
	"github.com/vibecheck/vibecheck/internal/config"
	"github.com/vibecheck/vibecheck/internal/ratelimit"
	"github.com/vibecheck/vibecheck/internal/services"
	"github.com/vibecheck/vibecheck/internal/store"
)

// Services bundles the wired domain services for the HTTP layer.
type Services struct {
	Discovery *services.DiscoveryService
	Venues    *services.VenueService
	Reports   *services.ReportService
	Limiter   *ratelimit.Limiter
}

// NewServices wires the domain services from their dependencies.
func NewServices(st store.Store, provider services.PlacesProvider, shared cache.Store, cfg *config.Config, log zerolog.Logger) *Services {
	limiter := ratelimit.New(shared, cfg.RateLimitWindow, cfg.RateLimitMax, log)
	venues := services.NewVenueService(st, cfg.SlugMaxAttempts, log)
	discovery := services.NewDiscoveryService(st, provider, cfg.DiscoveryTimeout, cfg.PhotoWorkers, cfg.DefaultSearchText, log)
	reports := services.NewReportService(st, venues, limiter, log)

	return &Services{
		Discovery: discovery,
		Venues:    venues,
		Reports:   reports,
		Limiter:   limiter,
	}
}
