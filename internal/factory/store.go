package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/config"
	storepkg "github.com/vibecheck/vibecheck/internal/store"
	storepg "github.com/vibecheck/vibecheck/internal/store/postgres"
)

const bootstrapTimeout = 30 * time.Second

// NewStore returns the Postgres-backed catalog store.
// Launches an async bootstrap check; returns the store immediately for
// fast startup.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	dsn := cfg.PostgresDSN
	if dsn == "" {
		return nil, fmt.Errorf("VIBECHECK_POSTGRES_DSN is required")
	}

	// Open the connection synchronously since health checks need it
	// immediately.
	db, err := storepg.Open(dsn)
	if err != nil {
		return nil, err
	}

	go func() {
		bctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()

		if err := storepg.Bootstrap(bctx, dsn); err != nil {
			log.Warn().Err(err).Msg("store bootstrap check failed")
		} else {
			log.Debug().Msg("store bootstrap check completed")
		}
	}()

	return storepg.NewWithDB(db), nil
}
