package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibecheck/vibecheck/internal/api"
	"github.com/vibecheck/vibecheck/internal/config"
	"github.com/vibecheck/vibecheck/internal/factory"
	"github.com/vibecheck/vibecheck/internal/logger"
	"github.com/vibecheck/vibecheck/internal/store"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		bootLog := logger.New("vibe-service")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithLevel("vibe-service", cfg.LogLevel)

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("http_port", cfg.HTTPPort).
		Msg("Vibe service starting…")

	ctx := context.Background()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Catalog store unavailable")
	}

	shared := factory.NewCache(ctx, cfg, log)
	provider := factory.NewProvider(cfg, shared, log)
	svcs := factory.NewServices(st, provider, shared, cfg, log)

	pinger, _ := st.(store.HealthPinger)
	photos, _ := provider.(api.PhotoFetcher)

	router := api.NewRouter(api.Deps{
		Discovery: svcs.Discovery,
		Venues:    svcs.Venues,
		Admin:     svcs.Venues,
		Reports:   svcs.Reports,
		Photos:    photos,
		Store:     st,
		Pinger:    pinger,
		AdminKey:  cfg.AdminAPIKey,
		Log:       log,
	})

	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
