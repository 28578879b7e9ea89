package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/api/recovery"
	"github.com/vibecheck/vibecheck/internal/store"
)

// Deps carries the wired services the router mounts. Store is used for the
// admin moderation view and the storage health probe.
type Deps struct {
	Discovery Discoverer
	Venues    VenueCatalog
	Admin     VenueCreator
	Reports   ReportSubmitter
	Photos    PhotoFetcher
	Store     store.Store
	Pinger    store.HealthPinger
	AdminKey  string
	Log       zerolog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware(d.Log))

	healthHandler := NewHealthHandler(d.Pinger)
	discoveryHandler := NewDiscoveryHandler(d.Discovery)
	venueHandler := NewVenueHandler(d.Venues)
	reportHandler := NewReportHandler(d.Reports)
	photoHandler := NewPhotoHandler(d.Photos)
	adminHandler := NewAdminHandler(d.Admin, d.Store.Reports())

	// Health endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/db", healthHandler.CheckStorageHealth).Methods("GET")

	// Public venue endpoints
	router.HandleFunc("/api/venues", discoveryHandler.ListVenues).Methods("GET")
	router.HandleFunc("/api/venues/{slug}", venueHandler.GetVenue).Methods("GET")
	router.HandleFunc("/api/venues/{slug}/vibe-reports", reportHandler.CreateReport).Methods("POST")

	// Photo proxy; keeps the provider key server-side
	router.HandleFunc("/api/photos/{ref}", photoHandler.GetPhoto).Methods("GET")

	// Moderation endpoints behind the shared admin key
	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(RequireAdminKey(d.AdminKey))
	admin.HandleFunc("/venues", adminHandler.CreateVenue).Methods("POST")
	admin.HandleFunc("/reports", adminHandler.ListReports).Methods("GET")
	admin.HandleFunc("/reports/{id}", adminHandler.UpdateReport).Methods("PATCH")

	return router
}
