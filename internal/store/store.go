package store

import (
	"context"

	"github.com/vibecheck/vibecheck/internal/model"
)

// Store exposes the catalog persistence operations required by services.
// Implementations live under internal/store/<driver>/.
type Store interface {
	Venues() Venues
	Reports() Reports
}

type Venues interface {
	Create(ctx context.Context, v *model.Venue) (*model.Venue, error)
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	GetBySlug(ctx context.Context, slug string) (*model.Venue, error)
	// List returns all venues, newest first.
	List(ctx context.Context) ([]*model.Venue, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// GetByExternalID finds the catalog venue holding a provider place id,
	// if one was already materialized.
	GetByExternalID(ctx context.Context, placeID string) (*model.Venue, error)
}

type Reports interface {
	Create(ctx context.Context, r *model.VibeReport) (*model.VibeReport, error)
	// ListByVenue returns the venue's non-flagged reports, newest first.
	ListByVenue(ctx context.Context, venueID string) ([]*model.VibeReport, error)
	// List is the moderation view: optional flagged filter, limit/offset.
	List(ctx context.Context, req model.ListReportsRequest) ([]*model.VibeReport, int, error)
	SetFlagged(ctx context.Context, reportID string, flagged bool) (*model.VibeReport, error)
}

// HealthPinger is implemented by stores that can verify connectivity.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
