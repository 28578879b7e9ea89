package model

import (
	"strings"
	"time"
)

// QueueLength is the ordered door-queue scale reporters pick from.
type QueueLength string

const (
	QueueNone   QueueLength = "NONE"
	QueueShort  QueueLength = "SHORT"
	QueueLong   QueueLength = "LONG"
	QueueInsane QueueLength = "INSANE"
)

// IsValid reports whether q is one of the known queue labels.
func (q QueueLength) IsValid() bool {
	switch q {
	case QueueNone, QueueShort, QueueLong, QueueInsane:
		return true
	}
	return false
}

// Vibe intensity bounds enforced at the submission boundary.
const (
	VibeLevelMin = 1
	VibeLevelMax = 5
)

// Venue is a nightlife venue in the catalog.
type Venue struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	Categories      []string  `json:"categories"`
	IsFeatured      bool      `json:"isFeatured"`
	CoverPhotoURL   *string   `json:"coverPhotoUrl,omitempty"`
	ExternalPlaceID *string   `json:"externalPlaceId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// VibeReport is an immutable crowd-sourced report for one venue.
// Exactly one of UserID and AnonID is set.
type VibeReport struct {
	ID          string       `json:"id"`
	VenueID     string       `json:"venueId"`
	SubmittedAt time.Time    `json:"submittedAt"`
	VibeLevel   int          `json:"vibeLevel"`
	QueueLength *QueueLength `json:"queueLength,omitempty"`
	CoverCharge *float64     `json:"coverCharge,omitempty"`
	MusicGenre  *string      `json:"musicGenre,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	ImageURL    *string      `json:"imageUrl,omitempty"`
	UserID      *string      `json:"userId,omitempty"`
	AnonID      *string      `json:"anonId,omitempty"`
	Flagged     bool         `json:"flagged"`
}

// VenueAggregate is the rollup computed from a venue's non-flagged reports.
// Never persisted; recomputed on every read.
type VenueAggregate struct {
	TotalVibes           int          `json:"totalVibes"`
	VibesLastHour        int          `json:"vibesLastHour"`
	AverageVibeLevel     *float64     `json:"averageVibeLevel"`
	AverageQueueLength   *QueueLength `json:"averageQueueLength"`
	AverageCoverCharge   *float64     `json:"averageCoverCharge"`
	MostCommonMusicGenre *string      `json:"mostCommonMusicGenre"`
	LastVibeReportAt     *time.Time   `json:"lastVibeReportAt"`
}

// ZeroAggregate is the placeholder rollup attached to external-only venues.
func ZeroAggregate() VenueAggregate { return VenueAggregate{} }

// VenueSource tags where a discovery result came from.
type VenueSource string

const (
	SourceCatalog  VenueSource = "catalog"
	SourceExternal VenueSource = "external"
)

// ExternalSlugPrefix marks synthesized slugs for venues known only through
// the places provider. Such slugs are valid only within one discovery
// response or a short-lived client cache.
const ExternalSlugPrefix = "external_"

// IsExternalSlug reports whether slug addresses an external-only venue.
func IsExternalSlug(slug string) bool {
	return strings.HasPrefix(slug, ExternalSlugPrefix)
}

// ExternalPlaceIDFromSlug extracts the provider place id from an external slug.
func ExternalPlaceIDFromSlug(slug string) string {
	return strings.TrimPrefix(slug, ExternalSlugPrefix)
}

// VenueView is one element of a fused discovery response.
type VenueView struct {
	Venue
	Source    VenueSource    `json:"source"`
	Aggregate VenueAggregate `json:"aggregatedData"`
	PhotoURLs []string       `json:"photoUrls,omitempty"`
}

// ExternalPlace is a venue as reported by the places provider.
type ExternalPlace struct {
	PlaceID   string   `json:"placeId"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Types     []string `json:"types,omitempty"`
	PhotoRefs []string `json:"photoRefs,omitempty"`
}

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// ListReportsRequest captures admin-side report listing filters.
type ListReportsRequest struct {
	Flagged *bool
	Limit   int
	Offset  int
}
