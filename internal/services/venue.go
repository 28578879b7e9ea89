package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/store"
	"github.com/vibecheck/vibecheck/internal/vibes"
)

// VenueDetail is one venue with its public report history and rollup.
type VenueDetail struct {
	model.Venue
	Aggregate   model.VenueAggregate `json:"aggregatedData"`
	VibeReports []*model.VibeReport  `json:"vibeReports"`
}

// VenueService owns catalog venue reads, creation, and lazy
// materialization of external-only venues.
type VenueService struct {
	store           store.Store
	slugMaxAttempts int
	log             zerolog.Logger
}

func NewVenueService(s store.Store, slugMaxAttempts int, log zerolog.Logger) *VenueService {
	if slugMaxAttempts <= 0 {
		slugMaxAttempts = 50
	}
	return &VenueService{store: s, slugMaxAttempts: slugMaxAttempts, log: log}
}

// GetBySlug returns the venue with its non-flagged reports and a freshly
// computed rollup.
func (s *VenueService) GetBySlug(ctx context.Context, slug string) (*VenueDetail, error) {
	v, err := s.store.Venues().GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	reports, err := s.store.Reports().ListByVenue(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []*model.VibeReport{}
	}
	return &VenueDetail{
		Venue:       *v,
		Aggregate:   vibes.Aggregate(reports),
		VibeReports: reports,
	}, nil
}

// Create persists an administratively supplied venue.
func (s *VenueService) Create(ctx context.Context, v *model.Venue) (*model.Venue, error) {
	if v.Name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if v.Slug == "" {
		v.Slug = Slugify(v.Name)
	}
	return s.store.Venues().Create(ctx, v)
}

// EnsureCatalogVenue converts an external-only venue into a permanent
// catalog row. A place id that was already materialized returns the
// existing row. Two concurrent calls for the same place id may still both
// insert; that race is accepted, not solved here.
func (s *VenueService) EnsureCatalogVenue(ctx context.Context, ext model.ExternalPlace, coverPhotoURL *string) (*model.Venue, error) {
	if ext.PlaceID == "" || ext.Name == "" {
		return nil, fmt.Errorf("%w: external venue payload requires place id and name", model.ErrValidation)
	}

	if existing, err := s.store.Venues().GetByExternalID(ctx, ext.PlaceID); err == nil {
		return existing, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	base := Slugify(ext.Name)
	placeID := ext.PlaceID
	for attempt := 0; attempt < s.slugMaxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}
		exists, err := s.store.Venues().SlugExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		v, err := s.store.Venues().Create(ctx, &model.Venue{
			Slug:            candidate,
			Name:            ext.Name,
			Address:         ext.Address,
			Lat:             ext.Lat,
			Lon:             ext.Lon,
			Categories:      []string{},
			IsFeatured:      false,
			CoverPhotoURL:   coverPhotoURL,
			ExternalPlaceID: &placeID,
		})
		if errors.Is(err, model.ErrConflict) {
			// Lost the slug to a concurrent insert between the point lookup
			// and the create; try the next candidate.
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("slug", v.Slug).Str("placeId", placeID).Msg("materialized external venue")
		return v, nil
	}
	return nil, fmt.Errorf("%w: no free slug for %q within %d attempts", model.ErrSlugExhausted, base, s.slugMaxAttempts)
}

// Slugify derives a URL slug from a venue name: lowercase, non-alphanumeric
// stripped, whitespace to hyphens, repeated hyphens collapsed.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "venue"
	}
	return slug
}
