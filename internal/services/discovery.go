package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/store"
	"github.com/vibecheck/vibecheck/internal/vibes"
)

// PlacesProvider is the external places boundary consumed by discovery and
// materialization.
type PlacesProvider interface {
	SearchNearby(ctx context.Context, lat, lon float64, query string, radiusMeters int) ([]model.ExternalPlace, error)
	GetDetails(ctx context.Context, placeID string) (model.ExternalPlace, error)
	GetPhotoURLs(ctx context.Context, placeID string) ([]string, error)
}

// DiscoverRequest carries a discovery query. Lat/Lon are optional; without
// a geo-point only catalog venues are returned.
type DiscoverRequest struct {
	Lat          *float64
	Lon          *float64
	Query        string
	RadiusMeters int
}

// DiscoveryService fuses catalog venues with provider results for one
// geographic query.
type DiscoveryService struct {
	store        store.Store
	provider     PlacesProvider
	fetchTimeout time.Duration
	photoWorkers int
	defaultQuery string
	log          zerolog.Logger
}

func NewDiscoveryService(s store.Store, p PlacesProvider, fetchTimeout time.Duration, photoWorkers int, defaultQuery string, log zerolog.Logger) *DiscoveryService {
	if photoWorkers <= 0 {
		photoWorkers = 4
	}
	return &DiscoveryService{
		store:        s,
		provider:     p,
		fetchTimeout: fetchTimeout,
		photoWorkers: photoWorkers,
		defaultQuery: defaultQuery,
		log:          log,
	}
}

type catalogEntry struct {
	venue   *model.Venue
	reports []*model.VibeReport
}

// Discover returns the fused venue list, catalog venues first. Provider
// faults degrade to an empty external list; partial results are strictly
// preferred to an error. No distance ranking happens here.
func (s *DiscoveryService) Discover(ctx context.Context, req DiscoverRequest) ([]model.VenueView, error) {
	// The catalog read and the external search have no data dependency;
	// run them concurrently, each under its own timeout.
	catalogCh := make(chan []catalogEntry, 1)
	catalogErrCh := make(chan error, 1)
	go func() {
		cctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		entries, err := s.readCatalog(cctx)
		catalogCh <- entries
		catalogErrCh <- err
	}()

	externalCh := make(chan []model.ExternalPlace, 1)
	go func() {
		externalCh <- s.searchExternal(ctx, req)
	}()

	catalog := <-catalogCh
	if err := <-catalogErrCh; err != nil {
		return nil, err
	}
	external := <-externalCh

	// Dedupe: a provider result whose place id is already materialized is
	// represented by its catalog venue.
	known := make(map[string]bool, len(catalog))
	for _, e := range catalog {
		if e.venue.ExternalPlaceID != nil {
			known[*e.venue.ExternalPlaceID] = true
		}
	}
	surviving := external[:0]
	for _, p := range external {
		if !known[p.PlaceID] {
			surviving = append(surviving, p)
		}
	}

	photos := s.resolvePhotos(ctx, surviving)

	out := make([]model.VenueView, 0, len(catalog)+len(surviving))
	for _, e := range catalog {
		out = append(out, model.VenueView{
			Venue:     *e.venue,
			Source:    model.SourceCatalog,
			Aggregate: vibes.Aggregate(e.reports),
		})
	}
	for i, p := range surviving {
		out = append(out, externalView(p, photos[i]))
	}
	return out, nil
}

func (s *DiscoveryService) readCatalog(ctx context.Context) ([]catalogEntry, error) {
	venues, err := s.store.Venues().List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]catalogEntry, 0, len(venues))
	for _, v := range venues {
		reports, err := s.store.Reports().ListByVenue(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, catalogEntry{venue: v, reports: reports})
	}
	return entries, nil
}

func (s *DiscoveryService) searchExternal(ctx context.Context, req DiscoverRequest) []model.ExternalPlace {
	if s.provider == nil || req.Lat == nil || req.Lon == nil {
		return nil
	}
	query := req.Query
	if query == "" {
		query = s.defaultQuery
	}
	radius := req.RadiusMeters
	if radius <= 0 {
		radius = 1000
	}

	sctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	places, err := s.provider.SearchNearby(sctx, *req.Lat, *req.Lon, query, radius)
	if err != nil {
		s.log.Warn().Err(err).Msg("external search unavailable; serving catalog only")
		return nil
	}
	return places
}

// resolvePhotos fetches photo URLs for each external place with a small
// worker cap so the provider isn't hammered. A failed lookup leaves that
// venue without photos.
func (s *DiscoveryService) resolvePhotos(ctx context.Context, places []model.ExternalPlace) [][]string {
	photos := make([][]string, len(places))
	sem := make(chan struct{}, s.photoWorkers)
	var wg sync.WaitGroup
	for i := range places {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			urls, err := s.provider.GetPhotoURLs(ctx, places[i].PlaceID)
			if err != nil {
				s.log.Debug().Err(err).Str("placeId", places[i].PlaceID).Msg("photo resolution failed")
				return
			}
			photos[i] = urls
		}(i)
	}
	wg.Wait()
	return photos
}

func externalView(p model.ExternalPlace, photoURLs []string) model.VenueView {
	slug := model.ExternalSlugPrefix + p.PlaceID
	placeID := p.PlaceID
	return model.VenueView{
		Venue: model.Venue{
			ID:              slug,
			Slug:            slug,
			Name:            p.Name,
			Address:         p.Address,
			Lat:             p.Lat,
			Lon:             p.Lon,
			Categories:      []string{},
			ExternalPlaceID: &placeID,
		},
		Source:    model.SourceExternal,
		Aggregate: model.ZeroAggregate(),
		PhotoURLs: photoURLs,
	}
}
