// Package places adapts the third-party places HTTP API: paginated nearby
// search, place details, and photo URL resolution. Details and photos are
// routed through the shared cache.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/cache"
	"github.com/vibecheck/vibecheck/internal/model"
)

const (
	detailsTTL = time.Hour
	photosTTL  = 24 * time.Hour

	photoMaxWidth      = 800
	photoMaxWidthLimit = 1600

	// photoBasePath is the service's own photo proxy route. Caller-facing
	// URLs point here; the provider key only travels on the server-side
	// upstream fetch in Photo.
	photoBasePath = "/api/photos"
)

// Provider talks to the places API. The API key is server-held and never
// exposed to callers.
type Provider struct {
	client    *resty.Client
	apiKey    string
	baseURL   string
	pageDelay time.Duration
	cache     cache.Store
	log       zerolog.Logger
}

// Config carries provider construction options.
type Config struct {
	APIKey    string
	BaseURL   string
	PageDelay time.Duration
	Timeout   time.Duration
}

func New(cfg Config, store cache.Store, log zerolog.Logger) *Provider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &Provider{
		client:    client,
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		pageDelay: cfg.PageDelay,
		cache:     store,
		log:       log,
	}
}

// Wire types for the provider's JSON payloads.

type wirePlace struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Vicinity         string `json:"vicinity"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Types  []string `json:"types"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

type searchResponse struct {
	Results       []wirePlace `json:"results"`
	Status        string      `json:"status"`
	ErrorMessage  string      `json:"error_message"`
	NextPageToken string      `json:"next_page_token"`
}

type detailsResponse struct {
	Result       wirePlace `json:"result"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message"`
}

func (w wirePlace) toExternal() model.ExternalPlace {
	addr := w.FormattedAddress
	if addr == "" {
		addr = w.Vicinity
	}
	p := model.ExternalPlace{
		PlaceID: w.PlaceID,
		Name:    w.Name,
		Address: addr,
		Lat:     w.Geometry.Location.Lat,
		Lon:     w.Geometry.Location.Lng,
		Types:   w.Types,
	}
	for _, ph := range w.Photos {
		if ph.PhotoReference != "" {
			p.PhotoRefs = append(p.PhotoRefs, ph.PhotoReference)
		}
	}
	return p
}

// SearchNearby follows the provider's continuation-token pagination to
// exhaustion and returns the full finite result set. The provider-mandated
// inter-page delay is honored between requests; tokens are invalid before
// it elapses.
func (p *Provider) SearchNearby(ctx context.Context, lat, lon float64, query string, radiusMeters int) ([]model.ExternalPlace, error) {
	it := p.newSearch(lat, lon, query, radiusMeters)

	var out []model.ExternalPlace
	for {
		page, more, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if !more {
			return out, nil
		}
	}
}

// searchIter pages through one nearby search. Callers drive it to
// exhaustion; delay and cancellation points stay explicit.
type searchIter struct {
	p            *Provider
	lat, lon     float64
	query        string
	radiusMeters int

	token   string
	started bool
	done    bool
}

func (p *Provider) newSearch(lat, lon float64, query string, radiusMeters int) *searchIter {
	return &searchIter{p: p, lat: lat, lon: lon, query: query, radiusMeters: radiusMeters}
}

// Next fetches one page. The second return value reports whether another
// page remains.
func (it *searchIter) Next(ctx context.Context) ([]model.ExternalPlace, bool, error) {
	if it.done {
		return nil, false, nil
	}
	if it.started {
		// The continuation token is not valid until the mandated delay has
		// elapsed. This is a hard serialization point within one search.
		if err := sleepCtx(ctx, it.p.pageDelay); err != nil {
			return nil, false, err
		}
	}
	it.started = true

	params := map[string]string{
		"location": fmt.Sprintf("%f,%f", it.lat, it.lon),
		"radius":   fmt.Sprintf("%d", it.radiusMeters),
		"keyword":  it.query,
		"type":     "night_club|bar|restaurant",
		"key":      it.p.apiKey,
	}
	if it.token != "" {
		params["pagetoken"] = it.token
	}

	var body searchResponse
	resp, err := it.p.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get("/nearbysearch/json")
	if err != nil {
		return nil, false, fmt.Errorf("%w: nearby search: %v", model.ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return nil, false, fmt.Errorf("%w: nearby search: http %d", model.ErrProviderUnavailable, resp.StatusCode())
	}
	if body.Status != "OK" && body.Status != "ZERO_RESULTS" {
		return nil, false, fmt.Errorf("%w: nearby search: %s %s", model.ErrProviderBadResponse, body.Status, body.ErrorMessage)
	}

	page := make([]model.ExternalPlace, 0, len(body.Results))
	for _, r := range body.Results {
		page = append(page, r.toExternal())
	}

	it.token = body.NextPageToken
	if it.token == "" {
		it.done = true
	}
	return page, !it.done, nil
}

// GetDetails fetches a single place, cache-checked under details:<id>.
// Provider errors propagate directly.
func (p *Provider) GetDetails(ctx context.Context, placeID string) (model.ExternalPlace, error) {
	key := "details:" + placeID
	if b, err := p.cache.Get(ctx, key); err == nil {
		var cached model.ExternalPlace
		if jsonErr := json.Unmarshal(b, &cached); jsonErr == nil {
			return cached, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		p.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	place, err := p.fetchDetails(ctx, placeID, "place_id,name,formatted_address,geometry,types,photos")
	if err != nil {
		return model.ExternalPlace{}, err
	}

	p.writeCache(ctx, key, place, detailsTTL)
	return place, nil
}

// GetPhotoURLs resolves displayable photo URLs for a place, cache-checked
// under photos:<id>. A place with no photos yields an empty list, not an
// error. The returned URLs address this service's photo proxy, never the
// provider directly, so the API key stays server-side.
func (p *Provider) GetPhotoURLs(ctx context.Context, placeID string) ([]string, error) {
	key := "photos:" + placeID
	if b, err := p.cache.Get(ctx, key); err == nil {
		var urls []string
		if jsonErr := json.Unmarshal(b, &urls); jsonErr == nil {
			return urls, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		p.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	place, err := p.fetchDetails(ctx, placeID, "photos")
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(place.PhotoRefs))
	for _, ref := range place.PhotoRefs {
		urls = append(urls, fmt.Sprintf("%s/%s?maxwidth=%d",
			photoBasePath, url.PathEscape(ref), photoMaxWidth))
	}

	p.writeCache(ctx, key, urls, photosTTL)
	return urls, nil
}

// Photo fetches one photo from the provider for the proxy route, appending
// the server-held key upstream. Returns the image stream and its content
// type; the caller owns closing the stream.
func (p *Provider) Photo(ctx context.Context, ref string, maxWidth int) (io.ReadCloser, string, error) {
	if ref == "" {
		return nil, "", fmt.Errorf("%w: photo reference is required", model.ErrValidation)
	}
	if maxWidth <= 0 || maxWidth > photoMaxWidthLimit {
		maxWidth = photoMaxWidth
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetQueryParams(map[string]string{
			"maxwidth":        strconv.Itoa(maxWidth),
			"photo_reference": ref,
			"key":             p.apiKey,
		}).
		Get("/photo")
	if err != nil {
		return nil, "", fmt.Errorf("%w: photo: %v", model.ErrProviderUnavailable, err)
	}
	body := resp.RawBody()
	if resp.IsError() {
		_ = body.Close()
		if resp.StatusCode() == 404 {
			return nil, "", fmt.Errorf("%w: photo %s", model.ErrNotFound, ref)
		}
		return nil, "", fmt.Errorf("%w: photo: http %d", model.ErrProviderUnavailable, resp.StatusCode())
	}
	return body, resp.Header().Get("Content-Type"), nil
}

func (p *Provider) fetchDetails(ctx context.Context, placeID, fields string) (model.ExternalPlace, error) {
	var body detailsResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"place_id": placeID,
			"fields":   fields,
			"key":      p.apiKey,
		}).
		SetResult(&body).
		Get("/details/json")
	if err != nil {
		return model.ExternalPlace{}, fmt.Errorf("%w: details: %v", model.ErrProviderUnavailable, err)
	}
	if resp.IsError() {
		return model.ExternalPlace{}, fmt.Errorf("%w: details: http %d", model.ErrProviderUnavailable, resp.StatusCode())
	}
	if body.Status != "OK" {
		return model.ExternalPlace{}, fmt.Errorf("%w: details: %s %s", model.ErrProviderBadResponse, body.Status, body.ErrorMessage)
	}

	place := body.Result.toExternal()
	if place.PlaceID == "" {
		place.PlaceID = placeID
	}
	return place, nil
}

// writeCache stores v under key as a single all-or-nothing Set. Cache
// faults are logged, never surfaced.
func (p *Provider) writeCache(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, b, ttl); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
