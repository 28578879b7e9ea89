package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/cache"
	"github.com/vibecheck/vibecheck/internal/model"
)

func newTestProvider(t *testing.T, handler http.Handler, store cache.Store) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	if store == nil {
		store = cache.NewMemory()
	}
	return New(Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		PageDelay: 10 * time.Millisecond,
		Timeout:   2 * time.Second,
	}, store, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func searchPage(names []string, token string) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(names))
	for i, n := range names {
		results = append(results, map[string]interface{}{
			"place_id": fmt.Sprintf("pid-%s", n),
			"name":     n,
			"vicinity": fmt.Sprintf("%d Club St", i),
			"geometry": map[string]interface{}{
				"location": map[string]float64{"lat": 40.0, "lng": -73.0},
			},
			"types": []string{"night_club"},
		})
	}
	page := map[string]interface{}{"results": results, "status": "OK"}
	if token != "" {
		page["next_page_token"] = token
	}
	return page
}

func TestSearchNearby_PaginatesToExhaustion(t *testing.T) {
	var requests []string
	start := time.Now()
	var secondPageAt time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query().Get("pagetoken"))
		switch r.URL.Query().Get("pagetoken") {
		case "":
			writeJSON(w, searchPage([]string{"Alpha", "Beta"}, "tok-2"))
		case "tok-2":
			secondPageAt = time.Now()
			writeJSON(w, searchPage([]string{"Gamma"}, ""))
		default:
			t.Errorf("unexpected pagetoken %q", r.URL.Query().Get("pagetoken"))
		}
	})

	p := newTestProvider(t, h, nil)
	got, err := p.SearchNearby(context.Background(), 40.0, -73.0, "clubs", 1000)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d places, want 3", len(got))
	}
	if got[0].PlaceID != "pid-Alpha" || got[2].PlaceID != "pid-Gamma" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if len(requests) != 2 {
		t.Fatalf("made %d requests, want 2", len(requests))
	}
	if secondPageAt.Sub(start) < 10*time.Millisecond {
		t.Fatal("second page fetched before the mandated inter-page delay")
	}
}

func TestSearchNearby_ZeroResults(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"results": []interface{}{}, "status": "ZERO_RESULTS"})
	})
	p := newTestProvider(t, h, nil)
	got, err := p.SearchNearby(context.Background(), 40.0, -73.0, "clubs", 1000)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d places, want 0", len(got))
	}
}

func TestSearchNearby_ProviderErrorStatus(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"status": "REQUEST_DENIED", "error_message": "bad key"})
	})
	p := newTestProvider(t, h, nil)
	_, err := p.SearchNearby(context.Background(), 40.0, -73.0, "clubs", 1000)
	if !errors.Is(err, model.ErrProviderBadResponse) {
		t.Fatalf("expected ErrProviderBadResponse, got %v", err)
	}
}

func TestSearchNearby_HTTPFailure(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	p := newTestProvider(t, h, nil)
	_, err := p.SearchNearby(context.Background(), 40.0, -73.0, "clubs", 1000)
	if !errors.Is(err, model.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSearchNearby_CancelDuringPageDelay(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, searchPage([]string{"Alpha"}, "tok-2"))
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	p := New(Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		PageDelay: 5 * time.Second,
		Timeout:   2 * time.Second,
	}, cache.NewMemory(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.SearchNearby(ctx, 40.0, -73.0, "clubs", 1000)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded during page delay, got %v", err)
	}
}

func TestGetPhotoURLs_BuildsAndCaches(t *testing.T) {
	var detailCalls int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/details") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "photos" {
			t.Errorf("fields = %q, want photos", got)
		}
		detailCalls++
		writeJSON(w, map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{
				"place_id": "pid-1",
				"photos": []map[string]string{
					{"photo_reference": "ref-a"},
					{"photo_reference": "ref-b"},
				},
			},
		})
	})

	store := cache.NewMemory()
	p := newTestProvider(t, h, store)

	urls, err := p.GetPhotoURLs(context.Background(), "pid-1")
	if err != nil {
		t.Fatalf("GetPhotoURLs: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("got %d urls, want 2", len(urls))
	}
	if !strings.HasPrefix(urls[0], "/api/photos/ref-a") || !strings.Contains(urls[0], "maxwidth=800") {
		t.Fatalf("unexpected url %q", urls[0])
	}

	// Second call is served from the cache.
	if _, err := p.GetPhotoURLs(context.Background(), "pid-1"); err != nil {
		t.Fatalf("GetPhotoURLs cached: %v", err)
	}
	if detailCalls != 1 {
		t.Fatalf("details fetched %d times, want 1", detailCalls)
	}
}

func TestGetPhotoURLs_NeverExposeAPIKey(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{
				"place_id": "pid-7",
				"photos":   []map[string]string{{"photo_reference": "ref-a"}},
			},
		})
	})
	p := newTestProvider(t, h, nil)

	urls, err := p.GetPhotoURLs(context.Background(), "pid-7")
	if err != nil {
		t.Fatalf("GetPhotoURLs: %v", err)
	}
	for _, u := range urls {
		if strings.Contains(u, "test-key") || strings.Contains(u, "key=") {
			t.Fatalf("caller-facing url %q carries the provider key", u)
		}
		if !strings.HasPrefix(u, "/api/photos/") {
			t.Fatalf("url %q does not address the photo proxy", u)
		}
	}
}

func TestPhoto_StreamsUpstreamWithServerKey(t *testing.T) {
	const img = "fake-image-bytes"
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "test-key" || q.Get("photo_reference") != "ref-a" {
			t.Errorf("upstream query = %v", q)
		}
		if q.Get("maxwidth") != "400" {
			t.Errorf("maxwidth = %q, want 400", q.Get("maxwidth"))
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(img))
	})
	p := newTestProvider(t, h, nil)

	body, ctype, err := p.Photo(context.Background(), "ref-a", 400)
	if err != nil {
		t.Fatalf("Photo: %v", err)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil || string(data) != img {
		t.Fatalf("body = %q, err = %v", data, err)
	}
	if ctype != "image/jpeg" {
		t.Fatalf("content type = %q", ctype)
	}
}

func TestPhoto_ClampsMaxWidth(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxwidth"); got != "800" {
			t.Errorf("maxwidth = %q, want default 800", got)
		}
		_, _ = w.Write([]byte("x"))
	})
	p := newTestProvider(t, h, nil)

	body, _, err := p.Photo(context.Background(), "ref-a", 99999)
	if err != nil {
		t.Fatalf("Photo: %v", err)
	}
	_ = body.Close()
}

func TestPhoto_UpstreamErrors(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	p := newTestProvider(t, h, nil)

	if _, _, err := p.Photo(context.Background(), "ref-gone", 0); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := p.Photo(context.Background(), "", 0); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty ref, got %v", err)
	}
}

func TestGetPhotoURLs_NoPhotosIsEmptyNotError(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{"place_id": "pid-2"},
		})
	})
	p := newTestProvider(t, h, nil)

	urls, err := p.GetPhotoURLs(context.Background(), "pid-2")
	if err != nil {
		t.Fatalf("GetPhotoURLs: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("got %d urls, want 0", len(urls))
	}
}

func TestGetDetails_CachesUnderDetailsKey(t *testing.T) {
	var calls int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{
				"place_id":          "pid-3",
				"name":              "The Vault",
				"formatted_address": "1 Bank St",
				"geometry": map[string]interface{}{
					"location": map[string]float64{"lat": 51.5, "lng": -0.1},
				},
			},
		})
	})
	store := cache.NewMemory()
	p := newTestProvider(t, h, store)

	got, err := p.GetDetails(context.Background(), "pid-3")
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if got.Name != "The Vault" || got.Address != "1 Bank St" {
		t.Fatalf("unexpected place %+v", got)
	}
	if _, err := store.Get(context.Background(), "details:pid-3"); err != nil {
		t.Fatalf("expected cached details entry: %v", err)
	}

	if _, err := p.GetDetails(context.Background(), "pid-3"); err != nil {
		t.Fatalf("GetDetails cached: %v", err)
	}
	if calls != 1 {
		t.Fatalf("provider hit %d times, want 1", calls)
	}
}
