package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/store"
)

// fakeStore is an in-memory store.Store for service tests.
type fakeStore struct {
	mu      sync.Mutex
	venues  []*model.Venue
	reports []*model.VibeReport
	nextID  int
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (f *fakeStore) Venues() store.Venues   { return &fakeVenues{f} }
func (f *fakeStore) Reports() store.Reports { return &fakeReports{f} }

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) addVenue(v *model.Venue) *model.Venue {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.ID == "" {
		v.ID = f.id("venue")
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	f.venues = append(f.venues, v)
	return v
}

type fakeVenues struct{ f *fakeStore }

func (v *fakeVenues) Create(_ context.Context, m *model.Venue) (*model.Venue, error) {
	v.f.mu.Lock()
	for _, ex := range v.f.venues {
		if ex.Slug == m.Slug {
			v.f.mu.Unlock()
			return nil, fmt.Errorf("%w: venues_slug_key", model.ErrConflict)
		}
	}
	v.f.mu.Unlock()
	out := *m
	out.UpdatedAt = time.Now()
	return v.f.addVenue(&out), nil
}

func (v *fakeVenues) GetByID(_ context.Context, id string) (*model.Venue, error) {
	v.f.mu.Lock()
	defer v.f.mu.Unlock()
	for _, ex := range v.f.venues {
		if ex.ID == id {
			return ex, nil
		}
	}
	return nil, model.ErrNotFound
}

func (v *fakeVenues) GetBySlug(_ context.Context, slug string) (*model.Venue, error) {
	v.f.mu.Lock()
	defer v.f.mu.Unlock()
	for _, ex := range v.f.venues {
		if ex.Slug == slug {
			return ex, nil
		}
	}
	return nil, model.ErrNotFound
}

func (v *fakeVenues) List(_ context.Context) ([]*model.Venue, error) {
	v.f.mu.Lock()
	defer v.f.mu.Unlock()
	out := make([]*model.Venue, len(v.f.venues))
	copy(out, v.f.venues)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v *fakeVenues) SlugExists(_ context.Context, slug string) (bool, error) {
	v.f.mu.Lock()
	defer v.f.mu.Unlock()
	for _, ex := range v.f.venues {
		if ex.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (v *fakeVenues) GetByExternalID(_ context.Context, placeID string) (*model.Venue, error) {
	v.f.mu.Lock()
	defer v.f.mu.Unlock()
	for _, ex := range v.f.venues {
		if ex.ExternalPlaceID != nil && *ex.ExternalPlaceID == placeID {
			return ex, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeReports struct{ f *fakeStore }

func (r *fakeReports) Create(_ context.Context, m *model.VibeReport) (*model.VibeReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := *m
	out.ID = r.f.id("report")
	if out.SubmittedAt.IsZero() {
		out.SubmittedAt = time.Now()
	}
	r.f.reports = append(r.f.reports, &out)
	return &out, nil
}

func (r *fakeReports) ListByVenue(_ context.Context, venueID string) ([]*model.VibeReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*model.VibeReport
	for _, rep := range r.f.reports {
		if rep.VenueID == venueID && !rep.Flagged {
			out = append(out, rep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *fakeReports) List(_ context.Context, req model.ListReportsRequest) ([]*model.VibeReport, int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*model.VibeReport
	for _, rep := range r.f.reports {
		if req.Flagged != nil && rep.Flagged != *req.Flagged {
			continue
		}
		out = append(out, rep)
	}
	return out, len(out), nil
}

func (r *fakeReports) SetFlagged(_ context.Context, reportID string, flagged bool) (*model.VibeReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, rep := range r.f.reports {
		if rep.ID == reportID {
			rep.Flagged = flagged
			return rep, nil
		}
	}
	return nil, model.ErrNotFound
}

// fakeProvider is a scripted PlacesProvider.
type fakeProvider struct {
	mu          sync.Mutex
	places      []model.ExternalPlace
	searchErr   error
	photos      map[string][]string
	searchCalls int
	photoCalls  int
}

func (p *fakeProvider) SearchNearby(_ context.Context, _, _ float64, _ string, _ int) ([]model.ExternalPlace, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searchCalls++
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.places, nil
}

func (p *fakeProvider) GetDetails(_ context.Context, placeID string) (model.ExternalPlace, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pl := range p.places {
		if pl.PlaceID == placeID {
			return pl, nil
		}
	}
	return model.ExternalPlace{}, model.ErrProviderBadResponse
}

func (p *fakeProvider) GetPhotoURLs(_ context.Context, placeID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.photoCalls++
	return p.photos[placeID], nil
}
