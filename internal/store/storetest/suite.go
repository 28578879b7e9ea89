package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store
// implementation. Implementations should provide a clean, isolated store
// and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	extID := "place-" + suffix

	// Venues
	v, err := s.Venues().Create(ctx, &model.Venue{
		Slug:            "test-venue-" + suffix,
		Name:            "Test Venue",
		Address:         "1 Test St",
		Lat:             40.0,
		Lon:             -73.0,
		Categories:      []string{"rooftop"},
		ExternalPlaceID: &extID,
	})
	if err != nil {
		t.Fatalf("CreateVenue: %v", err)
	}
	if v.ID == "" || v.CreatedAt.IsZero() {
		t.Fatalf("CreateVenue: incomplete venue %+v", v)
	}

	if got, err := s.Venues().GetBySlug(ctx, v.Slug); err != nil || got.ID != v.ID {
		t.Fatalf("GetBySlug: got=%v err=%v", got, err)
	}
	if got, err := s.Venues().GetByID(ctx, v.ID); err != nil || got.Slug != v.Slug {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if _, err := s.Venues().GetBySlug(ctx, "missing-"+suffix); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetBySlug missing: want ErrNotFound, got %v", err)
	}
	if exists, err := s.Venues().SlugExists(ctx, v.Slug); err != nil || !exists {
		t.Fatalf("SlugExists: exists=%v err=%v", exists, err)
	}
	if got, err := s.Venues().GetByExternalID(ctx, extID); err != nil || got.ID != v.ID {
		t.Fatalf("GetByExternalID: got=%v err=%v", got, err)
	}
	if _, err := s.Venues().GetByExternalID(ctx, "nope-"+suffix); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetByExternalID missing: want ErrNotFound, got %v", err)
	}
	if lst, err := s.Venues().List(ctx); err != nil || len(lst) == 0 {
		t.Fatalf("ListVenues: n=%d err=%v", len(lst), err)
	}

	// Duplicate slug must conflict.
	if _, err := s.Venues().Create(ctx, &model.Venue{Slug: v.Slug, Name: "Dup"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate slug: want ErrConflict, got %v", err)
	}

	// Reports
	anon := "fp-" + suffix
	queue := model.QueueShort
	r1, err := s.Reports().Create(ctx, &model.VibeReport{
		VenueID:     v.ID,
		VibeLevel:   4,
		QueueLength: &queue,
		AnonID:      &anon,
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if r1.ID == "" || r1.SubmittedAt.IsZero() {
		t.Fatalf("CreateReport: incomplete report %+v", r1)
	}

	r2, err := s.Reports().Create(ctx, &model.VibeReport{VenueID: v.ID, VibeLevel: 2, AnonID: &anon})
	if err != nil {
		t.Fatalf("CreateReport r2: %v", err)
	}

	lst, err := s.Reports().ListByVenue(ctx, v.ID)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListByVenue: n=%d err=%v", len(lst), err)
	}
	// Newest first.
	if lst[0].SubmittedAt.Before(lst[1].SubmittedAt) {
		t.Fatalf("ListByVenue order: %v before %v", lst[0].SubmittedAt, lst[1].SubmittedAt)
	}

	// Flagging removes a report from the public listing.
	if _, err := s.Reports().SetFlagged(ctx, r2.ID, true); err != nil {
		t.Fatalf("SetFlagged: %v", err)
	}
	lst, err = s.Reports().ListByVenue(ctx, v.ID)
	if err != nil || len(lst) != 1 || lst[0].ID != r1.ID {
		t.Fatalf("ListByVenue after flag: n=%d err=%v", len(lst), err)
	}

	// Moderation view sees the flagged report.
	flagged := true
	mod, total, err := s.Reports().List(ctx, model.ListReportsRequest{Flagged: &flagged, Limit: 10})
	if err != nil || total < 1 {
		t.Fatalf("List flagged: total=%d err=%v", total, err)
	}
	found := false
	for _, m := range mod {
		if m.ID == r2.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("flagged report %s missing from moderation view", r2.ID)
	}
}
