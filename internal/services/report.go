package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/ratelimit"
	"github.com/vibecheck/vibecheck/internal/store"
)

// SubmitRequest is a validated report submission. Field bounds are
// enforced at the API boundary, not here.
type SubmitRequest struct {
	Slug        string
	VibeLevel   int
	QueueLength *model.QueueLength
	CoverCharge *float64
	MusicGenre  *string
	Notes       *string
	ImageURL    *string

	// Reporter identity: an authenticated user reference, or the request
	// metadata an anonymous fingerprint is derived from.
	UserID    *string
	DeviceID  string
	ClientIP  string
	UserAgent string

	// External is required when Slug addresses an external-only venue; it
	// carries the payload the materializer needs.
	External      *model.ExternalPlace
	CoverPhotoURL *string
}

// SubmitResult is a successful submission plus the caller's rate-limit
// state. RedirectSlug is set when materialization replaced an ephemeral
// external slug with a permanent one.
type SubmitResult struct {
	Report       *model.VibeReport     `json:"vibeReport"`
	RateLimit    model.RateLimitResult `json:"rateLimit"`
	RedirectSlug string                `json:"redirectSlug,omitempty"`
}

// ReportService owns the submission path: rate limit, lazy
// materialization, report insert.
type ReportService struct {
	store   store.Store
	venues  *VenueService
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

func NewReportService(s store.Store, venues *VenueService, limiter *ratelimit.Limiter, log zerolog.Logger) *ReportService {
	return &ReportService{store: s, venues: venues, limiter: limiter, log: log}
}

// Submit consults the limiter first, then materializes the target venue if
// it is external-only, then appends the report. On a denied limit the
// returned result still carries the reset time alongside ErrRateLimited.
func (s *ReportService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	rl, err := s.limiter.Check(ctx, ratelimit.Key(req.DeviceID, req.ClientIP))
	if err != nil {
		return nil, err
	}
	if !rl.Allowed {
		return &SubmitResult{RateLimit: rl}, model.ErrRateLimited
	}

	venue, redirect, err := s.resolveVenue(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &model.VibeReport{
		VenueID:     venue.ID,
		VibeLevel:   req.VibeLevel,
		QueueLength: req.QueueLength,
		CoverCharge: req.CoverCharge,
		MusicGenre:  req.MusicGenre,
		Notes:       req.Notes,
		ImageURL:    req.ImageURL,
	}
	// Exactly one of the two reporter identities is set.
	if req.UserID != nil {
		report.UserID = req.UserID
	} else {
		fp := anonFingerprint(req.ClientIP, req.UserAgent)
		report.AnonID = &fp
	}

	created, err := s.store.Reports().Create(ctx, report)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("venue", venue.Slug).
		Int("vibeLevel", created.VibeLevel).
		Int("rateRemaining", rl.Remaining).
		Msg("vibe report created")

	return &SubmitResult{Report: created, RateLimit: rl, RedirectSlug: redirect}, nil
}

func (s *ReportService) resolveVenue(ctx context.Context, req SubmitRequest) (*model.Venue, string, error) {
	if !model.IsExternalSlug(req.Slug) {
		v, err := s.store.Venues().GetBySlug(ctx, req.Slug)
		return v, "", err
	}

	if req.External == nil {
		return nil, "", fmt.Errorf("%w: external venue payload is required for slug %s", model.ErrValidation, req.Slug)
	}
	if req.External.PlaceID == "" {
		req.External.PlaceID = model.ExternalPlaceIDFromSlug(req.Slug)
	}
	v, err := s.venues.EnsureCatalogVenue(ctx, *req.External, req.CoverPhotoURL)
	if err != nil {
		return nil, "", err
	}
	return v, v.Slug, nil
}

// anonFingerprint derives a stable anonymous reporter id from the device's
// network identity. Sixteen hex chars is plenty for light anti-spam
// correlation without storing the raw address.
func anonFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "-" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}
