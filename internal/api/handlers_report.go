package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vibecheck/vibecheck/internal/api/respond"
	"github.com/vibecheck/vibecheck/internal/api/validate"
	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/services"
)

// ReportSubmitter is the submission path consumed by the report handler.
type ReportSubmitter interface {
	Submit(ctx context.Context, req services.SubmitRequest) (*services.SubmitResult, error)
}

// ReportHandler serves vibe report submission.
type ReportHandler struct {
	svc ReportSubmitter
}

func NewReportHandler(svc ReportSubmitter) *ReportHandler { return &ReportHandler{svc: svc} }

type submitReportBody struct {
	VibeLevel     int                  `json:"vibeLevel"`
	QueueLength   *string              `json:"queueLength,omitempty"`
	CoverCharge   *float64             `json:"coverCharge,omitempty"`
	MusicGenre    *string              `json:"musicGenre,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	ImageURL      *string              `json:"imageUrl,omitempty"`
	UserID        *string              `json:"userId,omitempty"`
	DeviceID      string               `json:"deviceId,omitempty"`
	ExternalVenue *model.ExternalPlace `json:"externalVenue,omitempty"`
	CoverPhotoURL *string              `json:"coverPhotoUrl,omitempty"`
}

// CreateReport POST /api/venues/{slug}/vibe-reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if err := validate.Slug(slug); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	var body submitReportBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.VibeReport(body.VibeLevel, body.CoverCharge, body.MusicGenre, body.Notes, body.ImageURL); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	queue, err := validate.QueueLength(body.QueueLength)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if model.IsExternalSlug(slug) {
		if err := validate.ExternalVenue(body.ExternalVenue); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}

	req := services.SubmitRequest{
		Slug:          slug,
		VibeLevel:     body.VibeLevel,
		QueueLength:   queue,
		CoverCharge:   body.CoverCharge,
		MusicGenre:    body.MusicGenre,
		Notes:         body.Notes,
		ImageURL:      body.ImageURL,
		UserID:        body.UserID,
		DeviceID:      body.DeviceID,
		ClientIP:      clientIP(r),
		UserAgent:     r.UserAgent(),
		External:      body.ExternalVenue,
		CoverPhotoURL: body.CoverPhotoURL,
	}

	res, err := h.svc.Submit(r.Context(), req)
	if res != nil {
		writeRateLimitHeaders(w, res.RateLimit)
	}
	if err != nil {
		if errors.Is(err, model.ErrRateLimited) {
			payload := map[string]interface{}{
				"error":   http.StatusText(http.StatusTooManyRequests),
				"code":    http.StatusTooManyRequests,
				"message": "vibe report limit reached, try again later",
			}
			if res != nil {
				payload["resetAt"] = res.RateLimit.ResetAt
			}
			respond.WriteJSON(w, http.StatusTooManyRequests, payload)
			return
		}
		writeServiceError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusCreated, res)
}

func writeRateLimitHeaders(w http.ResponseWriter, rl model.RateLimitResult) {
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rl.ResetAt.Unix(), 10))
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
