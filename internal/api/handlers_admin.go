package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vibecheck/vibecheck/internal/api/respond"
	"github.com/vibecheck/vibecheck/internal/api/validate"
	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/store"
)

// AdminKeyHeader carries the shared secret for moderation endpoints.
const AdminKeyHeader = "X-Admin-Key"

// VenueCreator is the admin-side catalog write surface.
type VenueCreator interface {
	Create(ctx context.Context, v *model.Venue) (*model.Venue, error)
}

// AdminHandler serves moderation endpoints: venue creation, report
// listing, flagging.
type AdminHandler struct {
	venues  VenueCreator
	reports store.Reports
}

func NewAdminHandler(venues VenueCreator, reports store.Reports) *AdminHandler {
	return &AdminHandler{venues: venues, reports: reports}
}

// RequireAdminKey rejects requests whose X-Admin-Key header does not match
// the configured secret. An unconfigured secret disables the endpoints.
func RequireAdminKey(key string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				respond.WriteServiceUnavailable(w, "admin endpoints are not configured")
				return
			}
			got := r.Header.Get(AdminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				respond.WriteUnauthorized(w, "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type createVenueBody struct {
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	Categories    []string `json:"categories,omitempty"`
	IsFeatured    bool     `json:"isFeatured,omitempty"`
	CoverPhotoURL *string  `json:"coverPhotoUrl,omitempty"`
}

// CreateVenue POST /api/admin/venues
func (h *AdminHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var body createVenueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateVenue(body.Name, body.Address, body.Lat, body.Lon); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	v := &model.Venue{
		Name:          body.Name,
		Address:       body.Address,
		Lat:           body.Lat,
		Lon:           body.Lon,
		Categories:    body.Categories,
		IsFeatured:    body.IsFeatured,
		CoverPhotoURL: body.CoverPhotoURL,
	}
	out, err := h.venues.Create(r.Context(), v)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListReports GET /api/admin/reports?flagged=&limit=&offset=
func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := model.ListReportsRequest{}

	if fs := q.Get("flagged"); fs != "" {
		flagged, err := strconv.ParseBool(fs)
		if err != nil {
			respond.WriteBadRequest(w, "flagged must be a boolean")
			return
		}
		req.Flagged = &flagged
	}
	if ls := q.Get("limit"); ls != "" {
		limit, err := strconv.Atoi(ls)
		if err != nil || limit < 0 {
			respond.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		req.Limit = limit
	}
	if os := q.Get("offset"); os != "" {
		offset, err := strconv.Atoi(os)
		if err != nil || offset < 0 {
			respond.WriteBadRequest(w, "offset must be a non-negative integer")
			return
		}
		req.Offset = offset
	}

	reports, total, err := h.reports.List(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
		"total":   total,
	})
}

// UpdateReport PATCH /api/admin/reports/{id}
func (h *AdminHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Flagged *bool `json:"flagged"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if body.Flagged == nil {
		respond.WriteBadRequest(w, "flagged is required")
		return
	}

	out, err := h.reports.SetFlagged(r.Context(), id, *body.Flagged)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
