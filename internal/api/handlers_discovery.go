package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vibecheck/vibecheck/internal/api/respond"
	"github.com/vibecheck/vibecheck/internal/model"
	"github.com/vibecheck/vibecheck/internal/services"
)

// Discoverer is the fused venue search consumed by the discovery handler.
type Discoverer interface {
	Discover(ctx context.Context, req services.DiscoverRequest) ([]model.VenueView, error)
}

// DiscoveryHandler is a thin HTTP transport over the discovery service.
type DiscoveryHandler struct {
	svc Discoverer
}

func NewDiscoveryHandler(svc Discoverer) *DiscoveryHandler { return &DiscoveryHandler{svc: svc} }

// ListVenues GET /api/venues?lat=&lon=&query=&radius=
func (h *DiscoveryHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := services.DiscoverRequest{Query: q.Get("query")}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			respond.WriteBadRequest(w, "lat must be a number")
			return
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			respond.WriteBadRequest(w, "lon must be a number")
			return
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			respond.WriteBadRequest(w, "lat/lon out of range")
			return
		}
		req.Lat, req.Lon = &lat, &lon
	}

	if radiusStr := q.Get("radius"); radiusStr != "" {
		radius, err := strconv.Atoi(radiusStr)
		if err != nil || radius <= 0 {
			respond.WriteBadRequest(w, "radius must be a positive integer")
			return
		}
		req.RadiusMeters = radius
	}

	venues, err := h.svc.Discover(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"venues": venues,
		"count":  len(venues),
	})
}
