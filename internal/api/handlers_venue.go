package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vibecheck/vibecheck/internal/api/respond"
	"github.com/vibecheck/vibecheck/internal/api/validate"
	"github.com/vibecheck/vibecheck/internal/services"
)

// VenueCatalog is the catalog surface consumed by the venue handler.
type VenueCatalog interface {
	GetBySlug(ctx context.Context, slug string) (*services.VenueDetail, error)
}

// VenueHandler serves the public venue detail endpoint.
type VenueHandler struct {
	svc VenueCatalog
}

func NewVenueHandler(svc VenueCatalog) *VenueHandler { return &VenueHandler{svc: svc} }

// GetVenue GET /api/venues/{slug}
func (h *VenueHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if err := validate.Slug(slug); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	detail, err := h.svc.GetBySlug(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, detail)
}
