package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vibecheck/vibecheck/internal/api/respond"
)

// PhotoFetcher streams provider photos for the proxy route. The provider
// key is appended upstream only; it never reaches API callers.
type PhotoFetcher interface {
	Photo(ctx context.Context, ref string, maxWidth int) (io.ReadCloser, string, error)
}

// PhotoHandler proxies venue photos from the places provider.
type PhotoHandler struct {
	svc PhotoFetcher
}

// NewPhotoHandler creates a photo proxy handler. svc may be nil when no
// provider is configured.
func NewPhotoHandler(svc PhotoFetcher) *PhotoHandler { return &PhotoHandler{svc: svc} }

// GetPhoto GET /api/photos/{ref}?maxwidth=
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		respond.WriteNotFound(w, "photos are not available")
		return
	}
	ref := mux.Vars(r)["ref"]

	maxWidth := 0
	if mw := r.URL.Query().Get("maxwidth"); mw != "" {
		n, err := strconv.Atoi(mw)
		if err != nil || n <= 0 {
			respond.WriteBadRequest(w, "maxwidth must be a positive integer")
			return
		}
		maxWidth = n
	}

	body, contentType, err := h.svc.Photo(r.Context(), ref, maxWidth)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer func() { _ = body.Close() }()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.Copy(w, body)
}
