package api

import (
	"errors"
	"net/http"

	"github.com/vibecheck/vibecheck/internal/api/respond"
	"github.com/vibecheck/vibecheck/internal/model"
)

// writeServiceError maps sentinel service errors onto HTTP statuses.
// Rate-limit denials carry extra headers and are handled at the call site.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "not found")
	case errors.Is(err, model.ErrConflict):
		respond.WriteConflict(w, err.Error())
	case errors.Is(err, model.ErrSlugExhausted):
		respond.WriteConflict(w, err.Error())
	case errors.Is(err, model.ErrProviderUnavailable), errors.Is(err, model.ErrProviderBadResponse):
		respond.WriteError(w, http.StatusBadGateway, "places provider unavailable")
	default:
		respond.WriteInternalError(w, "internal error")
	}
}
