package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrRateLimited is the only limiter error that crosses the API boundary.
	ErrRateLimited = errors.New("rate limit exceeded")

	// Provider faults. ResultFusion absorbs both and degrades to an empty
	// external list; they never surface to API callers.
	ErrProviderUnavailable = errors.New("places provider unavailable")
	ErrProviderBadResponse = errors.New("places provider bad response")

	// ErrCacheUnavailable marks a shared cache backend that is not
	// configured or has failed. Triggers fallback selection, never surfaced.
	ErrCacheUnavailable = errors.New("cache backend unavailable")

	// ErrSlugExhausted means the bounded suffix probe ran out of attempts.
	ErrSlugExhausted = errors.New("slug candidates exhausted")
)
