// Package ratelimit enforces the per-reporter submission quota: a fixed
// window per identity key, counted in the shared cache backend with a
// deterministic process-local fallback.
package ratelimit

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibecheck/vibecheck/internal/cache"
	"github.com/vibecheck/vibecheck/internal/model"
)

const keyPrefix = "ratelimit:"

// Key builds the limiter identity for a submission. Device id is preferred
// over the caller address.
func Key(deviceID, ip string) string {
	if deviceID != "" {
		return "device:" + deviceID
	}
	return "ip:" + ip
}

// Limiter counts submissions per key within a fixed window. Every Check
// consumes a slot; there is no side-effect-free peek.
//
// Failure policy: the first error from the shared backend permanently
// switches the limiter to its process-local counters for the rest of the
// process lifetime. Connectivity loss never fails open or closed per call.
type Limiter struct {
	shared   cache.Store // nil when no shared backend is configured
	fallback *cache.Memory
	window   time.Duration
	max      int
	degraded atomic.Bool
	log      zerolog.Logger
}

// New builds a Limiter over the shared store. Pass shared == nil to run on
// local counters from the start.
func New(shared cache.Store, window time.Duration, max int, log zerolog.Logger) *Limiter {
	return &Limiter{
		shared:   shared,
		fallback: cache.NewMemory(),
		window:   window,
		max:      max,
		log:      log,
	}
}

// Check consumes one slot for key and reports the decision. The only error
// returned is the caller's own context cancellation.
func (l *Limiter) Check(ctx context.Context, key string) (model.RateLimitResult, error) {
	if l.shared != nil && !l.degraded.Load() {
		n, ttl, err := l.shared.Incr(ctx, keyPrefix+key, l.window)
		if err == nil {
			return l.result(n, ttl), nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.RateLimitResult{}, err
		}
		l.degraded.Store(true)
		l.log.Warn().Err(err).Msg("rate limit backend failed; switching to process-local counters")
	}

	n, ttl, err := l.fallback.Incr(ctx, keyPrefix+key, l.window)
	if err != nil {
		// Memory counters cannot fail; keep the decision deterministic anyway.
		return model.RateLimitResult{}, err
	}
	return l.result(n, ttl), nil
}

func (l *Limiter) result(count int64, ttl time.Duration) model.RateLimitResult {
	if ttl <= 0 {
		ttl = l.window
	}
	res := model.RateLimitResult{
		Allowed: count <= int64(l.max),
		ResetAt: time.Now().Add(ttl),
	}
	if remaining := int64(l.max) - count; remaining > 0 {
		res.Remaining = int(remaining)
	}
	return res
}
