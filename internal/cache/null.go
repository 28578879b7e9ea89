package cache

import (
	"context"
	"time"

	"github.com/vibecheck/vibecheck/internal/model"
)

// Null is the degraded cache used when no shared backend is configured.
// Reads always miss and writes are discarded, so many server instances
// never accumulate unbounded local state for provider payloads.
type Null struct{}

func NewNull() Null { return Null{} }

func (Null) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Null) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Null) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, model.ErrCacheUnavailable
}
