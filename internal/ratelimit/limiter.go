package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"radius-admin/internal/util"
)

const keyPrefix = "rate_limit:"

// CounterStore increments the fixed-window counter behind key and
// returns the count for the current window, including this attempt. A
// new window starts (count resets to 1) whenever the previous one is
// older than the window length.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter enforces a fixed-window attempt limit per identifier. The
// decision rule: an attempt is allowed while the window count, counting
// the attempt itself, does not exceed the maximum.
type Limiter struct {
	store  CounterStore
	window time.Duration
	max    int64
}

func NewLimiter(store CounterStore, window time.Duration, maxAttempts int) *Limiter {
	return &Limiter{
		store:  store,
		window: window,
		max:    int64(maxAttempts),
	}
}

// Allow registers one attempt for identifier and reports whether it is
// within the limit. A store failure denies the attempt: when the
// limiter cannot count, it fails closed.
func (l *Limiter) Allow(ctx context.Context, identifier string) bool {
	count, err := l.store.Incr(ctx, keyPrefix+identifier, l.window)
	if err != nil {
		util.Error("Rate limit store unavailable, denying attempt",
			zap.String("identifier", identifier),
			zap.Error(err))
		return false
	}
	return count <= l.max
}
