package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// LimitConfig defines a single sliding-window limit.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// LimitExceeded contains information about which limit was exceeded.
type LimitExceeded struct {
	Config LimitConfig
	Count  int64
}

// Limiter checks a client key against a set of window limits. Each window
// is tracked independently so a burst can trip the minute limit without
// consuming the daily one.
type Limiter struct {
	store Store
}

// NewLimiter creates a new sliding-window rate limiter.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow records the request against every limit and reports whether all of
// them still hold. The LimitExceeded return value names the first limit
// that was hit (nil if allowed).
func (l *Limiter) Allow(ctx context.Context, key string, limits []LimitConfig) (bool, *LimitExceeded, error) {
	for _, limit := range limits {
		windowKey := fmt.Sprintf("%s:%d", key, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, windowKey, limit.Window)
		if err != nil {
			return false, nil, err
		}

		if count > limit.Max {
			return false, &LimitExceeded{Config: limit, Count: count}, nil
		}
	}

	return true, nil, nil
}
