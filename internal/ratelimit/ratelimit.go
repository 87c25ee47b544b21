// Package ratelimit bounds how many requests a client key may make per window.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the wait before the key regains capacity.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if d := r.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Limiter records a hit for key and reports whether it is within the limit.
type Limiter interface {
	Allow(ctx context.Context, key string) Result
}
