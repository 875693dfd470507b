// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit implements fixed-window attempt counters used to throttle
credential guessing on the login endpoint.

Two backends satisfy [Limiter]:

  - [Memory]: per-process counters, used when no Redis URL is configured.
  - [Redis]: INCR/EXPIRE counters shared by every API replica.

Both fail open: an infrastructure error never blocks a legitimate login.
*/
package ratelimit

import (
	"context"
	"time"
)

// DefaultWindow is applied when a caller passes a non-positive window.
const DefaultWindow = time.Minute

// Decision is the outcome of a single [Limiter.Allow] call.
type Decision struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// RetryAfter returns how long the caller should wait before the window resets.
// It never returns less than one second.
func (decision Decision) RetryAfter(now time.Time) time.Duration {
	wait := decision.ResetAt.Sub(now)
	if wait < time.Second {
		return time.Second
	}
	return wait.Round(time.Second)
}

// Limiter counts attempts per key within a fixed window.
type Limiter interface {
	// Allow records one attempt for key and reports whether it is within limit.
	// A non-positive limit disables throttling.
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision

	// Close releases background resources.
	Close() error
}
