// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	current time.Time
}

func (clock *fakeClock) now() time.Time { return clock.current }

func newTestMemory(clock *fakeClock) *Memory {
	limiter := NewMemory()
	limiter.now = clock.now
	return limiter
}

/*
TestMemory_AllowWithinLimit verifies the counter denies the attempt after the limit.
*/
func TestMemory_AllowWithinLimit(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	limiter := newTestMemory(clock)
	defer limiter.Close()

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		decision := limiter.Allow(ctx, "ip:10.0.0.1", 3, time.Minute)
		assert.True(t, decision.Allowed, "attempt %d", i)
		assert.Equal(t, i, decision.Count)
	}

	denied := limiter.Allow(ctx, "ip:10.0.0.1", 3, time.Minute)
	assert.False(t, denied.Allowed)
	assert.Equal(t, clock.current.Add(time.Minute), denied.ResetAt)

	// Other keys are unaffected.
	assert.True(t, limiter.Allow(ctx, "ip:10.0.0.2", 3, time.Minute).Allowed)
}

/*
TestMemory_WindowReset verifies a new window starts once the old one elapses.
*/
func TestMemory_WindowReset(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	limiter := newTestMemory(clock)
	defer limiter.Close()

	ctx := context.Background()
	assert.True(t, limiter.Allow(ctx, "k", 1, time.Minute).Allowed)
	assert.False(t, limiter.Allow(ctx, "k", 1, time.Minute).Allowed)

	clock.current = clock.current.Add(time.Minute)
	decision := limiter.Allow(ctx, "k", 1, time.Minute)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Count)
}

/*
TestMemory_Disabled verifies that a non-positive limit never throttles.
*/
func TestMemory_Disabled(t *testing.T) {
	limiter := NewMemory()
	defer limiter.Close()

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow(context.Background(), "k", 0, time.Minute).Allowed)
	}
}

/*
TestMemory_Sweep verifies expired windows are dropped.
*/
func TestMemory_Sweep(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_700_000_000, 0)}
	limiter := newTestMemory(clock)
	defer limiter.Close()

	limiter.Allow(context.Background(), "old", 5, time.Second)
	limiter.Allow(context.Background(), "fresh", 5, time.Hour)

	clock.current = clock.current.Add(2 * time.Second)
	limiter.sweep()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.entries, "old")
	assert.Contains(t, limiter.entries, "fresh")
}

/*
TestMemory_CloseIdempotent verifies Close may be called repeatedly.
*/
func TestMemory_CloseIdempotent(t *testing.T) {
	limiter := NewMemory()
	assert.NoError(t, limiter.Close())
	assert.NoError(t, limiter.Close())
}

func TestDecision_RetryAfter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.Equal(t, 30*time.Second, Decision{ResetAt: now.Add(30 * time.Second)}.RetryAfter(now))
	assert.Equal(t, time.Second, Decision{ResetAt: now.Add(100 * time.Millisecond)}.RetryAfter(now))
	assert.Equal(t, time.Second, Decision{ResetAt: now.Add(-time.Minute)}.RetryAfter(now))
}
