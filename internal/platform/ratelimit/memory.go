// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is how often expired windows are dropped from memory.
const sweepInterval = 5 * time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// Memory is an in-process [Limiter].
type Memory struct {
	mu      sync.Mutex
	entries map[string]window
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewMemory starts a [Memory] limiter with its background sweeper.
func NewMemory() *Memory {
	limiter := &Memory{
		entries: make(map[string]window),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go limiter.sweepLoop()
	return limiter
}

// Allow implements [Limiter].
func (limiter *Memory) Allow(_ context.Context, key string, limit int, span time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if span <= 0 {
		span = DefaultWindow
	}

	now := limiter.now()
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	current, ok := limiter.entries[key]
	if !ok || !now.Before(current.resetAt) {
		current = window{count: 1, resetAt: now.Add(span)}
		limiter.entries[key] = current
		return Decision{Allowed: true, Count: 1, ResetAt: current.resetAt}
	}

	if current.count >= limit {
		return Decision{Allowed: false, Count: current.count, ResetAt: current.resetAt}
	}

	current.count++
	limiter.entries[key] = current
	return Decision{Allowed: true, Count: current.count, ResetAt: current.resetAt}
}

// Close stops the sweeper. It is safe to call more than once.
func (limiter *Memory) Close() error {
	limiter.once.Do(func() { close(limiter.stop) })
	return nil
}

func (limiter *Memory) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.sweep()
		case <-limiter.stop:
			return
		}
	}
}

func (limiter *Memory) sweep() {
	now := limiter.now()
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for key, current := range limiter.entries {
		if !now.Before(current.resetAt) {
			delete(limiter.entries, key)
		}
	}
}
