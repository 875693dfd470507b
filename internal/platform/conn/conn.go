// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package conn provides a process-wide, connect-once handle for backing stores.

Repositories resolve their database handle through a [Source] on every call.
The first successful [Lazy.Get] dials; every later call is a no-op that
returns the same handle, so "connect" may be invoked per request safely.

A failed dial is not cached: the next call dials again. There is no retry
loop inside Get; the caller surfaces the failure.
*/
package conn

import (
	"context"
	"sync"
)

// Source resolves a ready-to-use connection handle.
type Source[T any] interface {
	Get(ctx context.Context) (T, error)
}

// DialFunc opens a new connection handle.
type DialFunc[T any] func(ctx context.Context) (T, error)

// Lazy dials at most once successfully and then reuses the handle.
//
// It is safe for concurrent use. Concurrent first callers block on the same
// dial instead of racing to open several pools.
type Lazy[T any] struct {
	dial DialFunc[T]

	mu        sync.Mutex
	handle    T
	connected bool
}

// NewLazy wraps dial in a connect-once [Lazy] handle.
func NewLazy[T any](dial DialFunc[T]) *Lazy[T] {
	return &Lazy[T]{dial: dial}
}

// Get returns the shared handle, dialing on first use.
func (lazy *Lazy[T]) Get(ctx context.Context) (T, error) {
	lazy.mu.Lock()
	defer lazy.mu.Unlock()

	if lazy.connected {
		return lazy.handle, nil
	}

	handle, err := lazy.dial(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	lazy.handle = handle
	lazy.connected = true
	return handle, nil
}

// Close runs closeFn on the handle if one was established.
func (lazy *Lazy[T]) Close(closeFn func(T)) {
	lazy.mu.Lock()
	defer lazy.mu.Unlock()

	if !lazy.connected {
		return
	}
	closeFn(lazy.handle)

	var zero T
	lazy.handle = zero
	lazy.connected = false
}

// # Fixed Handles

// staticSource serves an already-open handle.
type staticSource[T any] struct {
	handle T
}

// Static returns a [Source] that always yields handle. Useful for tests and
// for stores whose client manages its own connections.
func Static[T any](handle T) Source[T] {
	return staticSource[T]{handle: handle}
}

// Get implements [Source].
func (source staticSource[T]) Get(context.Context) (T, error) {
	return source.handle, nil
}
