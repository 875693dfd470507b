// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/schemely/internal/platform/ratelimit"
)

// scriptedRedis answers INCR, EXPIRE and TTL from memory through a client hook,
// so no server is dialled.
type scriptedRedis struct {
	mu       sync.Mutex
	now      time.Time
	counters map[string]int64
	expiry   map[string]time.Time
	execErr  error
	seen     [][]string
}

func newScriptedRedis() *scriptedRedis {
	return &scriptedRedis{
		now:      time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		counters: make(map[string]int64),
		expiry:   make(map[string]time.Time),
	}
}

func (fake *scriptedRedis) client(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	client.AddHook(fake)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func (fake *scriptedRedis) DialHook(redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("scripted redis: dial not allowed")
	}
}

func (fake *scriptedRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		err := fmt.Errorf("scripted redis: unexpected command outside a transaction: %s", cmd.Name())
		cmd.SetErr(err)
		return err
	}
}

func (fake *scriptedRedis) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		fake.mu.Lock()
		defer fake.mu.Unlock()

		if fake.execErr != nil {
			for _, cmd := range cmds {
				cmd.SetErr(fake.execErr)
			}
			return fake.execErr
		}

		var names []string
		for _, cmd := range cmds {
			names = append(names, strings.ToLower(cmd.Name()))
			fake.apply(cmd)
		}
		fake.seen = append(fake.seen, names)
		return nil
	}
}

func (fake *scriptedRedis) apply(cmd redis.Cmder) {
	args := cmd.Args()
	key := ""
	if len(args) > 1 {
		key, _ = args[1].(string)
	}
	fake.evict(key)

	switch strings.ToLower(cmd.Name()) {
	case "incr":
		fake.counters[key]++
		cmd.(*redis.IntCmd).SetVal(fake.counters[key])
	case "expire":
		seconds, _ := args[2].(int64)
		_, exists := fake.counters[key]
		_, hasTTL := fake.expiry[key]
		onlyIfMissing := len(args) > 3 && strings.EqualFold(fmt.Sprint(args[3]), "nx")
		if !exists || (onlyIfMissing && hasTTL) {
			cmd.(*redis.BoolCmd).SetVal(false)
			return
		}
		fake.expiry[key] = fake.now.Add(time.Duration(seconds) * time.Second)
		cmd.(*redis.BoolCmd).SetVal(true)
	case "ttl":
		switch deadline, hasTTL := fake.expiry[key]; {
		case fake.counters[key] == 0:
			cmd.(*redis.DurationCmd).SetVal(-2)
		case !hasTTL:
			cmd.(*redis.DurationCmd).SetVal(-1)
		default:
			cmd.(*redis.DurationCmd).SetVal(deadline.Sub(fake.now))
		}
	}
}

func (fake *scriptedRedis) evict(key string) {
	if deadline, ok := fake.expiry[key]; ok && !fake.now.Before(deadline) {
		delete(fake.expiry, key)
		delete(fake.counters, key)
	}
}

func (fake *scriptedRedis) advance(d time.Duration) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.now = fake.now.Add(d)
}

/*
TestRedis_CountsWithinWindow verifies the counter, its expiry and the single
MULTI/EXEC round trip.
*/
func TestRedis_CountsWithinWindow(t *testing.T) {
	fake := newScriptedRedis()
	limiter := ratelimit.NewRedis(fake.client(t), "test:", nil)

	first := limiter.Allow(context.Background(), "ip:10.0.0.1", 2, time.Minute)
	second := limiter.Allow(context.Background(), "ip:10.0.0.1", 2, time.Minute)
	third := limiter.Allow(context.Background(), "ip:10.0.0.1", 2, time.Minute)

	assert.True(t, first.Allowed)
	assert.True(t, second.Allowed)
	assert.False(t, third.Allowed)
	assert.Equal(t, 3, third.Count)
	assert.WithinDuration(t, time.Now().Add(time.Minute), third.ResetAt, 2*time.Second)

	require.Len(t, fake.seen, 3)
	assert.Equal(t, []string{"multi", "incr", "expire", "ttl", "exec"}, fake.seen[0])

	fake.advance(time.Minute)
	assert.True(t, limiter.Allow(context.Background(), "ip:10.0.0.1", 2, time.Minute).Allowed)
}

/*
TestRedis_ArmsMissingExpiry verifies that a counter left without a TTL is given
one on the next attempt, so the client is not locked out forever.
*/
func TestRedis_ArmsMissingExpiry(t *testing.T) {
	fake := newScriptedRedis()
	fake.counters["test:ip:10.0.0.9"] = 40

	limiter := ratelimit.NewRedis(fake.client(t), "test:", nil)

	blocked := limiter.Allow(context.Background(), "ip:10.0.0.9", 3, time.Minute)
	assert.False(t, blocked.Allowed)

	fake.mu.Lock()
	deadline, armed := fake.expiry["test:ip:10.0.0.9"]
	fake.mu.Unlock()
	require.True(t, armed)
	assert.Equal(t, fake.now.Add(time.Minute), deadline)

	fake.advance(time.Minute)
	released := limiter.Allow(context.Background(), "ip:10.0.0.9", 3, time.Minute)
	assert.True(t, released.Allowed)
	assert.Equal(t, 1, released.Count)
}

/*
TestRedis_KeepsExistingExpiry verifies later hits do not extend the window.
*/
func TestRedis_KeepsExistingExpiry(t *testing.T) {
	fake := newScriptedRedis()
	limiter := ratelimit.NewRedis(fake.client(t), "test:", nil)

	limiter.Allow(context.Background(), "k", 5, time.Minute)
	fake.advance(40 * time.Second)
	decision := limiter.Allow(context.Background(), "k", 5, time.Minute)

	assert.Equal(t, 2, decision.Count)
	assert.WithinDuration(t, time.Now().Add(20*time.Second), decision.ResetAt, 2*time.Second)
}

/*
TestRedis_TransactionErrorFailsOpen verifies a failed MULTI/EXEC allows the attempt.
*/
func TestRedis_TransactionErrorFailsOpen(t *testing.T) {
	fake := newScriptedRedis()
	fake.execErr = context.DeadlineExceeded
	limiter := ratelimit.NewRedis(fake.client(t), "test:", nil)

	for range 5 {
		assert.True(t, limiter.Allow(context.Background(), "k", 1, time.Minute).Allowed)
	}
}
