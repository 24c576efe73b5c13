//go:build !integration

package redis

import (
	"context"
	"sync"
	"testing"
	"time"
)

type counterClient struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
}

func newCounterClient() *counterClient {
	return &counterClient{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (c *counterClient) Ping(ctx context.Context) error { return nil }
func (c *counterClient) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}
func (c *counterClient) Get(ctx context.Context, key string) (string, error) { return "", Nil }
func (c *counterClient) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}
func (c *counterClient) Expire(ctx context.Context, key string, exp time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[key] = exp
	return nil
}
func (c *counterClient) Del(ctx context.Context, keys ...string) error { return nil }
func (c *counterClient) Close() error                                  { return nil }

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	cli := newCounterClient()
	rl := NewRateLimiter(cli)
	key := OrderCreateKey("u1")

	for i := 1; i <= 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d should be allowed: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil || ok {
		t.Fatalf("fourth call should be rejected: ok=%v err=%v", ok, err)
	}
	if cli.expires[key] != time.Minute {
		t.Errorf("window not set on first hit: %v", cli.expires[key])
	}

	ok, _ = rl.Allow(ctx, OrderCreateKey("u2"), 3, time.Minute)
	if !ok {
		t.Error("limits must be per user")
	}
}
