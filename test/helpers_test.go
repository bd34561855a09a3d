//go:build integration
// +build integration

package test

import (
	"sync"
	"testing"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testClock is a manually advanced clock shared between the gateway and the
// test so fast-tier expiry can be driven in lockstep with miniredis
// FastForward.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newIntegrationGateway(t *testing.T, mutate func(*goGate.Config)) (*goGate.Gateway, *miniredis.Miniredis, *testClock) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := goGate.DefaultConfig()
	cfg.Scheduler.Enabled = false
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	clock := newTestClock()
	gateway, err := goGate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithClock(clock).
		Build()
	if err != nil {
		t.Fatalf("build gateway: %v", err)
	}
	t.Cleanup(func() { _ = gateway.Close() })

	return gateway, mr, clock
}
