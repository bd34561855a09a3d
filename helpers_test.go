package goGate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goGate/cache"
	"github.com/MrEthical07/goGate/internal/keys"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
	createdAt time.Time
}

// memBackend is an in-memory cache.Backend for gateway tests. The fail flag
// simulates a persistent-tier outage.
type memBackend struct {
	mu      sync.Mutex
	entries map[string]memEntry
	clock   func() time.Time
	fail    bool
	seq     int
}

func newMemBackend(clock func() time.Time) *memBackend {
	return &memBackend{
		entries: make(map[string]memEntry),
		clock:   clock,
	}
}

func (m *memBackend) setFailing(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *memBackend) errIfFailing() error {
	if m.fail {
		return errors.New("backend down")
	}
	return nil
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errIfFailing(); err != nil {
		return nil, err
	}

	entry, ok := m.entries[key]
	if !ok || m.clock().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, cache.ErrNotFound
	}
	return entry.value, nil
}

func (m *memBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errIfFailing(); err != nil {
		return err
	}

	// Sequence-spaced creation times keep the cull ordering deterministic.
	m.seq++
	m.entries[key] = memEntry{
		value:     value,
		expiresAt: m.clock().Add(ttl),
		createdAt: m.clock().Add(time.Duration(m.seq)),
	}
	return nil
}

func (m *memBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errIfFailing(); err != nil {
		return err
	}
	delete(m.entries, key)
	return nil
}

func (m *memBackend) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errIfFailing(); err != nil {
		return 0, err
	}

	removed := 0
	for key := range m.entries {
		if keys.MatchesPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memBackend) Cull(_ context.Context, budget int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errIfFailing(); err != nil {
		return 0, err
	}

	removed := 0
	now := m.clock()
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}

	if budget <= 0 || len(m.entries) <= budget {
		return removed, nil
	}

	type aged struct {
		key       string
		createdAt time.Time
	}
	all := make([]aged, 0, len(m.entries))
	for key, entry := range m.entries {
		all = append(all, aged{key, entry.createdAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].createdAt.Before(all[j].createdAt) })

	for _, a := range all[:len(all)-budget] {
		delete(m.entries, a.key)
		removed++
	}
	return removed, nil
}

func (m *memBackend) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errIfFailing(); err != nil {
		return 0, err
	}
	return len(m.entries), nil
}

func (m *memBackend) Close() error { return nil }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Scheduler.Enabled = false
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestGateway(t *testing.T, cfg Config, clock Clock, sink AuditSink) (*Gateway, *memBackend) {
	t.Helper()

	if clock == nil {
		clock = systemClock{}
	}
	backend := newMemBackend(clock.Now)

	gateway, err := New().
		WithConfig(cfg).
		WithBackend(backend).
		WithClock(clock).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build gateway: %v", err)
	}
	t.Cleanup(func() { _ = gateway.Close() })

	return gateway, backend
}
