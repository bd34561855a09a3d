package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/internal/keys"
)

// ErrInvalidKey is returned for keys or patterns outside the colon-delimited
// ASCII grammar.
var ErrInvalidKey = errors.New("invalid cache key")

// Config defines a public type used by goGate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	FastCapacity int
	FastTTL      time.Duration
	// PersistentTTL is the default tier-2 TTL applied when Set is called
	// with ttl2 == 0.
	PersistentTTL time.Duration
	// PersistentBudget caps the persistent tier's item count; enforced by
	// Cull, not on the write path. <= 0 disables count-based culling.
	PersistentBudget int
	Clock            func() time.Time
	// OnDegraded is invoked, if set, whenever a backend failure forces
	// fast-tier-only operation. It must be cheap and non-blocking.
	OnDegraded func(op string, err error)
}

// TierCache defines a public type used by goGate APIs.
//
// TierCache instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TierCache struct {
	config  Config
	fast    *fastTier
	backend Backend
	clock   func() time.Time
	stats   counters
}

// NewTierCache describes the newtiercache operation and its observable behavior.
//
// NewTierCache may return an error when input validation, dependency calls, or security checks fail.
// NewTierCache does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewTierCache(cfg Config, backend Backend) (*TierCache, error) {
	if cfg.FastCapacity <= 0 {
		return nil, errors.New("fast tier capacity must be > 0")
	}
	if cfg.FastTTL <= 0 {
		return nil, errors.New("fast tier TTL must be > 0")
	}
	if cfg.PersistentTTL <= 0 {
		return nil, errors.New("persistent tier TTL must be > 0")
	}
	if backend == nil {
		return nil, errors.New("tier cache requires a backend")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &TierCache{
		config:  cfg,
		fast:    newFastTier(cfg.FastCapacity),
		backend: backend,
		clock:   cfg.Clock,
	}, nil
}

// Get looks key up fast tier first, then the backend. A backend hit is
// promoted into the fast tier under the fast tier's own TTL. A backend
// failure degrades to a miss without failing the call; ok reports whether a
// value was found.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *TierCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !keys.Valid(key) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	now := c.clock()

	if value, ok, evicted := c.fast.get(key, now); ok {
		c.stats.hitsTier1.Add(1)
		return value, true, nil
	} else if evicted {
		c.stats.evictions.Add(1)
	}

	value, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		c.stats.hitsTier2.Add(1)
		c.stats.promotions.Add(1)
		if evicted := c.fast.set(key, value, c.config.FastTTL, now); evicted > 0 {
			c.stats.evictions.Add(uint64(evicted))
		}
		return value, true, nil
	case errors.Is(err, ErrNotFound):
		c.stats.misses.Add(1)
		return nil, false, nil
	default:
		c.degrade("get", err)
		c.stats.misses.Add(1)
		return nil, false, nil
	}
}

// Set writes key to both tiers. The fast-tier write is published only after
// the backend accepted the value (or degraded), so a reader never observes
// the key in the fast tier alone as a result of this call. ttl1/ttl2 of zero
// fall back to the configured tier defaults.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *TierCache) Set(ctx context.Context, key string, value []byte, ttl1, ttl2 time.Duration) error {
	if !keys.Valid(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if ttl1 <= 0 {
		ttl1 = c.config.FastTTL
	}
	if ttl2 <= 0 {
		ttl2 = c.config.PersistentTTL
	}

	if err := c.backend.Set(ctx, key, value, ttl2); err != nil {
		c.degrade("set", err)
	}

	if evicted := c.fast.set(key, value, ttl1, c.clock()); evicted > 0 {
		c.stats.evictions.Add(uint64(evicted))
	}
	c.stats.sets.Add(1)
	return nil
}

// Invalidate removes the exact key, or every key under a trailing-wildcard
// prefix pattern ("meter:42:*"), from both tiers. Returns how many entries
// were removed across both tiers.
//
// Invalidate may return an error when input validation, dependency calls, or security checks fail.
// Invalidate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *TierCache) Invalidate(ctx context.Context, pattern string) (int, error) {
	if !keys.ValidPattern(pattern) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, pattern)
	}

	removed := 0
	if keys.IsPattern(pattern) {
		prefix := keys.Prefix(pattern)
		removed += c.fast.deletePrefix(prefix)
		n, err := c.backend.DeletePrefix(ctx, prefix)
		removed += n
		if err != nil {
			c.degrade("invalidate", err)
		}
		return removed, nil
	}

	if c.fast.delete(pattern) {
		removed++
	}
	if err := c.backend.Delete(ctx, pattern); err != nil {
		c.degrade("invalidate", err)
	} else {
		removed++
	}
	return removed, nil
}

// SweepFastTier eagerly drops expired fast-tier entries. Called periodically
// by the maintenance scheduler.
//
// SweepFastTier may return an error when input validation, dependency calls, or security checks fail.
// SweepFastTier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *TierCache) SweepFastTier(now time.Time) int {
	removed := c.fast.sweep(now)
	if removed > 0 {
		c.stats.evictions.Add(uint64(removed))
	}
	return removed
}

// CullBackend enforces the persistent tier's size budget, oldest first.
//
// CullBackend may return an error when input validation, dependency calls, or security checks fail.
// CullBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *TierCache) CullBackend(ctx context.Context) (int, error) {
	removed, err := c.backend.Cull(ctx, c.config.PersistentBudget)
	if removed > 0 {
		c.stats.evictions.Add(uint64(removed))
	}
	if err != nil {
		c.degrade("cull", err)
		return removed, err
	}
	return removed, nil
}

// Snapshot returns current statistics. The persistent item count is
// best-effort: -1 when the backend cannot report.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *TierCache) Snapshot(ctx context.Context) Stats {
	s := c.stats.snapshot()
	s.FastItems = c.fast.len()
	if n, err := c.backend.Len(ctx); err == nil {
		s.PersistentItems = n
	} else {
		s.PersistentItems = -1
	}
	return s
}

// Close releases the backend.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *TierCache) Close() error {
	return c.backend.Close()
}

func (c *TierCache) degrade(op string, err error) {
	if c.config.OnDegraded == nil {
		return
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		err = fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	c.config.OnDegraded(op, err)
}
