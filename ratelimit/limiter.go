package ratelimit

import (
	"errors"
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 32

// Config defines a public type used by goGate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Limit  int
	Window time.Duration
	Clock  func() time.Time
}

// Result is the outcome of a single admission check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest request in the window falls out of range.
	// On denial this is the earliest moment a retry can succeed.
	ResetAt time.Time
}

// Limiter defines a public type used by goGate APIs.
//
// Limiter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Limiter struct {
	config Config
	clock  func() time.Time
	shards [shardCount]shard
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	// stamps holds admitted request times in ascending order, never older
	// than now-Window after pruning.
	stamps   []time.Time
	lastSeen time.Time
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) (*Limiter, error) {
	if cfg.Limit <= 0 {
		return nil, errors.New("rate limit must be > 0")
	}
	if cfg.Window <= 0 {
		return nil, errors.New("rate window must be > 0")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	l := &Limiter{config: cfg, clock: cfg.Clock}
	for i := range l.shards {
		l.shards[i].windows = make(map[string]*window)
	}
	return l, nil
}

// Allow runs one admission check for principalID. The window record is
// created lazily on first check and mutated on every check, admitted or not.
//
// Allow may return an error when input validation, dependency calls, or security checks fail.
// Allow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *Limiter) Allow(principalID string) Result {
	now := l.clock()
	cutoff := now.Add(-l.config.Window)

	s := l.shardFor(principalID)
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[principalID]
	if !ok {
		w = &window{stamps: make([]time.Time, 0, l.config.Limit)}
		s.windows[principalID] = w
	}
	w.lastSeen = now
	w.prune(cutoff)

	if len(w.stamps) >= l.config.Limit {
		return Result{
			Allowed:   false,
			Limit:     l.config.Limit,
			Remaining: 0,
			ResetAt:   w.stamps[0].Add(l.config.Window),
		}
	}

	w.stamps = append(w.stamps, now)
	return Result{
		Allowed:   true,
		Limit:     l.config.Limit,
		Remaining: l.config.Limit - len(w.stamps),
		ResetAt:   w.stamps[0].Add(l.config.Window),
	}
}

// Sweep removes windows idle for longer than the configured window.
// Returns the number of windows removed.
//
// Sweep may return an error when input validation, dependency calls, or security checks fail.
// Sweep does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *Limiter) Sweep(now time.Time) int {
	cutoff := now.Add(-l.config.Window)
	removed := 0

	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for id, w := range s.windows {
			if w.lastSeen.Before(cutoff) {
				delete(s.windows, id)
				removed++
			}
		}
		s.mu.Unlock()
	}

	return removed
}

// Len reports the number of tracked principal windows.
//
// Len may return an error when input validation, dependency calls, or security checks fail.
// Len does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *Limiter) Len() int {
	total := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		total += len(s.windows)
		s.mu.Unlock()
	}
	return total
}

func (l *Limiter) shardFor(principalID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(principalID))
	return &l.shards[h.Sum32()%shardCount]
}

// prune drops stamps at or before cutoff, keeping order.
func (w *window) prune(cutoff time.Time) {
	drop := 0
	for drop < len(w.stamps) && !w.stamps[drop].After(cutoff) {
		drop++
	}
	if drop > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[drop:]...)
	}
}
