package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/MrEthical07/goGate/internal/keys"
)

const fastShardCount = 16

// fastTier is the bounded in-process tier. The keyspace is split across
// fastShardCount shards, each with its own lock and its own slice of the
// total capacity; capacity eviction removes the oldest-inserted entry of the
// shard that overflowed.
type fastTier struct {
	shards   [fastShardCount]fastShard
	perShard int
}

type fastShard struct {
	mu      sync.Mutex
	entries map[string]fastEntry
	// order lists keys by insertion time, oldest first. A re-set moves the
	// key to the back.
	order []string
}

type fastEntry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time
}

func newFastTier(capacity int) *fastTier {
	perShard := capacity / fastShardCount
	if perShard < 1 {
		perShard = 1
	}

	t := &fastTier{perShard: perShard}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]fastEntry, perShard)
	}
	return t
}

// get returns the live value for key, lazily dropping it if expired.
// The second return distinguishes a hit; evicted reports a lazy expiry drop.
func (t *fastTier) get(key string, now time.Time) (value []byte, ok, evicted bool) {
	s := t.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, false
	}
	if !e.expiresAt.After(now) {
		s.remove(key)
		return nil, false, true
	}
	return e.value, true, false
}

// set inserts or refreshes key. Returns the number of entries evicted to make
// room (0 or 1).
func (t *fastTier) set(key string, value []byte, ttl time.Duration, now time.Time) int {
	s := t.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		s.unorder(key)
	}

	evicted := 0
	for len(s.entries) >= t.perShard && len(s.order) > 0 {
		s.remove(s.order[0])
		evicted++
	}

	s.entries[key] = fastEntry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	s.order = append(s.order, key)
	return evicted
}

func (t *fastTier) delete(key string) bool {
	s := t.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.remove(key)
	return true
}

// deletePrefix removes every entry under the segment-wise prefix. The fast
// tier is small and bounded, so a full scan is acceptable here.
func (t *fastTier) deletePrefix(prefix string) int {
	removed := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for key := range s.entries {
			if keys.MatchesPrefix(key, prefix) {
				s.remove(key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// sweep eagerly drops expired entries so lookups stay cheap.
// Each key's removal happens atomically under its shard lock.
func (t *fastTier) sweep(now time.Time) int {
	removed := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for key, e := range s.entries {
			if !e.expiresAt.After(now) {
				s.remove(key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

func (t *fastTier) len() int {
	total := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

func (t *fastTier) shardFor(key string) *fastShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &t.shards[h.Sum32()%fastShardCount]
}

// remove must be called with the shard lock held.
func (s *fastShard) remove(key string) {
	delete(s.entries, key)
	s.unorder(key)
}

func (s *fastShard) unorder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
