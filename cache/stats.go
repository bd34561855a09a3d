package cache

import "sync/atomic"

// Stats is a point-in-time snapshot of cache activity. Counters are
// monotonically increasing for the lifetime of the TierCache; item counts are
// current values. PersistentItems is -1 when the backend could not report.
type Stats struct {
	HitsTier1  uint64 `json:"hits_tier1"`
	HitsTier2  uint64 `json:"hits_tier2"`
	Misses     uint64 `json:"misses"`
	Promotions uint64 `json:"promotions"`
	Evictions  uint64 `json:"evictions"`
	Sets       uint64 `json:"sets"`

	FastItems       int `json:"fast_items"`
	PersistentItems int `json:"persistent_items"`

	TotalRequests  uint64  `json:"total_requests"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

type counters struct {
	hitsTier1  atomic.Uint64
	hitsTier2  atomic.Uint64
	misses     atomic.Uint64
	promotions atomic.Uint64
	evictions  atomic.Uint64
	sets       atomic.Uint64
}

func (c *counters) snapshot() Stats {
	s := Stats{
		HitsTier1:  c.hitsTier1.Load(),
		HitsTier2:  c.hitsTier2.Load(),
		Misses:     c.misses.Load(),
		Promotions: c.promotions.Load(),
		Evictions:  c.evictions.Load(),
		Sets:       c.sets.Load(),
	}

	s.TotalRequests = s.HitsTier1 + s.HitsTier2 + s.Misses
	if s.TotalRequests > 0 {
		hits := float64(s.HitsTier1 + s.HitsTier2)
		s.HitRatePercent = hits / float64(s.TotalRequests) * 100
	}
	return s
}
