package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// CounterDef defines a public type used by goGate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goGate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// CacheCounterDef maps a monotonically increasing field of the cache stats
// snapshot to an exported counter.
type CacheCounterDef struct {
	Name  string
	Help  string
	Value func(goGate.CacheStats) uint64
}

// CacheGaugeDef maps a current-value field of the cache stats snapshot to an
// exported gauge.
type CacheGaugeDef struct {
	Name  string
	Help  string
	Value func(goGate.CacheStats) float64
}

// CounterDefs is an exported constant or variable used by the gateway runtime.
var CounterDefs = []CounterDef{
	{ID: goGate.MetricLoginSuccess, Name: "gogate_login_success_total", Help: "Issued session tokens."},
	{ID: goGate.MetricLoginFailure, Name: "gogate_login_failure_total", Help: "Failed token issuance attempts."},
	{ID: goGate.MetricAuthSuccess, Name: "gogate_auth_success_total", Help: "Successful token verifications."},
	{ID: goGate.MetricAuthMalformed, Name: "gogate_auth_malformed_total", Help: "Verifications rejected as malformed."},
	{ID: goGate.MetricAuthSignatureInvalid, Name: "gogate_auth_signature_invalid_total", Help: "Verifications rejected for invalid signature."},
	{ID: goGate.MetricAuthExpired, Name: "gogate_auth_expired_total", Help: "Verifications rejected as expired."},
	{ID: goGate.MetricAdmitAllowed, Name: "gogate_admit_allowed_total", Help: "Admission checks that allowed the request."},
	{ID: goGate.MetricAdmitRateLimited, Name: "gogate_admit_rate_limited_total", Help: "Admission checks that denied the request."},
	{ID: goGate.MetricCacheInvalidation, Name: "gogate_cache_invalidation_total", Help: "Cache invalidation operations."},
	{ID: goGate.MetricCacheDegraded, Name: "gogate_cache_degraded_total", Help: "Backend failures absorbed by fast-tier-only degradation."},
	{ID: goGate.MetricFetchFailure, Name: "gogate_fetch_failure_total", Help: "Upstream fetch failures on cache misses."},
	{ID: goGate.MetricSweepRun, Name: "gogate_sweep_run_total", Help: "Completed maintenance sweep passes."},
	{ID: goGate.MetricStatsSnapshot, Name: "gogate_stats_snapshot_total", Help: "Emitted periodic stats snapshots."},
}

// HistogramDefs is an exported constant or variable used by the gateway runtime.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricAuthenticateLatency, Name: "gogate_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// CacheCounterDefs is an exported constant or variable used by the gateway runtime.
var CacheCounterDefs = []CacheCounterDef{
	{Name: "gogate_cache_hits_tier1_total", Help: "Fast-tier cache hits.", Value: func(s goGate.CacheStats) uint64 { return s.HitsTier1 }},
	{Name: "gogate_cache_hits_tier2_total", Help: "Persistent-tier cache hits.", Value: func(s goGate.CacheStats) uint64 { return s.HitsTier2 }},
	{Name: "gogate_cache_misses_total", Help: "Cache misses across both tiers.", Value: func(s goGate.CacheStats) uint64 { return s.Misses }},
	{Name: "gogate_cache_promotions_total", Help: "Persistent-tier hits promoted into the fast tier.", Value: func(s goGate.CacheStats) uint64 { return s.Promotions }},
	{Name: "gogate_cache_evictions_total", Help: "Fast-tier capacity evictions.", Value: func(s goGate.CacheStats) uint64 { return s.Evictions }},
	{Name: "gogate_cache_sets_total", Help: "Cache writes.", Value: func(s goGate.CacheStats) uint64 { return s.Sets }},
}

// CacheGaugeDefs is an exported constant or variable used by the gateway runtime.
var CacheGaugeDefs = []CacheGaugeDef{
	{Name: "gogate_cache_fast_items", Help: "Current fast-tier item count.", Value: func(s goGate.CacheStats) float64 { return float64(s.FastItems) }},
	{Name: "gogate_cache_persistent_items", Help: "Current persistent-tier item count, -1 when the backend is unreachable.", Value: func(s goGate.CacheStats) float64 { return float64(s.PersistentItems) }},
	{Name: "gogate_cache_hit_rate_percent", Help: "Lifetime cache hit rate.", Value: func(s goGate.CacheStats) float64 { return s.HitRatePercent }},
}

// HistogramBounds is an exported constant or variable used by the gateway runtime.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the gateway runtime.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
