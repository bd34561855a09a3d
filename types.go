package goGate

import (
	"context"
	"time"

	"github.com/MrEthical07/goGate/cache"
	"github.com/MrEthical07/goGate/ratelimit"
	"github.com/MrEthical07/goGate/vault"
)

// Principal is the authenticated identity recovered from a session token.
type Principal = vault.Principal

// AdmitResult is the outcome of a single rate-limit admission check,
// returned by [Gateway.Admit]. Remaining and ResetAt are intended for
// X-RateLimit response headers.
type AdmitResult = ratelimit.Result

// CacheStats is a point-in-time snapshot of two-tier cache activity,
// returned by [Gateway.StatsSnapshot].
type CacheStats = cache.Stats

// Backend is the persistent cache tier contract. [Builder.WithRedis] wires
// the stock Redis implementation; hosts may provide their own via
// [Builder.WithBackend].
type Backend = cache.Backend

// Fetcher computes the value for a cache key on a miss. It is the gateway's
// only view of the upstream data source: implementations wrap whatever
// portal, database, or API actually owns the data.
type Fetcher interface {
	Fetch(ctx context.Context, principal Principal, key string) ([]byte, error)
}

// FetcherFunc adapts a function to the [Fetcher] interface.
type FetcherFunc func(ctx context.Context, principal Principal, key string) ([]byte, error)

// Fetch describes the fetch operation and its observable behavior.
//
// Fetch may return an error when input validation, dependency calls, or security checks fail.
// Fetch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f FetcherFunc) Fetch(ctx context.Context, principal Principal, key string) ([]byte, error) {
	return f(ctx, principal, key)
}

// Clock abstracts time for deterministic tests. The default implementation
// delegates to [time.Now].
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to the [Clock] interface.
type ClockFunc func() time.Time

// Now describes the now operation and its observable behavior.
//
// Now may return an error when input validation, dependency calls, or security checks fail.
// Now does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f ClockFunc) Now() time.Time { return f() }
