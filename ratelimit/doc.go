// Package ratelimit admits or denies requests per principal over a rolling
// time window.
//
// # Window semantics
//
// The limiter keeps an exact sliding log: every admitted request's timestamp
// is retained until it ages past the window, so at most Limit requests are
// admitted in any trailing interval of length Window, with no burst allowance
// at window boundaries. The cost is O(Limit) memory per active principal;
// that is the documented tradeoff for exact admission and a precise ResetAt.
//
// Windows live in a sharded map keyed by principal id. A check only takes its
// own shard's lock, so unrelated principals never contend, and checks for the
// same principal are linearizable under that lock.
//
// # What this package must NOT do
//
//   - Coordinate across processes (each instance owns its own windows).
//   - Grow without bound (idle windows are reclaimed by [Limiter.Sweep]).
//   - Perform I/O or block beyond its shard lock.
package ratelimit
