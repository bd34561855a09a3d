// Package goGate provides a request-gateway runtime: stateless encrypted
// session tokens, per-principal sliding-window rate limiting, and a two-tier
// read cache (bounded in-memory fast tier over a Redis persistent tier),
// composed behind a single facade with background maintenance.
//
// The package is designed for concurrent server workloads: Gateway methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Gateway], [Builder], [Config],
// and value types (Principal, AdmitResult, CacheStats, MetricsSnapshot).
// The vault, ratelimit, and cache sub-packages are usable standalone; the
// Gateway only composes them. The upstream data source and the HTTP routes
// in front are collaborators: the gateway sees them only as a [Fetcher] and
// as callers of its five operations.
//
// # What this package must NOT do
//
//   - Hold per-session server state. The token is the session; losing the
//     process loses nothing.
//   - Fail a request because the persistent cache tier is down. Backend
//     failures degrade to fast-tier-only and are reported through the audit
//     sink and metrics.
//   - Leak internal error text across the boundary. Rejections translate to
//     the fixed [ErrorEnvelope] table.
//
// # Performance contract
//
// Authenticate is the hot path: pure CPU crypto, no locks, no I/O. Admit
// takes one shard mutex. Fast-tier cache hits take one shard mutex and never
// touch Redis; shard locks are never held across backend I/O.
package goGate
