package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by [Backend.Get] for an absent or expired key.
	ErrNotFound = errors.New("cache entry not found")
	// ErrBackendUnavailable classifies persistent-tier I/O failures. The
	// TierCache recovers from it locally; it is surfaced only through the
	// OnDegraded hook and logs, never to the request.
	ErrBackendUnavailable = errors.New("cache backend unavailable")
)

// Backend is the minimal contract the gateway needs from a persistent tier.
// The concrete storage engine is a collaborator supplied by the host;
// [RedisBackend] is the implementation shipped with goGate.
//
// Implementations must be safe for concurrent use and must honor ctx
// cancellation: a slow store may fail a single backend call, never block the
// caller indefinitely.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key under the segment-wise colon prefix and
	// reports how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	// Cull evicts oldest-inserted entries until at most budget remain.
	Cull(ctx context.Context, budget int) (int, error)
	Len(ctx context.Context) (int, error)
	Close() error
}
