package goGate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGate/cache"
	"github.com/MrEthical07/goGate/ratelimit"
	"github.com/MrEthical07/goGate/vault"
)

const (
	stateUninitialized uint32 = iota
	stateReady
	stateClosed
)

// Gateway is the composed request-gateway runtime: stateless session-token
// authentication, per-principal sliding-window admission, and a two-tier
// read cache, with maintenance running on a background scheduler.
//
// A Gateway owns no domain state. All methods are safe for concurrent use
// once [Builder.Build] returns; after [Gateway.Close] every method fails
// with [ErrGatewayClosed].
type Gateway struct {
	config    Config
	vault     *vault.Manager
	limiter   *ratelimit.Limiter
	cache     *cache.TierCache
	audit     *auditDispatcher
	metrics   *Metrics
	scheduler *scheduler
	clock     Clock

	state atomic.Uint32
}

// Login issues a session token for principalID carrying secret sealed inside
// it. The gateway stores nothing; the token is the only session artifact.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) Login(ctx context.Context, principalID, secret string) (string, time.Time, error) {
	if err := g.ready(); err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := g.vault.Create(principalID, secret, g.config.Vault.SessionTTL)
	if err != nil {
		g.metrics.Inc(MetricLoginFailure)
		g.emit(ctx, AuditEvent{
			EventType:   AuditLogin,
			PrincipalID: principalID,
			Success:     false,
			Error:       err.Error(),
		})
		return "", time.Time{}, fmt.Errorf("login: %w", err)
	}

	g.metrics.Inc(MetricLoginSuccess)
	g.emit(ctx, AuditEvent{
		EventType:   AuditLogin,
		PrincipalID: principalID,
		Success:     true,
	})
	return token, expiresAt, nil
}

// Authenticate verifies a presented session token and recovers the
// principal. Failures classify as [ErrTokenMalformed], [ErrSignatureInvalid]
// or [ErrTokenExpired]; a signature failure additionally raises a
// token_tampered audit event.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) Authenticate(ctx context.Context, token string) (Principal, error) {
	if err := g.ready(); err != nil {
		return Principal{}, err
	}

	start := g.clock.Now()
	principal, err := g.vault.Verify(token)
	g.metrics.Observe(MetricAuthenticateLatency, g.clock.Now().Sub(start))

	if err != nil {
		g.recordAuthFailure(ctx, err)
		return Principal{}, err
	}

	g.metrics.Inc(MetricAuthSuccess)
	return principal, nil
}

func (g *Gateway) recordAuthFailure(ctx context.Context, err error) {
	event := AuditEvent{
		EventType: AuditAuthenticate,
		IP:        clientIPFromContext(ctx),
		Success:   false,
		Error:     err.Error(),
	}

	switch {
	case errors.Is(err, ErrSignatureInvalid):
		g.metrics.Inc(MetricAuthSignatureInvalid)
		event.EventType = AuditTokenTampered
	case errors.Is(err, ErrTokenExpired):
		g.metrics.Inc(MetricAuthExpired)
	default:
		g.metrics.Inc(MetricAuthMalformed)
	}

	g.emit(ctx, event)
}

// Admit runs one rate-limit admission check for principalID. On denial the
// returned error is [ErrRateLimited]; the result still carries Remaining and
// ResetAt so the boundary can populate retry headers.
//
// Admit may return an error when input validation, dependency calls, or security checks fail.
// Admit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) Admit(ctx context.Context, principalID string) (AdmitResult, error) {
	if err := g.ready(); err != nil {
		return AdmitResult{}, err
	}

	result := g.limiter.Allow(principalID)
	if !result.Allowed {
		g.metrics.Inc(MetricAdmitRateLimited)
		g.emit(ctx, AuditEvent{
			EventType:   AuditRateLimited,
			PrincipalID: principalID,
			IP:          clientIPFromContext(ctx),
			Success:     false,
			Metadata: map[string]string{
				"reset_at": result.ResetAt.UTC().Format(time.RFC3339),
			},
		})
		return result, ErrRateLimited
	}

	g.metrics.Inc(MetricAdmitAllowed)
	return result, nil
}

// Do is the cache-aside read path: return the cached value for key, or call
// fetcher on a miss and cache what it returns. Zero TTLs fall back to the
// configured tier defaults. A fetch error is returned wrapped in
// [ErrFetchFailed] and caches nothing; a cache write that already committed
// is never rolled back, even when the caller's ctx is cancelled afterwards.
//
// Do may return an error when input validation, dependency calls, or security checks fail.
// Do does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) Do(ctx context.Context, principal Principal, key string, ttl1, ttl2 time.Duration, fetcher Fetcher) ([]byte, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf("do: fetcher is required")
	}

	value, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	if ok {
		return value, nil
	}

	value, err = fetcher.Fetch(ctx, principal, key)
	if err != nil {
		g.metrics.Inc(MetricFetchFailure)
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if err := g.cache.Set(ctx, key, value, ttl1, ttl2); err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	return value, nil
}

// Invalidate removes an exact key or, for "prefix:*" patterns, every key
// under the colon-delimited prefix from both tiers. It returns how many
// entries were removed.
//
// Invalidate may return an error when input validation, dependency calls, or security checks fail.
// Invalidate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) Invalidate(ctx context.Context, pattern string) (int, error) {
	if err := g.ready(); err != nil {
		return 0, err
	}

	removed, err := g.cache.Invalidate(ctx, pattern)
	if err != nil {
		return removed, fmt.Errorf("invalidate: %w", err)
	}

	g.metrics.Inc(MetricCacheInvalidation)
	g.emit(ctx, AuditEvent{
		EventType: AuditCacheInvalidate,
		Success:   true,
		Metadata: map[string]string{
			"pattern": pattern,
			"removed": fmt.Sprintf("%d", removed),
		},
	})
	return removed, nil
}

// StatsSnapshot describes the statssnapshot operation and its observable behavior.
//
// StatsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// StatsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) StatsSnapshot(ctx context.Context) (CacheStats, error) {
	if err := g.ready(); err != nil {
		return CacheStats{}, err
	}
	return g.cache.Snapshot(ctx), nil
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) MetricsSnapshot() MetricsSnapshot {
	return g.metrics.Snapshot()
}

// Metrics exposes the live metrics registry for exporters.
func (g *Gateway) Metrics() *Metrics {
	return g.metrics
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (g *Gateway) AuditDropped() uint64 {
	return g.audit.Dropped()
}

// Config returns a copy of the active configuration.
func (g *Gateway) Config() Config {
	return cloneConfig(g.config)
}

// Close stops the maintenance scheduler, drains the audit pipeline, and
// releases the persistent backend. Safe to call more than once; only the
// first call does work.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gateway) Close() error {
	if !g.state.CompareAndSwap(stateReady, stateClosed) {
		return nil
	}

	g.scheduler.Stop()
	g.emit(context.Background(), AuditEvent{EventType: AuditShutdown, Success: true})
	g.audit.Close()
	return g.cache.Close()
}

func (g *Gateway) ready() error {
	switch g.state.Load() {
	case stateReady:
		return nil
	case stateClosed:
		return ErrGatewayClosed
	default:
		return ErrGatewayNotReady
	}
}

func (g *Gateway) emit(ctx context.Context, event AuditEvent) {
	if g.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = g.clock.Now()
	}
	g.audit.Emit(ctx, event)
}
