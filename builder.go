package goGate

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goGate/cache"
	"github.com/MrEthical07/goGate/ratelimit"
	"github.com/MrEthical07/goGate/vault"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goGate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	backend   cache.Backend
	auditSink AuditSink
	clock     Clock

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis wires the stock Redis persistent-tier backend on client, using
// the configured key prefix. Ignored when WithBackend was also called.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithBackend supplies a custom persistent-tier implementation in place of
// the stock Redis one.
//
// WithBackend may return an error when input validation, dependency calls, or security checks fail.
// WithBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBackend(backend cache.Backend) *Builder {
	b.backend = backend
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock injects a test clock. The default delegates to time.Now.
//
// WithClock may return an error when input validation, dependency calls, or security checks fail.
// WithClock does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Gateway, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = systemClock{}
	}

	backend := b.backend
	if backend == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or backend required")
		}
		rb, err := cache.NewRedisBackend(b.redis, cfg.Cache.RedisPrefix)
		if err != nil {
			return nil, err
		}
		backend = rb
	}

	gateway := &Gateway{
		config: cfg,
		clock:  clock,
	}

	gateway.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	gateway.metrics = NewMetrics(cfg.Metrics)

	vm, err := vault.NewManager(vault.Config{
		Key:        cfg.Vault.Key,
		SessionTTL: cfg.Vault.SessionTTL,
		Issuer:     cfg.Vault.Issuer,
		Leeway:     cfg.Vault.Leeway,
		Clock:      clock.Now,
	})
	if err != nil {
		gateway.audit.Close()
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	gateway.vault = vm

	limiter, err := ratelimit.New(ratelimit.Config{
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
		Clock:  clock.Now,
	})
	if err != nil {
		gateway.audit.Close()
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	gateway.limiter = limiter

	tc, err := cache.NewTierCache(cache.Config{
		FastCapacity:     cfg.Cache.FastCapacity,
		FastTTL:          cfg.Cache.FastTTL,
		PersistentTTL:    cfg.Cache.PersistentTTL,
		PersistentBudget: cfg.Cache.PersistentBudget,
		Clock:            clock.Now,
		OnDegraded: func(op string, err error) {
			gateway.metrics.Inc(MetricCacheDegraded)
			gateway.emit(context.Background(), AuditEvent{
				EventType: AuditCacheDegraded,
				Success:   false,
				Error:     err.Error(),
				Metadata:  map[string]string{"op": op},
			})
		},
	}, backend)
	if err != nil {
		gateway.audit.Close()
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	gateway.cache = tc

	gateway.state.Store(stateReady)
	gateway.scheduler = newScheduler(gateway)

	b.built = true

	return gateway, nil
}
