package goGate

import (
	"bytes"
	"fmt"
	"time"
)

// PlaceholderKey is the development-only secret shipped in the default
// configuration. ProductionMode refuses to start with it.
const PlaceholderKey = "CHANGE_ME_IN_PRODUCTION"

// Config defines a public type used by goGate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Vault     VaultConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	Security  SecurityConfig
}

/*
====================================
VAULT CONFIG
====================================
*/

// VaultConfig defines a public type used by goGate APIs.
//
// VaultConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VaultConfig struct {
	// Key is the server secret. It both signs tokens and derives the seal
	// key for the embedded credential.
	Key        []byte
	SessionTTL time.Duration
	Issuer     string
	// Leeway absorbs clock skew between token issuer and verifier.
	Leeway time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by goGate APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	// Limit is the maximum number of admitted requests per principal per
	// Window.
	Limit  int
	Window time.Duration
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig defines a public type used by goGate APIs.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	FastCapacity int
	FastTTL      time.Duration

	PersistentTTL time.Duration
	// PersistentBudget caps persistent-tier item count, enforced by the
	// maintenance sweep. 0 disables count-based culling.
	PersistentBudget int

	// RedisPrefix namespaces all persistent-tier keys.
	RedisPrefix string
}

/*
====================================
SCHEDULER CONFIG
====================================
*/

// SchedulerConfig defines a public type used by goGate APIs.
//
// SchedulerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SchedulerConfig struct {
	Enabled bool
	// SweepInterval drives expiry sweeps and persistent-tier culling.
	SweepInterval time.Duration
	// StatsInterval drives periodic stats snapshots to the audit sink.
	StatsInterval time.Duration
}

/*
====================================
AUDIT / METRICS / SECURITY CONFIG
====================================
*/

// AuditConfig defines a public type used by goGate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goGate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// SecurityConfig defines a public type used by goGate APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	// ProductionMode hardens startup validation: placeholder or short
	// secrets become fatal configuration errors instead of warnings.
	ProductionMode bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Vault: VaultConfig{
			Key:        []byte(PlaceholderKey),
			SessionTTL: 30 * time.Minute,
			Issuer:     "goGate",
			Leeway:     30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Limit:  60,
			Window: time.Minute,
		},
		Cache: CacheConfig{
			FastCapacity:     1024,
			FastTTL:          15 * time.Minute,
			PersistentTTL:    time.Hour,
			PersistentBudget: 10000,
			RedisPrefix:      "gg",
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			SweepInterval: 10 * time.Minute,
			StatsInterval: 30 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode: false,
		},
	}
}

// DefaultConfig returns the development defaults. They pass Validate only
// while ProductionMode is off.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Vault.Key = cloneBytes(cfg.Vault.Key)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Vault
	if len(c.Vault.Key) == 0 {
		return configErr("Vault Key is required")
	}
	if c.Vault.SessionTTL <= 0 {
		return configErr("Vault SessionTTL must be > 0")
	}
	if c.Vault.Leeway < 0 {
		return configErr("Vault Leeway must be >= 0")
	}

	// Rate limit
	if c.RateLimit.Limit <= 0 {
		return configErr("RateLimit Limit must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return configErr("RateLimit Window must be > 0")
	}

	// Cache
	if c.Cache.FastCapacity <= 0 {
		return configErr("Cache FastCapacity must be > 0")
	}
	if c.Cache.FastTTL <= 0 {
		return configErr("Cache FastTTL must be > 0")
	}
	if c.Cache.PersistentTTL <= 0 {
		return configErr("Cache PersistentTTL must be > 0")
	}
	if c.Cache.PersistentBudget < 0 {
		return configErr("Cache PersistentBudget must be >= 0")
	}

	// Scheduler
	if c.Scheduler.Enabled {
		if c.Scheduler.SweepInterval <= 0 {
			return configErr("Scheduler SweepInterval must be > 0 when scheduler is enabled")
		}
		if c.Scheduler.StatsInterval <= 0 {
			return configErr("Scheduler StatsInterval must be > 0 when scheduler is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return configErr("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	if c.Security.ProductionMode {
		if bytes.Equal(c.Vault.Key, []byte(PlaceholderKey)) {
			return configErr("ProductionMode forbids the placeholder Vault Key")
		}
		if len(c.Vault.Key) < 32 {
			return configErr("ProductionMode requires Vault Key length >= 256 bits")
		}
		if c.Vault.SessionTTL > 24*time.Hour {
			return configErr("ProductionMode requires Vault SessionTTL <= 24h")
		}
	}

	return nil
}

func configErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, msg)
}
