package goGate

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Recognized environment keys. Durations accept either a Go duration string
// ("90s", "15m") or a bare integer meaning seconds.
const (
	EnvSecretKey        = "GOGATE_SECRET_KEY"
	EnvSessionTTL       = "GOGATE_SESSION_TTL"
	EnvRateLimit        = "GOGATE_RATE_LIMIT"
	EnvRateWindow       = "GOGATE_RATE_WINDOW"
	EnvFastCapacity     = "GOGATE_CACHE_FAST_CAPACITY"
	EnvFastTTL          = "GOGATE_CACHE_FAST_TTL"
	EnvPersistentTTL    = "GOGATE_CACHE_PERSISTENT_TTL"
	EnvPersistentBudget = "GOGATE_CACHE_PERSISTENT_BUDGET"
	EnvRedisPrefix      = "GOGATE_CACHE_REDIS_PREFIX"
	EnvSchedulerEnabled = "GOGATE_SCHEDULER_ENABLED"
	EnvSweepInterval    = "GOGATE_SWEEP_INTERVAL"
	EnvStatsInterval    = "GOGATE_STATS_INTERVAL"
	EnvProductionMode   = "GOGATE_PRODUCTION_MODE"
)

// ConfigFromEnv builds a Config from the process environment on top of the
// development defaults. A .env file in the working directory is loaded first
// when present; real environment variables win over .env entries.
//
// ConfigFromEnv may return an error when input validation, dependency calls, or security checks fail.
// ConfigFromEnv does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if v := os.Getenv(EnvSecretKey); v != "" {
		cfg.Vault.Key = []byte(v)
	}

	var err error
	if cfg.Vault.SessionTTL, err = envDuration(EnvSessionTTL, cfg.Vault.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Limit, err = envInt(EnvRateLimit, cfg.RateLimit.Limit); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Window, err = envDuration(EnvRateWindow, cfg.RateLimit.Window); err != nil {
		return Config{}, err
	}
	if cfg.Cache.FastCapacity, err = envInt(EnvFastCapacity, cfg.Cache.FastCapacity); err != nil {
		return Config{}, err
	}
	if cfg.Cache.FastTTL, err = envDuration(EnvFastTTL, cfg.Cache.FastTTL); err != nil {
		return Config{}, err
	}
	if cfg.Cache.PersistentTTL, err = envDuration(EnvPersistentTTL, cfg.Cache.PersistentTTL); err != nil {
		return Config{}, err
	}
	if cfg.Cache.PersistentBudget, err = envInt(EnvPersistentBudget, cfg.Cache.PersistentBudget); err != nil {
		return Config{}, err
	}
	if v := os.Getenv(EnvRedisPrefix); v != "" {
		cfg.Cache.RedisPrefix = v
	}
	if cfg.Scheduler.Enabled, err = envBool(EnvSchedulerEnabled, cfg.Scheduler.Enabled); err != nil {
		return Config{}, err
	}
	if cfg.Scheduler.SweepInterval, err = envDuration(EnvSweepInterval, cfg.Scheduler.SweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.Scheduler.StatsInterval, err = envDuration(EnvStatsInterval, cfg.Scheduler.StatsInterval); err != nil {
		return Config{}, err
	}
	if cfg.Security.ProductionMode, err = envBool(EnvProductionMode, cfg.Security.ProductionMode); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, configErr(fmt.Sprintf("%s must be an integer, got %q", key, v))
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, configErr(fmt.Sprintf("%s must be a boolean, got %q", key, v))
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, configErr(fmt.Sprintf("%s must be a duration or integer seconds, got %q", key, v))
	}
	return d, nil
}
