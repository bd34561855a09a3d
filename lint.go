package goGate

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// LintSeverity defines a public type used by goGate APIs.
//
// LintSeverity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintSeverity int

const (
	// LintInfo is an exported constant or variable used by the gateway runtime.
	LintInfo LintSeverity = iota
	// LintWarn is an exported constant or variable used by the gateway runtime.
	LintWarn
	// LintHigh is an exported constant or variable used by the gateway runtime.
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning defines a public type used by goGate APIs.
//
// LintWarning instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings defines a public type used by goGate APIs.
//
// LintWarnings instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LintWarnings []LintWarning

// Codes describes the codes operation and its observable behavior.
//
// Codes may return an error when input validation, dependency calls, or security checks fail.
// Codes does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (ws LintWarnings) Codes() []string {
	codes := make([]string, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

// BySeverity describes the byseverity operation and its observable behavior.
//
// BySeverity may return an error when input validation, dependency calls, or security checks fail.
// BySeverity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	out := make(LintWarnings, 0, len(ws))
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError describes the aserror operation and its observable behavior.
//
// AsError may return an error when input validation, dependency calls, or security checks fail.
// AsError does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (ws LintWarnings) AsError(min LintSeverity) error {
	flagged := ws.BySeverity(min)
	if len(flagged) == 0 {
		return nil
	}

	parts := make([]string, 0, len(flagged))
	for _, w := range flagged {
		parts = append(parts, fmt.Sprintf("%s[%s]: %s", w.Code, w.Severity, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint inspects the configuration for settings that validate but are likely
// mistakes. Unlike Validate it never blocks startup; callers decide what to
// do with the warnings (AsError turns a severity band into a hard failure).
//
// Lint may return an error when input validation, dependency calls, or security checks fail.
// Lint does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code string, severity LintSeverity, message string) {
		ws = append(ws, LintWarning{Code: code, Severity: severity, Message: message})
	}

	if !c.Security.ProductionMode {
		if bytes.Equal(c.Vault.Key, []byte(PlaceholderKey)) {
			add("placeholder_key", LintHigh, "vault key is the development placeholder")
		} else if len(c.Vault.Key) < 32 {
			add("key_short", LintHigh, "vault key is shorter than 256 bits")
		}
	}

	if c.Vault.SessionTTL > 24*time.Hour {
		add("session_ttl_long", LintWarn, "session TTL exceeds 24h; stateless tokens cannot be revoked early")
	}
	if c.Vault.Leeway > time.Minute {
		add("leeway_large", LintWarn, "clock-skew leeway above 1m stretches token lifetime")
	}

	if c.RateLimit.Window > 0 {
		perSecond := float64(c.RateLimit.Limit) / c.RateLimit.Window.Seconds()
		if perSecond > 100 {
			add("rate_limit_generous", LintInfo, "admission limit exceeds 100 requests/second per principal")
		}
	}

	if c.Cache.FastTTL > c.Cache.PersistentTTL {
		add("fast_ttl_exceeds_persistent", LintWarn, "fast-tier TTL outlives the persistent copy")
	}
	if c.Cache.PersistentBudget == 0 {
		add("persistent_budget_unbounded", LintWarn, "persistent tier has no item budget; only TTL bounds growth")
	}

	if !c.Scheduler.Enabled {
		add("scheduler_disabled", LintWarn, "no maintenance sweeps; idle rate-limit windows and expired fast-tier entries linger")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "security events are dropped")
	}
	if !c.Metrics.Enabled {
		add("metrics_disabled", LintInfo, "counters are inert")
	}

	return ws
}
