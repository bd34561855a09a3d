package goGate

import (
	"bytes"
	"testing"
	"time"
)

func TestLintDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	codes := cfg.Lint().Codes()

	// Development defaults ship the placeholder key and leave audit and
	// metrics off; all three should be flagged.
	for _, want := range []string{"placeholder_key", "audit_disabled", "metrics_disabled"} {
		if !containsCode(codes, want) {
			t.Errorf("default config missing %q warning, got %v", want, codes)
		}
	}
	if containsCode(codes, "scheduler_disabled") {
		t.Error("scheduler is on by default; should not warn")
	}
}

func TestLintHardenedConfigIsQuiet(t *testing.T) {
	cfg := defaultConfig()
	cfg.Vault.Key = bytes.Repeat([]byte("k"), 32)
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true

	if ws := cfg.Lint(); len(ws) != 0 {
		t.Errorf("hardened config should lint clean, got %v", ws.Codes())
	}
}

func TestLintShortKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Vault.Key = []byte("short")
	if !containsCode(cfg.Lint().Codes(), "key_short") {
		t.Error("expected key_short warning")
	}
}

func TestLintProductionModeSkipsKeyChecks(t *testing.T) {
	// In production the same conditions are Validate failures; Lint stays
	// silent rather than double-reporting.
	cfg := defaultConfig()
	cfg.Security.ProductionMode = true
	codes := cfg.Lint().Codes()
	if containsCode(codes, "placeholder_key") || containsCode(codes, "key_short") {
		t.Errorf("production key checks belong to Validate, got %v", codes)
	}
}

func TestLintLongSessionTTL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Vault.SessionTTL = 48 * time.Hour
	if !containsCode(cfg.Lint().Codes(), "session_ttl_long") {
		t.Error("expected session_ttl_long warning")
	}
}

func TestLintLargeLeeway(t *testing.T) {
	cfg := defaultConfig()
	cfg.Vault.Leeway = 90 * time.Second
	if !containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("expected leeway_large warning")
	}
}

func TestLintGenerousRateLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.RateLimit.Limit = 10000
	cfg.RateLimit.Window = time.Second
	if !containsCode(cfg.Lint().Codes(), "rate_limit_generous") {
		t.Error("expected rate_limit_generous warning")
	}
}

func TestLintFastTTLExceedsPersistent(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.FastTTL = 2 * time.Hour
	cfg.Cache.PersistentTTL = time.Hour
	if !containsCode(cfg.Lint().Codes(), "fast_ttl_exceeds_persistent") {
		t.Error("expected fast_ttl_exceeds_persistent warning")
	}
}

func TestLintUnboundedBudget(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.PersistentBudget = 0
	if !containsCode(cfg.Lint().Codes(), "persistent_budget_unbounded") {
		t.Error("expected persistent_budget_unbounded warning")
	}
}

func TestLintSchedulerDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scheduler.Enabled = false
	if !containsCode(cfg.Lint().Codes(), "scheduler_disabled") {
		t.Error("expected scheduler_disabled warning")
	}
}

func TestLintBySeverity(t *testing.T) {
	cfg := defaultConfig()
	high := cfg.Lint().BySeverity(LintHigh)
	if len(high) == 0 {
		t.Fatal("placeholder key should produce a HIGH warning")
	}
	for _, w := range high {
		if w.Severity < LintHigh {
			t.Errorf("BySeverity(LintHigh) returned %s warning %q", w.Severity, w.Code)
		}
	}
}

func TestLintAsError(t *testing.T) {
	cfg := defaultConfig()
	cfg.Vault.Key = bytes.Repeat([]byte("k"), 32)

	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Errorf("no HIGH warnings expected: %v", err)
	}

	cfg.Vault.Key = []byte(PlaceholderKey)
	if err := cfg.Lint().AsError(LintHigh); err == nil {
		t.Error("expected AsError(LintHigh) failure for placeholder key")
	}
}

func TestGatewayReport(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	gateway, _ := newTestGateway(t, cfg, nil, NewChannelSink(4))

	report := gateway.Report()
	if report.SchedulerActive {
		t.Error("scheduler disabled in test config")
	}
	if !report.AuditActive || !report.MetricsActive {
		t.Errorf("report = %+v", report)
	}
	if report.RateLimit != cfg.RateLimit.Limit || report.SessionTTL != cfg.Vault.SessionTTL {
		t.Errorf("report does not mirror config: %+v", report)
	}
}

// helpers

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
