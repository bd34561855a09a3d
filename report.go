package goGate

import "time"

type RuntimeReport struct {
	ProductionMode   bool
	SessionTTL       time.Duration
	Leeway           time.Duration
	RateLimit        int
	RateWindow       time.Duration
	FastCapacity     int
	FastTTL          time.Duration
	PersistentTTL    time.Duration
	PersistentBudget int
	SchedulerActive  bool
	SweepInterval    time.Duration
	AuditActive      bool
	MetricsActive    bool
	LatencyActive    bool
}

// Report summarizes the active runtime posture for operators and tests.
// It reads only configuration, never live counters.
func (g *Gateway) Report() RuntimeReport {
	if g == nil {
		return RuntimeReport{}
	}

	return RuntimeReport{
		ProductionMode:   g.config.Security.ProductionMode,
		SessionTTL:       g.config.Vault.SessionTTL,
		Leeway:           g.config.Vault.Leeway,
		RateLimit:        g.config.RateLimit.Limit,
		RateWindow:       g.config.RateLimit.Window,
		FastCapacity:     g.config.Cache.FastCapacity,
		FastTTL:          g.config.Cache.FastTTL,
		PersistentTTL:    g.config.Cache.PersistentTTL,
		PersistentBudget: g.config.Cache.PersistentBudget,
		SchedulerActive:  g.scheduler != nil,
		SweepInterval:    g.config.Scheduler.SweepInterval,
		AuditActive:      g.audit != nil,
		MetricsActive:    g.metrics.Enabled(),
		LatencyActive:    g.metrics.LatencyEnabled(),
	}
}
