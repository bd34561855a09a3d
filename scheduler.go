package goGate

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// sweepTimeout bounds a single maintenance pass against the persistent
// backend so a hung Redis cannot wedge the scheduler goroutine.
const sweepTimeout = 30 * time.Second

// scheduler runs the gateway's periodic maintenance: expiry sweeps and
// persistent-tier culling on one ticker, stats snapshots to the audit sink
// on another. Nil when disabled by configuration.
type scheduler struct {
	gateway  *Gateway
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newScheduler(g *Gateway) *scheduler {
	if !g.config.Scheduler.Enabled {
		return nil
	}

	s := &scheduler{
		gateway: g,
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *scheduler) run() {
	defer s.wg.Done()

	sweep := time.NewTicker(s.gateway.config.Scheduler.SweepInterval)
	defer sweep.Stop()
	stats := time.NewTicker(s.gateway.config.Scheduler.StatsInterval)
	defer stats.Stop()

	for {
		select {
		case <-sweep.C:
			s.sweep()
		case <-stats.C:
			s.snapshot()
		case <-s.done:
			return
		}
	}
}

func (s *scheduler) sweep() {
	g := s.gateway
	now := g.clock.Now()

	swept := g.cache.SweepFastTier(now)
	idle := g.limiter.Sweep(now)

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	// Backend failures are reported through the cache degradation hook;
	// the sweep itself carries on.
	culled, _ := g.cache.CullBackend(ctx)

	g.metrics.Inc(MetricSweepRun)
	g.emit(ctx, AuditEvent{
		EventType: AuditSweep,
		Success:   true,
		Metadata: map[string]string{
			"fast_swept":     fmt.Sprintf("%d", swept),
			"backend_culled": fmt.Sprintf("%d", culled),
			"idle_windows":   fmt.Sprintf("%d", idle),
		},
	})
}

func (s *scheduler) snapshot() {
	g := s.gateway

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	stats := g.cache.Snapshot(ctx)

	g.metrics.Inc(MetricStatsSnapshot)
	g.emit(ctx, AuditEvent{
		EventType: AuditStatsSnapshot,
		Success:   true,
		Metadata: map[string]string{
			"hits_tier1":       fmt.Sprintf("%d", stats.HitsTier1),
			"hits_tier2":       fmt.Sprintf("%d", stats.HitsTier2),
			"misses":           fmt.Sprintf("%d", stats.Misses),
			"hit_rate_percent": fmt.Sprintf("%.2f", stats.HitRatePercent),
			"fast_items":       fmt.Sprintf("%d", stats.FastItems),
			"persistent_items": fmt.Sprintf("%d", stats.PersistentItems),
		},
	})
}

// Stop halts the maintenance loop and waits for any in-flight pass to
// finish. Safe to call more than once and on a nil scheduler.
func (s *scheduler) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}
