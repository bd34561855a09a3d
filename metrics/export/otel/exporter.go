package otel

import (
	"context"
	"errors"
	"fmt"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goGate.MetricsSnapshot
	StatsSnapshot(ctx context.Context) (goGate.CacheStats, error)
	AuditDropped() uint64
}

type observedCounter struct {
	id         goGate.MetricID
	instrument metric.Int64ObservableCounter
}

type observedHistogram struct {
	id      goGate.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

type observedCacheCounter struct {
	value      func(goGate.CacheStats) uint64
	instrument metric.Int64ObservableCounter
}

type observedCacheGauge struct {
	value      func(goGate.CacheStats) float64
	instrument metric.Float64ObservableGauge
}

type OTelExporter struct {
	source        metricsSource
	registration  metric.Registration
	counters      []observedCounter
	histograms    []observedHistogram
	cacheCounters []observedCacheCounter
	cacheGauges   []observedCacheGauge
	auditDropped  metric.Int64ObservableCounter
}

func NewOTelExporter(meter metric.Meter, gateway *goGate.Gateway) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, gateway)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:        source,
		counters:      make([]observedCounter, 0, len(internaldefs.CounterDefs)),
		histograms:    make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
		cacheCounters: make([]observedCacheCounter, 0, len(internaldefs.CacheCounterDefs)),
		cacheGauges:   make([]observedCacheGauge, 0, len(internaldefs.CacheGaugeDefs)),
	}

	observables := make([]metric.Observable, 0,
		len(internaldefs.CounterDefs)+
			len(internaldefs.HistogramDefs)*9+
			len(internaldefs.CacheCounterDefs)+
			len(internaldefs.CacheGaugeDefs)+1)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h := observedHistogram{id: def.ID}
		for i := 0; i < len(internaldefs.HistogramBoundSuffix); i++ {
			name := def.Name + "_bucket_le_" + internaldefs.HistogramBoundSuffix[i]
			ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return nil, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
			}
			h.buckets[i] = ins
			observables = append(observables, ins)
		}
		countName := def.Name + "_count"
		countIns, err := meter.Int64ObservableGauge(countName, metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return nil, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
		}
		h.count = countIns
		observables = append(observables, countIns)
		exporter.histograms = append(exporter.histograms, h)
	}

	for _, def := range internaldefs.CacheCounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create cache counter %s: %w", def.Name, err)
		}
		exporter.cacheCounters = append(exporter.cacheCounters, observedCacheCounter{value: def.Value, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.CacheGaugeDefs {
		ins, err := meter.Float64ObservableGauge(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create cache gauge %s: %w", def.Name, err)
		}
		exporter.cacheGauges = append(exporter.cacheGauges, observedCacheGauge{value: def.Value, instrument: ins})
		observables = append(observables, ins)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		"gogate_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	registration, err := meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		for _, h := range exporter.histograms {
			nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[h.id])
			cumulative := internaldefs.CumulativeBuckets(nonCumulative)
			for i := 0; i < len(cumulative); i++ {
				observer.ObserveInt64(h.buckets[i], int64(cumulative[i]))
			}
			observer.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
		}
		// Cache stats may touch the backend; skip them when unavailable
		// rather than failing the collection cycle.
		if stats, err := exporter.source.StatsSnapshot(ctx); err == nil {
			for _, c := range exporter.cacheCounters {
				observer.ObserveInt64(c.instrument, int64(c.value(stats)))
			}
			for _, g := range exporter.cacheGauges {
				observer.ObserveFloat64(g.instrument, g.value(stats))
			}
		}
		observer.ObserveInt64(exporter.auditDropped, int64(exporter.source.AuditDropped()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
