// Package otel provides OpenTelemetry metric exporter bindings for goGate
// counters, cache stats, and the Authenticate latency histogram.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each
// goGate metric, Int64ObservableGauge per histogram bucket, and observable
// instruments for the cache stats snapshot. A single callback reads
// [goGate.Gateway.MetricsSnapshot] and [goGate.Gateway.StatsSnapshot] on
// each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate gateway state.
package otel
