// Package prometheus provides Prometheus collectors for goGate metrics.
//
// [NewPrometheusExporter] accepts a [goGate.Gateway] and exposes an [http.Handler]
// that renders all goGate counters, the cache stats snapshot, and the single
// Authenticate latency histogram in Prometheus text exposition format.
// Counter names are prefixed gogate_*_total; the histogram is
// gogate_authenticate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate gateway state.
package prometheus
