// Package prometheus provides Prometheus collectors for session metrics.
//
// [NewPrometheusExporter] accepts a [sessionkit.Controller] and exposes an
// [http.Handler] that renders all counters and histograms in Prometheus text
// exposition format. Counter names are prefixed sessionkit_*_total; the
// single histogram is sessionkit_restore_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate session state.
package prometheus
