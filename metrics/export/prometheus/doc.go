// Package prometheus exposes gate metrics through a client_golang collector.
//
// [NewPrometheusExporter] wraps a [goGate.Gate] in a collector registered on a
// private registry and serves it with promhttp. Counter names are prefixed
// gogate_*_total; the single histogram is gogate_session_lookup_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers mount the Handler
//     or register the collector themselves.
//   - Mutate gate state.
package prometheus
