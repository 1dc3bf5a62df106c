// Package otel provides OpenTelemetry metric bindings for gate counters and
// the session lookup histogram.
//
// [NewOTelExporter] registers an Int64ObservableCounter per gate counter and
// an Int64ObservableGauge per histogram bucket. A single callback reads
// [goGate.Gate.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate gate state.
package otel
