// Package otel binds client metrics to OpenTelemetry instruments.
//
// [New] registers an Int64ObservableCounter per counter and an
// Int64ObservableGauge per latency bucket. A single callback reads the
// source snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
