// Package prometheus exposes client metrics to Prometheus.
//
// [Exporter] renders every counter and the request latency histogram in text
// exposition format through [Exporter.Handler]. It also implements
// prometheus.Collector so it can be registered on a caller-owned registry;
// [Exporter.RegistryHandler] does that on a private registry. Counter names
// are gosession_*_total; the single histogram is
// gosession_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate client state.
package prometheus
