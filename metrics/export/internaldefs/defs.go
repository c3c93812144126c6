package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef names one client counter.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef names one client histogram.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricRequestSuccess, Name: "gosession_request_success_total", Help: "Requests that completed with a 2xx status."},
	{ID: goSession.MetricRequestFailure, Name: "gosession_request_failure_total", Help: "Requests that failed for any reason."},
	{ID: goSession.MetricRequestUnauthorized, Name: "gosession_request_unauthorized_total", Help: "Requests answered with 401."},
	{ID: goSession.MetricRequestNetworkError, Name: "gosession_request_network_error_total", Help: "Requests that failed before a response arrived."},
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed logins."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Logouts."},
	{ID: goSession.MetricLogoutRemoteFailure, Name: "gosession_logout_remote_failure_total", Help: "Logouts whose server call failed."},
	{ID: goSession.MetricSessionCleared, Name: "gosession_session_cleared_total", Help: "Transitions from signed in to signed out."},
	{ID: goSession.MetricPersistWrite, Name: "gosession_persist_write_total", Help: "Store snapshots written to durable storage."},
	{ID: goSession.MetricPersistFailure, Name: "gosession_persist_failure_total", Help: "Store snapshots that could not be written."},
	{ID: goSession.MetricNavigationAllowed, Name: "gosession_navigation_allowed_total", Help: "Navigations allowed by the guard."},
	{ID: goSession.MetricNavigationRedirected, Name: "gosession_navigation_redirected_total", Help: "Navigations redirected by the guard or catch-all."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRequestLatency, Name: "gosession_request_latency_seconds", Help: "Request latency histogram."},
}

// EventsDroppedName is the counter of events lost to dispatcher backpressure.
const EventsDroppedName = "gosession_events_dropped_total"

// EventsDroppedHelp describes EventsDroppedName.
const EventsDroppedHelp = "Dropped events due to dispatcher backpressure."

// HistogramBounds are the bucket upper bounds in exposition form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramUpperBounds are the finite bucket bounds in seconds.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket in instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero filling
// missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
