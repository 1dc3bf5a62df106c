package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// CounterDef binds a gate counter to its exported name.
type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// HistogramDef binds a gate histogram to its exported name.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goGate.MetricRequests, Name: "gogate_requests_total", Help: "Requests evaluated by the guard pipeline."},
	{ID: goGate.MetricPipelineError, Name: "gogate_pipeline_errors_total", Help: "Requests whose pipeline evaluation failed."},
	{ID: goGate.MetricAuthBypass, Name: "gogate_auth_bypass_total", Help: "Requests on bypass routes that skipped the auth guard."},
	{ID: goGate.MetricAuthRedirectLogin, Name: "gogate_auth_redirect_login_total", Help: "Anonymous requests redirected to sign-in."},
	{ID: goGate.MetricAuthRedirectHome, Name: "gogate_auth_redirect_home_total", Help: "Signed-in requests redirected away from auth pages."},
	{ID: goGate.MetricSessionPresent, Name: "gogate_session_present_total", Help: "Session lookups that found a signed-in user."},
	{ID: goGate.MetricSessionAbsent, Name: "gogate_session_absent_total", Help: "Session lookups that found no session."},
	{ID: goGate.MetricSessionLookupFailure, Name: "gogate_session_lookup_failure_total", Help: "Session lookups that failed and were treated as signed out."},
	{ID: goGate.MetricDeviceRedirect, Name: "gogate_device_redirect_total", Help: "Desktop requests redirected by the device table."},
	{ID: goGate.MetricLocaleRouterRedirect, Name: "gogate_locale_router_redirect_total", Help: "Redirects issued by the locale router."},
	{ID: goGate.MetricLocaleRedirect, Name: "gogate_locale_redirect_total", Help: "Redirects to the resolved locale prefix."},
	{ID: goGate.MetricLocaleCanonicalRedirect, Name: "gogate_locale_canonical_redirect_total", Help: "Redirects that only normalized the path."},
	{ID: goGate.MetricLocaleCookieSet, Name: "gogate_locale_cookie_set_total", Help: "Locale cookies written without a redirect."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricSessionLookupLatency, Name: "gogate_session_lookup_latency_seconds", Help: "Session lookup latency histogram."},
}

// AuditDroppedName is the counter for audit events lost to back-pressure.
const AuditDroppedName = "gogate_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// AuditDeliveredName is the counter for audit events handed to the sink.
const AuditDeliveredName = "gogate_audit_delivered_total"

// AuditDeliveredHelp describes AuditDeliveredName.
const AuditDeliveredHelp = "Audit events delivered to the configured sink."

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth
// bucket is +Inf.
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

// NormalizeBuckets copies raw into a fixed eight-bucket array.
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
