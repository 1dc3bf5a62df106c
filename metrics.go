package goGate

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a gate counter or histogram.
type MetricID uint16

const (
	// MetricRequests counts requests evaluated by the pipeline.
	MetricRequests MetricID = iota
	// MetricPipelineError counts requests that ended in an error.
	MetricPipelineError
	// MetricAuthBypass counts requests that skipped the auth guard.
	MetricAuthBypass
	// MetricAuthRedirectLogin counts anonymous requests sent to sign-in.
	MetricAuthRedirectLogin
	// MetricAuthRedirectHome counts signed-in requests sent away from auth pages.
	MetricAuthRedirectHome
	// MetricSessionPresent counts successful session lookups.
	MetricSessionPresent
	// MetricSessionAbsent counts lookups that found no session.
	MetricSessionAbsent
	// MetricSessionLookupFailure counts lookups that failed and were treated as absent.
	MetricSessionLookupFailure
	// MetricDeviceRedirect counts device table matches.
	MetricDeviceRedirect
	// MetricLocaleRouterRedirect counts redirects issued by the locale router.
	MetricLocaleRouterRedirect
	// MetricLocaleRedirect counts redirects to the resolved locale prefix.
	MetricLocaleRedirect
	// MetricLocaleCanonicalRedirect counts redirects that only normalized the path.
	MetricLocaleCanonicalRedirect
	// MetricLocaleCookieSet counts locale cookies written without a redirect.
	MetricLocaleCookieSet
	// MetricSessionLookupLatency is the session lookup latency histogram.
	MetricSessionLookupLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free gate counters. A nil or disabled Metrics is a no-op.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the latency histogram for id. Only
// MetricSessionLookupLatency carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricSessionLookupLatency {
		return
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricSessionLookupLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricSessionLookupLatency].buckets[i])
		}
		s.Histograms[MetricSessionLookupLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
