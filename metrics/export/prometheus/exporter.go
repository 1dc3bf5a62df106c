package prometheus

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/internaldefs"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsSource interface {
	MetricsSnapshot() goGate.MetricsSnapshot
	AuditDropped() uint64
	AuditDelivered() uint64
}

type counterDesc struct {
	id   goGate.MetricID
	desc *prom.Desc
}

type histogramDesc struct {
	id   goGate.MetricID
	desc *prom.Desc
}

// PrometheusExporter is a prom.Collector reading gate snapshots at scrape time.
type PrometheusExporter struct {
	source         metricsSource
	registry       *prom.Registry
	counters       []counterDesc
	histograms     []histogramDesc
	auditDropped   *prom.Desc
	auditDelivered *prom.Desc
}

var _ prom.Collector = (*PrometheusExporter)(nil)

// NewPrometheusExporter creates an exporter that reads from gate.
func NewPrometheusExporter(gate *goGate.Gate) *PrometheusExporter {
	return NewPrometheusExporterFromSource(gate)
}

// NewPrometheusExporterFromSource creates an exporter over any snapshot source
// and registers it on a private registry.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	p := &PrometheusExporter{
		source:         source,
		registry:       prom.NewRegistry(),
		counters:       make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:     make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped:   prom.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
		auditDelivered: prom.NewDesc(internaldefs.AuditDeliveredName, internaldefs.AuditDeliveredHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		p.counters = append(p.counters, counterDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		p.histograms = append(p.histograms, histogramDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	p.registry.MustRegister(p)
	return p
}

// Registry returns the private registry the exporter is registered on.
func (p *PrometheusExporter) Registry() *prom.Registry {
	return p.registry
}

// Handler returns an http.Handler that serves the registry.
func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Describe implements prom.Collector.
func (p *PrometheusExporter) Describe(ch chan<- *prom.Desc) {
	for _, c := range p.counters {
		ch <- c.desc
	}
	for _, h := range p.histograms {
		ch <- h.desc
	}
	ch <- p.auditDropped
	ch <- p.auditDelivered
}

// Collect implements prom.Collector.
func (p *PrometheusExporter) Collect(ch chan<- prom.Metric) {
	if p.source == nil {
		return
	}
	snapshot := p.source.MetricsSnapshot()

	for _, c := range p.counters {
		ch <- prom.MustNewConstMetric(c.desc, prom.CounterValue, float64(snapshot.Counters[c.id]))
	}

	for _, h := range p.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[h.id]))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, bound := range internaldefs.HistogramUpperBounds {
			buckets[bound] = cumulative[i]
		}
		// Sum is not tracked by the in-process histogram.
		ch <- prom.MustNewConstHistogram(h.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- prom.MustNewConstMetric(p.auditDropped, prom.CounterValue, float64(p.source.AuditDropped()))
	ch <- prom.MustNewConstMetric(p.auditDelivered, prom.CounterValue, float64(p.source.AuditDelivered()))
}
