package otel

import (
	"context"
	"errors"
	"fmt"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no snapshot source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goGate.MetricsSnapshot
	AuditDropped() uint64
	AuditDelivered() uint64
}

type gateCounter struct {
	id  goGate.MetricID
	ins metric.Int64ObservableCounter
}

// latencyGauges holds one cumulative gauge per bucket plus the sample count.
type latencyGauges struct {
	id      goGate.MetricID
	buckets []metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// auditCounter reads one of the dispatcher totals.
type auditCounter struct {
	ins  metric.Int64ObservableCounter
	read func(metricsSource) uint64
}

// OTelExporter observes gate snapshots on every collection cycle.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	counters  []gateCounter
	latencies []latencyGauges
	audit     []auditCounter

	observables []metric.Observable
}

// NewOTelExporter registers instruments for gate on meter.
func NewOTelExporter(meter metric.Meter, gate *goGate.Gate) (*OTelExporter, error) {
	if gate == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, gate)
}

// NewOTelExporterFromSource registers instruments reading from source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	if err := e.addCounters(meter); err != nil {
		return nil, err
	}
	if err := e.addLatencies(meter); err != nil {
		return nil, err
	}
	if err := e.addAudit(meter); err != nil {
		return nil, err
	}

	reg, err := meter.RegisterCallback(e.observe, e.observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *OTelExporter) addCounters(meter metric.Meter) error {
	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return fmt.Errorf("counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, gateCounter{id: def.ID, ins: ins})
		e.observables = append(e.observables, ins)
	}
	return nil
}

func (e *OTelExporter) addLatencies(meter metric.Meter) error {
	for _, def := range internaldefs.HistogramDefs {
		lg := latencyGauges{id: def.ID}
		for _, suffix := range internaldefs.HistogramBoundSuffix {
			name := def.Name + "_bucket_le_" + suffix
			ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return fmt.Errorf("bucket gauge %s: %w", name, err)
			}
			lg.buckets = append(lg.buckets, ins)
			e.observables = append(e.observables, ins)
		}
		count, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return fmt.Errorf("count gauge %s_count: %w", def.Name, err)
		}
		lg.count = count
		e.observables = append(e.observables, count)
		e.latencies = append(e.latencies, lg)
	}
	return nil
}

func (e *OTelExporter) addAudit(meter metric.Meter) error {
	defs := []struct {
		name, help string
		read       func(metricsSource) uint64
	}{
		{internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, metricsSource.AuditDropped},
		{internaldefs.AuditDeliveredName, internaldefs.AuditDeliveredHelp, metricsSource.AuditDelivered},
	}
	for _, def := range defs {
		ins, err := meter.Int64ObservableCounter(def.name, metric.WithDescription(def.help))
		if err != nil {
			return fmt.Errorf("counter %s: %w", def.name, err)
		}
		e.audit = append(e.audit, auditCounter{ins: ins, read: def.read})
		e.observables = append(e.observables, ins)
	}
	return nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.ins, int64(snap.Counters[c.id]))
	}
	for _, lg := range e.latencies {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[lg.id]))
		for i, g := range lg.buckets {
			o.ObserveInt64(g, int64(cumulative[i]))
		}
		o.ObserveInt64(lg.count, int64(cumulative[len(cumulative)-1]))
	}
	for _, a := range e.audit {
		o.ObserveInt64(a.ins, int64(a.read(e.source)))
	}
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
