package goGate

import (
	"time"

	"github.com/MrEthical07/goGate/internal/audit"
	"go.uber.org/zap"
)

// Observer carries the logging, metrics and audit hooks shared by the
// guards of one Gate. A nil *Observer is valid and records nothing.
type Observer struct {
	logger  *zap.Logger
	metrics *Metrics
	audit   *audit.Dispatcher
}

// NewObserver builds an Observer. Any argument may be nil.
func NewObserver(logger *zap.Logger, metrics *Metrics, dispatcher *audit.Dispatcher) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{logger: logger, metrics: metrics, audit: dispatcher}
}

func (o *Observer) log() *zap.Logger {
	if o == nil || o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}

func (o *Observer) inc(id MetricID) {
	if o == nil {
		return
	}
	o.metrics.Inc(id)
}

func (o *Observer) observe(id MetricID, d time.Duration) {
	if o == nil {
		return
	}
	o.metrics.Observe(id, d)
}

func (o *Observer) emit(rc RequestContext, eventType string, locale Locale, target string, err error) {
	if o == nil || o.audit == nil {
		return
	}
	ctx := rc.Context()
	ev := audit.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		RequestID: RequestIDFromContext(ctx),
		Path:      rc.Path(),
		Locale:    locale.String(),
		Device:    rc.Device().String(),
		Target:    target,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	o.audit.Emit(ctx, ev)
}

func requestFields(rc RequestContext) []zap.Field {
	fields := []zap.Field{zap.String("path", rc.Path())}
	if id := RequestIDFromContext(rc.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}
