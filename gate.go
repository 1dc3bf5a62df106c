package goGate

import (
	"context"
	"errors"
	"sync"

	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SignInLimiter throttles failed sign-ins.
type SignInLimiter interface {
	Check(ctx context.Context, userName, ip string) error
	RecordFailure(ctx context.Context, userName, ip string) error
	Reset(ctx context.Context, userName string) error
}

// Gate runs the composed guard pipeline. It is safe for concurrent use.
type Gate struct {
	config   Config
	pipeline Handler

	logger   *zap.Logger
	metrics  *Metrics
	audit    *audit.Dispatcher
	observer *Observer

	tokens    *jwt.Manager
	sessions  *session.Store
	limiter   SignInLimiter
	redis     redis.UniversalClient
	ownsRedis bool

	closeOnce sync.Once
}

// Handle evaluates rc against the pipeline. Errors are counted, logged and
// returned unchanged so the host can apply its default error handling.
func (g *Gate) Handle(rc RequestContext) (*Response, error) {
	g.metrics.Inc(MetricRequests)

	resp, err := g.pipeline(rc)
	if err == nil && resp == nil {
		err = ErrNilHandler
	}
	if err != nil {
		g.metrics.Inc(MetricPipelineError)
		g.observer.emit(rc, AuditPipelineError, 0, "", err)
		g.logger.Error("gate: pipeline failed", append(requestFields(rc), zap.Error(err))...)
		return nil, err
	}
	return resp, nil
}

// Handler exposes the gate as a pipeline Handler.
func (g *Gate) Handler() Handler {
	return g.Handle
}

// Config returns a copy of the effective configuration.
func (g *Gate) Config() Config {
	return cloneConfig(g.config)
}

// Logger returns the gate's logger.
func (g *Gate) Logger() *zap.Logger {
	return g.logger
}

// Metrics returns the live counters for exporters.
func (g *Gate) Metrics() *Metrics {
	return g.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	return g.metrics.Snapshot()
}

// AuditDropped returns the number of audit events lost to back-pressure.
func (g *Gate) AuditDropped() uint64 {
	return g.audit.Dropped()
}

// AuditDelivered returns the number of audit events handed to the sink.
func (g *Gate) AuditDelivered() uint64 {
	return g.audit.Delivered()
}

// Tokens returns the session token manager used by the sign-in handlers.
func (g *Gate) Tokens() *jwt.Manager {
	return g.tokens
}

// Sessions returns the Redis session registry, or nil when none is configured.
func (g *Gate) Sessions() *session.Store {
	return g.sessions
}

// SignInLimiter returns the sign-in throttle, or nil when throttling is off
// or Redis is not configured.
func (g *Gate) SignInLimiter() SignInLimiter {
	return g.limiter
}

// Ping checks the session registry. Without Redis it always succeeds.
func (g *Gate) Ping(ctx context.Context) error {
	if g.sessions == nil {
		return nil
	}
	_, err := g.sessions.Ping(ctx)
	return err
}

// Close drains the audit dispatcher and releases a Redis client the gate
// dialed itself. It is safe to call more than once.
func (g *Gate) Close() error {
	var err error
	g.closeOnce.Do(func() {
		g.audit.Close()
		err = g.closeRedis()
	})
	return err
}

func (g *Gate) closeRedis() error {
	if !g.ownsRedis || g.redis == nil {
		return nil
	}
	if err := g.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
