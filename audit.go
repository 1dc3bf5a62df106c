package goGate

import (
	"io"

	"github.com/MrEthical07/goGate/internal/audit"
	"go.uber.org/zap"
)

// AuditEvent records one guard decision.
type AuditEvent = audit.Event

// AuditSink receives audit events from the gate's async dispatcher.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers audit events in a channel, mostly for tests.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// ZapSink logs audit events through zap.
type ZapSink = audit.ZapSink

func NewChannelSink(buffer int) *ChannelSink { return audit.NewChannelSink(buffer) }

func NewJSONWriterSink(w io.Writer) *JSONWriterSink { return audit.NewJSONWriterSink(w) }

func NewZapSink(logger *zap.Logger) *ZapSink { return audit.NewZapSink(logger) }

const (
	AuditAuthRedirectLogin    = "auth.redirect_login"
	AuditAuthRedirectHome     = "auth.redirect_home"
	AuditSessionLookupFailed  = "auth.session_lookup_failed"
	AuditDeviceRedirect       = "device.redirect"
	AuditLocaleRouterRedirect = "locale.router_redirect"
	AuditLocaleRedirect       = "locale.redirect"
	AuditLocaleCanonical      = "locale.canonical_redirect"
	AuditPipelineError        = "pipeline.error"
)
