// Package audit implements async dispatching of gate decision events.
//
// # Components
//
//   - [Sink] - interface for event consumers (channel, JSON writer, zap logger, no-op).
//   - [Dispatcher] - buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event] - structured record of one guard decision: type, request, locale, target.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; guards in the root package do that.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on request content.
//   - Import goGate or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
