// Package session provides the Redis-backed session registry used by the
// gate's strict session checks and by the sign-in handlers.
//
// # Binary encoding
//
// Sessions are stored as a compact versioned binary blob. Version 1 carried
// identity and timestamps only; version 2 appends the locale chosen at
// sign-in. Older blobs decode with empty new fields.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Session] model. It
// does NOT parse session tokens or make routing decisions; those belong to
// the gate and its guards.
//
// # What this package must NOT do
//
//   - Import goGate or jwt (no upward imports).
//   - Store credentials or raw tokens in [Session] fields.
package session
