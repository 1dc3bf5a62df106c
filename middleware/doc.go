// Package middleware adapts the goGate guard pipeline to net/http.
//
// # Handlers
//
//   - [Gate] runs every matched page request through [goGate.Gate.Handle] and
//     writes redirects, or forwards to the next handler with accumulated cookies.
//   - [RequireSession] rejects API requests without a signed-in session (401).
//   - [RequestID] attaches an X-Request-ID to the request context.
//
// # Route matcher
//
// [DefaultMatcher] keeps the pipeline away from API routes, framework assets
// and any path containing a dot, mirroring the front-end's matcher.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into pipeline calls. It does NOT make
// routing decisions itself; all decisions are delegated to the Gate.
//
// # What this package must NOT do
//
//   - Parse or create session tokens directly.
//   - Access Redis.
package middleware
