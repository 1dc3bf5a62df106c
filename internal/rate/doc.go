// Package rate implements the Redis-backed sign-in attempt limiter.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys:
//   - <prefix>:rl:u:<userName> - failed sign-ins per user name
//   - <prefix>:rl:ip:<ip>      - failed sign-ins per client IP
//
// # What this package must NOT do
//
//   - Decide HTTP status codes (the sign-in handler maps ErrRateLimited).
//   - Be imported outside the goGate module.
package rate
