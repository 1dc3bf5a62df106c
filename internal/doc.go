// Package internal holds helpers that are private to goGate.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - rate: Redis-backed fixed-window sign-in throttle
//
// Nothing here may appear in the public goGate API.
package internal
