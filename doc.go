// Package goGate provides a request gate for localized, authenticated web
// front-ends: an ordered pipeline of guards (auth, device, locale) composed
// once at startup and evaluated for every page request.
//
// The package is designed for concurrent server workloads: a [Gate] built by
// [Builder.Build] is immutable and safe to call from multiple goroutines.
// Each request operates only on its own [RequestContext] and a freshly
// constructed [Response].
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Gate], [Builder], [Config], the
// guard factories ([WithAuth], [WithDeviceOnly], [WithI18n]), the composer
// ([Chain]) and value types ([Locale], [DeviceClass], [Response]). HTTP
// translation lives in the middleware package; token parsing lives in jwt;
// Redis access lives in session.
//
// # What this package must NOT do
//
//   - Write to an http.ResponseWriter (the middleware package owns HTTP I/O).
//   - Mutate a RequestContext in place; a modified view is a clone.
//   - Impose its own timeouts on the session lookup collaborator.
//   - Import any sub-package that re-imports goGate (no import cycles).
package goGate
