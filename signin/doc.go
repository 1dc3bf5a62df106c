// Package signin serves the credential sign-in, sign-out and session
// endpoints under /api/auth.
//
// Sign-in verifies credentials through a [Verifier], issues a signed session
// token in an HttpOnly cookie and, when a registry is configured, records the
// session in Redis so that sign-out can revoke it. The routes sit outside the
// page pipeline's route matcher.
//
// [StubVerifier] accepts any non-empty credentials and returns a fixed user.
// Real deployments supply their own Verifier.
package signin
