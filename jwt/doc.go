// Package jwt issues and verifies the signed session tokens that back the
// gate's session lookup. HS256 (shared AUTH_SECRET) and Ed25519 are supported.
package jwt
