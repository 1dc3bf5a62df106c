package goGate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGate/jwt"
)

// DefaultSessionCookie is the cookie carrying the signed session token.
const DefaultSessionCookie = "session_token"

// SessionChecker answers "does this request belong to a signed-in user".
//
// Implementations return ErrNoSessionToken when the request carries no
// credentials at all. Any other error is treated by the auth guard as a
// lookup failure.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context, rc RequestContext) (bool, error)
}

// SessionCheckerFunc adapts a function to SessionChecker.
type SessionCheckerFunc func(ctx context.Context, rc RequestContext) (bool, error)

func (f SessionCheckerFunc) IsAuthenticated(ctx context.Context, rc RequestContext) (bool, error) {
	return f(ctx, rc)
}

// SessionRegistry reports whether a session ID is still live. session.Store
// satisfies it.
type SessionRegistry interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// JWTSessionChecker verifies the session token issued at sign-in.
//
// In strict mode the token's session ID must also be present in Registry,
// which lets sign-out revoke a token before it expires.
type JWTSessionChecker struct {
	Manager    *jwt.Manager
	Registry   SessionRegistry
	CookieName string
	Strict     bool
}

// NewJWTSessionChecker returns a checker reading cookieName (or the
// Authorization bearer header). A nil registry disables strict mode.
func NewJWTSessionChecker(m *jwt.Manager, registry SessionRegistry, cookieName string, strict bool) *JWTSessionChecker {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &JWTSessionChecker{
		Manager:    m,
		Registry:   registry,
		CookieName: cookieName,
		Strict:     strict && registry != nil,
	}
}

func (c *JWTSessionChecker) IsAuthenticated(ctx context.Context, rc RequestContext) (bool, error) {
	token := c.token(rc)
	if token == "" {
		return false, ErrNoSessionToken
	}
	if c.Manager == nil {
		return false, fmt.Errorf("%w: no token manager configured", ErrSessionInvalid)
	}

	claims, err := c.Manager.ParseSession(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	if !c.Strict {
		return true, nil
	}
	if c.Registry == nil {
		return false, fmt.Errorf("%w: strict mode without a session registry", ErrSessionInvalid)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := c.Registry.Exists(ctx, claims.SID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSessionBackendDown, err)
	}
	if !ok {
		return false, ErrSessionRevoked
	}
	return true, nil
}

func (c *JWTSessionChecker) token(rc RequestContext) string {
	if v, ok := rc.Cookie(c.CookieName); ok && v != "" {
		return v
	}
	h := rc.Header("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
