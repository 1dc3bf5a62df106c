package goGate

import (
	"errors"

	"github.com/MrEthical07/goGate/internal/rate"
)

var (
	// ErrInvalidConfig is returned by Config.Validate; the concrete problem is wrapped.
	ErrInvalidConfig = errors.New("invalid gate configuration")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrNoSessionToken is returned by session checkers when the request carries no token.
	ErrNoSessionToken = errors.New("no session token")
	// ErrSessionInvalid is returned when a session token fails verification.
	ErrSessionInvalid = errors.New("invalid session token")
	// ErrSessionRevoked is returned in strict mode when the session is no longer registered.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrSessionBackendDown is returned in strict mode when the session registry is unreachable.
	ErrSessionBackendDown = errors.New("session backend unavailable")
	// ErrLocaleRouter wraps failures of the external locale router.
	ErrLocaleRouter = errors.New("locale router failed")
	// ErrNilHandler is returned when a middleware produced a nil response without an error.
	ErrNilHandler = errors.New("handler returned nil response")
	// ErrRateLimited is returned by a SignInLimiter once the attempt budget is used up.
	ErrRateLimited = rate.ErrRateLimited
)
