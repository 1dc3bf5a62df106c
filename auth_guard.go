package goGate

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AuthOptions configures the auth guard's static route classification.
type AuthOptions struct {
	// BypassPrefixes skip the guard entirely; matched against the
	// locale-stripped path before any session lookup.
	BypassPrefixes []string
	// AuthPageMarkers classify a path as an auth page by substring match.
	AuthPageMarkers []string
	// HomePath is where signed-in users on auth pages are sent.
	HomePath string
	// LoginPath is where anonymous users on protected pages are sent.
	LoginPath string
	// LocaleCookie names the locale cookie used to prefix redirect targets.
	LocaleCookie string
}

// DefaultAuthOptions mirrors the front-end's route constants.
func DefaultAuthOptions() AuthOptions {
	return AuthOptions{
		BypassPrefixes:  []string{"/sample_menu"},
		AuthPageMarkers: []string{"/login", "/test"},
		HomePath:        "/home",
		LoginPath:       "/login",
		LocaleCookie:    DefaultLocaleCookie,
	}
}

// IsAuthPage reports whether path is a sign-in style route.
func (o AuthOptions) IsAuthPage(path string) bool {
	for _, marker := range o.AuthPageMarkers {
		if marker != "" && strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// IsBypassed reports whether path is on the bypass list.
func (o AuthOptions) IsBypassed(path string) bool {
	p := StripLocalePrefix(path)
	for _, prefix := range o.BypassPrefixes {
		if prefix == "" {
			continue
		}
		if p == prefix || strings.HasPrefix(p, strings.TrimRight(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// WithAuth returns the auth guard. Signed-in users on auth pages go home,
// anonymous users on protected pages go to sign-in, everything else
// continues. A failed session lookup counts as no session.
func WithAuth(checker SessionChecker, opts AuthOptions, obs *Observer) Middleware {
	if opts.LocaleCookie == "" {
		opts.LocaleCookie = DefaultLocaleCookie
	}
	return func(next Handler) Handler {
		return func(rc RequestContext) (*Response, error) {
			path := rc.Path()
			if opts.IsBypassed(path) {
				obs.inc(MetricAuthBypass)
				return next(rc)
			}

			cookie, hasCookie := rc.Cookie(opts.LocaleCookie)
			locale := ResolveLocale(cookie, hasCookie, path)

			loggedIn := lookupSession(checker, rc, obs)
			onAuthPage := opts.IsAuthPage(path)

			switch {
			case loggedIn && onAuthPage:
				target := "/" + locale.String() + opts.HomePath
				obs.inc(MetricAuthRedirectHome)
				obs.emit(rc, AuditAuthRedirectHome, locale, target, nil)
				obs.log().Debug("auth: signed-in user on auth page", append(requestFields(rc), zap.String("target", target))...)
				return Redirect(target), nil
			case !loggedIn && !onAuthPage:
				target := "/" + locale.String() + opts.LoginPath
				obs.inc(MetricAuthRedirectLogin)
				obs.emit(rc, AuditAuthRedirectLogin, locale, target, nil)
				obs.log().Debug("auth: anonymous user on protected page", append(requestFields(rc), zap.String("target", target))...)
				return Redirect(target), nil
			}
			return next(rc)
		}
	}
}

func lookupSession(checker SessionChecker, rc RequestContext, obs *Observer) bool {
	if checker == nil {
		obs.inc(MetricSessionAbsent)
		return false
	}

	start := time.Now()
	ok, err := checker.IsAuthenticated(rc.Context(), rc)
	obs.observe(MetricSessionLookupLatency, time.Since(start))

	switch {
	case err != nil && !errors.Is(err, ErrNoSessionToken) && !errors.Is(err, ErrSessionRevoked):
		obs.inc(MetricSessionLookupFailure)
		obs.emit(rc, AuditSessionLookupFailed, 0, "", err)
		obs.log().Warn("auth: session lookup failed, treating as signed out", append(requestFields(rc), zap.Error(err))...)
		return false
	case err != nil || !ok:
		obs.inc(MetricSessionAbsent)
		return false
	default:
		obs.inc(MetricSessionPresent)
		return true
	}
}
