package goGate

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// LocaleRouter is the framework-level locale rewriting collaborator. A nil
// response means "no redirect"; a redirect response short-circuits the
// locale guard.
type LocaleRouter interface {
	RouteLocale(rc RequestContext) (*Response, error)
}

// LocaleRouterFunc adapts a function to LocaleRouter.
type LocaleRouterFunc func(rc RequestContext) (*Response, error)

func (f LocaleRouterFunc) RouteLocale(rc RequestContext) (*Response, error) { return f(rc) }

// NopLocaleRouter never redirects.
type NopLocaleRouter struct{}

func (NopLocaleRouter) RouteLocale(RequestContext) (*Response, error) { return nil, nil }

// LocaleOptions configures the locale cookie written by the locale guard.
type LocaleOptions struct {
	CookieName string
	CookiePath string
	MaxAge     time.Duration
	SameSite   http.SameSite
	Secure     bool
}

// DefaultLocaleOptions returns the NEXT_LOCALE cookie settings.
func DefaultLocaleOptions() LocaleOptions {
	return LocaleOptions{
		CookieName: DefaultLocaleCookie,
		CookiePath: "/",
		MaxAge:     365 * 24 * time.Hour,
		SameSite:   http.SameSiteLaxMode,
	}
}

func (o LocaleOptions) cookie(l Locale) *http.Cookie {
	return &http.Cookie{
		Name:     o.CookieName,
		Value:    l.String(),
		Path:     o.CookiePath,
		MaxAge:   int(o.MaxAge / time.Second),
		SameSite: o.SameSite,
		Secure:   o.Secure,
	}
}

func (o LocaleOptions) withDefaults() LocaleOptions {
	def := DefaultLocaleOptions()
	if o.CookieName == "" {
		o.CookieName = def.CookieName
	}
	if o.CookiePath == "" {
		o.CookiePath = def.CookiePath
	}
	if o.MaxAge <= 0 {
		o.MaxAge = def.MaxAge
	}
	if o.SameSite == 0 {
		o.SameSite = def.SameSite
	}
	return o
}

// WithI18n returns the locale guard. It resolves the effective locale
// (cookie, then URL segment, then default), makes sure the URL carries it
// as its first segment and persists it in the locale cookie. Applying the
// guard to its own redirect target is a fixed point.
func WithI18n(router LocaleRouter, opts LocaleOptions, obs *Observer) Middleware {
	if router == nil {
		router = NopLocaleRouter{}
	}
	opts = opts.withDefaults()

	return func(next Handler) Handler {
		return func(rc RequestContext) (*Response, error) {
			routed, err := router.RouteLocale(rc)
			if err != nil {
				obs.log().Error("locale: router failed", append(requestFields(rc), zap.Error(err))...)
				return nil, fmt.Errorf("%w: %w", ErrLocaleRouter, err)
			}
			if routed.IsRedirect() {
				obs.inc(MetricLocaleRouterRedirect)
				obs.emit(rc, AuditLocaleRouterRedirect, 0, routed.Location, nil)
				return routed, nil
			}

			resp, err := next(rc)
			if err != nil {
				return nil, err
			}
			if resp == nil {
				return nil, ErrNilHandler
			}
			if resp.IsRedirect() {
				return resp, nil
			}

			path := rc.Path()
			cookie, hasCookie := rc.Cookie(opts.CookieName)
			resolved := ResolveLocale(cookie, hasCookie, path)
			canonical := CanonicalPath(resolved, path)

			if urlLocale, ok := LocaleFromPath(path); !ok || urlLocale != resolved {
				target := withQuery(canonical, rc.RawQuery())
				resp.SetCookie(opts.cookie(resolved))
				obs.inc(MetricLocaleRedirect)
				obs.emit(rc, AuditLocaleRedirect, resolved, target, nil)
				obs.log().Debug("locale: prefixing resolved locale", append(requestFields(rc), zap.String("target", target))...)
				return resp.RedirectTo(target), nil
			}

			if !hasCookie || cookie != resolved.String() {
				resp.SetCookie(opts.cookie(resolved))
				obs.inc(MetricLocaleCookieSet)
			}

			if path != canonical {
				target := withQuery(canonical, rc.RawQuery())
				obs.inc(MetricLocaleCanonicalRedirect)
				obs.emit(rc, AuditLocaleCanonical, resolved, target, nil)
				return resp.RedirectTo(target), nil
			}

			return resp, nil
		}
	}
}

// NegotiatingRouter redirects first-time visitors to the locale their
// Accept-Language header prefers. It only acts when the URL has no locale
// segment, no valid locale cookie exists and the best match is not the
// default locale; in every other case it defers to the locale guard.
type NegotiatingRouter struct {
	opts    LocaleOptions
	matcher language.Matcher
}

// NewNegotiatingRouter builds a router over the supported locales.
func NewNegotiatingRouter(opts LocaleOptions) *NegotiatingRouter {
	tags := make([]language.Tag, 0, len(supportedLocales))
	for _, l := range supportedLocales {
		tags = append(tags, l.Tag())
	}
	return &NegotiatingRouter{
		opts:    opts.withDefaults(),
		matcher: language.NewMatcher(tags),
	}
}

func (n *NegotiatingRouter) RouteLocale(rc RequestContext) (*Response, error) {
	path := rc.Path()
	if _, ok := LocaleFromPath(path); ok {
		return nil, nil
	}
	if v, ok := rc.Cookie(n.opts.CookieName); ok {
		if _, valid := ParseLocale(v); valid {
			return nil, nil
		}
	}

	l, ok := n.Negotiate(rc.Header("Accept-Language"))
	if !ok || l == DefaultLocale {
		return nil, nil
	}

	resp := Redirect(withQuery(CanonicalPath(l, path), rc.RawQuery()))
	resp.SetCookie(n.opts.cookie(l))
	return resp, nil
}

// Negotiate returns the supported locale best matching an Accept-Language
// header value. Malformed headers and headers with no acceptable match
// report false.
func (n *NegotiatingRouter) Negotiate(acceptLanguage string) (Locale, bool) {
	if acceptLanguage == "" {
		return 0, false
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return 0, false
	}
	_, idx, conf := n.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(supportedLocales) {
		return 0, false
	}
	return supportedLocales[idx], true
}
