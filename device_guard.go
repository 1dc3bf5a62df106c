package goGate

import "go.uber.org/zap"

// DisallowRule sends desktop clients requesting SourcePath to RedirectPath.
type DisallowRule struct {
	SourcePath   string `yaml:"source_path"`
	RedirectPath string `yaml:"redirect_path"`
}

// WithDeviceOnly returns the device guard. The request path is stripped of
// its locale segment and matched exactly against rules in order; the first
// match redirects desktop (and unclassified) clients to
// "/<locale><RedirectPath>". With no rules the guard is a pass-through.
func WithDeviceOnly(rules []DisallowRule, localeCookie string, obs *Observer) Middleware {
	table := make([]DisallowRule, 0, len(rules))
	for _, r := range rules {
		if r.SourcePath != "" && r.RedirectPath != "" {
			table = append(table, r)
		}
	}
	if localeCookie == "" {
		localeCookie = DefaultLocaleCookie
	}

	return func(next Handler) Handler {
		if len(table) == 0 {
			return next
		}
		return func(rc RequestContext) (*Response, error) {
			if !rc.Device().IsDesktop() {
				return next(rc)
			}
			normalized := StripLocalePrefix(rc.Path())
			for _, r := range table {
				if r.SourcePath != normalized {
					continue
				}
				cookie, hasCookie := rc.Cookie(localeCookie)
				locale := ResolveLocale(cookie, hasCookie, rc.Path())
				target := "/" + locale.String() + r.RedirectPath
				obs.inc(MetricDeviceRedirect)
				obs.emit(rc, AuditDeviceRedirect, locale, target, nil)
				obs.log().Debug("device: path not allowed on desktop", append(requestFields(rc), zap.String("target", target))...)
				return Redirect(target), nil
			}
			return next(rc)
		}
	}
}
