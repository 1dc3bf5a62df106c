package goGate

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks configuration warnings.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is one advisory finding. Unlike Validate errors, warnings do
// not stop a Gate from being built.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings returned by Config.Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	codes := make([]string, len(r))
	for i, w := range r {
		codes[i] = w.Code
	}
	return codes
}

// BySeverity returns the warnings at or above threshold.
func (r LintResult) BySeverity(threshold LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= threshold {
			out = append(out, w)
		}
	}
	return out
}

// AsError folds the warnings at or above threshold into one error, or nil.
func (r LintResult) AsError(threshold LintSeverity) error {
	hits := r.BySeverity(threshold)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, len(hits))
	for i, w := range hits {
		parts[i] = fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message)
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports settings that are valid but likely unintended.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, format string, args ...any) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	if c.JWT.SigningMethod == "hs256" {
		add("signing_hs256", LintInfo, "session tokens use a shared HMAC secret")
	}
	if c.JWT.Leeway > time.Minute {
		add("leeway_large", LintWarn, "JWT leeway %s exceeds 1m", c.JWT.Leeway)
	}
	if c.Session.TTL > 30*24*time.Hour {
		add("session_ttl_long", LintWarn, "session TTL %s exceeds 30 days", c.Session.TTL)
	}
	if !c.Session.Strict {
		add("sign_out_not_enforced", LintInfo, "tokens stay valid after sign-out until they expire")
	}
	if c.Session.Strict && c.Redis.Addr == "" {
		add("strict_without_redis", LintHigh, "Session Strict is set but Redis Addr is empty; a client must be supplied to the builder")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "guard decisions are not audited")
	}
	if c.Environment == EnvProduction && strings.HasPrefix(c.Server.PublicURL, "http://") {
		add("public_url_not_https", LintHigh, "production public URL %q is not https", c.Server.PublicURL)
	}

	for _, prefix := range c.Auth.BypassPrefixes {
		for _, marker := range c.Auth.AuthPageMarkers {
			if marker != "" && strings.Contains(prefix, marker) {
				add("bypass_covers_auth_page", LintHigh, "bypass prefix %q contains auth page marker %q", prefix, marker)
			}
		}
	}
	for _, r := range c.Device.Disallow {
		if r.SourcePath == r.RedirectPath {
			add("device_rule_loops", LintHigh, "device rule for %q redirects to itself", r.SourcePath)
		}
		if c.AuthOptions().IsAuthPage(r.SourcePath) {
			add("device_rule_on_auth_page", LintWarn, "device rule source %q is an auth page", r.SourcePath)
		}
	}
	return ws
}
