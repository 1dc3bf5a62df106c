package goGate

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported UI language. The zero value is not a valid locale;
// use [ParseLocale] to obtain one from untrusted input.
type Locale uint8

const (
	// LocaleEnglish is the primary locale ("en").
	LocaleEnglish Locale = iota + 1
	// LocaleMalay is the secondary locale ("ms").
	LocaleMalay
)

// DefaultLocale is used when neither cookie nor URL carry a supported locale.
const DefaultLocale = LocaleEnglish

// DefaultLocaleCookie is the cookie that persists the chosen locale.
const DefaultLocaleCookie = "NEXT_LOCALE"

type localeInfo struct {
	code    string
	name    string
	dateTag language.Tag
}

var localeTable = [...]localeInfo{
	LocaleEnglish: {code: "en", name: "English", dateTag: language.BritishEnglish},
	LocaleMalay:   {code: "ms", name: "Malay", dateTag: language.MustParse("ms-MY")},
}

var supportedLocales = []Locale{LocaleEnglish, LocaleMalay}

// Locales returns the supported locales in declaration order.
func Locales() []Locale {
	out := make([]Locale, len(supportedLocales))
	copy(out, supportedLocales)
	return out
}

// ParseLocale maps a locale code to a Locale. Only exact supported codes are
// accepted; anything else (including case variants and region tags) fails.
func ParseLocale(s string) (Locale, bool) {
	for _, l := range supportedLocales {
		if localeTable[l].code == s {
			return l, true
		}
	}
	return 0, false
}

// Valid reports whether l is a member of the supported enumeration.
func (l Locale) Valid() bool {
	return l >= LocaleEnglish && l <= LocaleMalay
}

func (l Locale) String() string {
	if !l.Valid() {
		return ""
	}
	return localeTable[l].code
}

// DisplayName returns the human readable language name.
func (l Locale) DisplayName() string {
	if !l.Valid() {
		return ""
	}
	return localeTable[l].name
}

// DateTag returns the regional tag used for date formatting (en-GB, ms-MY).
func (l Locale) DateTag() language.Tag {
	if !l.Valid() {
		return language.Und
	}
	return localeTable[l].dateTag
}

// Tag returns the base language tag of l.
func (l Locale) Tag() language.Tag {
	if !l.Valid() {
		return language.Und
	}
	return language.Make(localeTable[l].code)
}

// ResolveLocale picks the effective locale: a valid cookie value first, then
// a valid leading URL segment, then [DefaultLocale]. An unsupported cookie
// value is treated as absent.
func ResolveLocale(cookie string, hasCookie bool, path string) Locale {
	if hasCookie {
		if l, ok := ParseLocale(cookie); ok {
			return l
		}
	}
	if l, ok := LocaleFromPath(path); ok {
		return l
	}
	return DefaultLocale
}

// LocaleFromPath parses the first path segment as a locale.
func LocaleFromPath(path string) (Locale, bool) {
	return ParseLocale(firstSegment(path))
}

// StripLocalePrefix removes leading supported-locale segments. Later
// segments are never touched, so "/posts/en-guide" and "/a/en/b" are
// returned as-is. The result always begins with "/".
func StripLocalePrefix(path string) string {
	p := ensureLeadingSlash(path)
	for {
		seg := firstSegment(p)
		if _, ok := ParseLocale(seg); !ok {
			return p
		}
		p = p[1+len(seg):]
		if p == "" {
			return "/"
		}
	}
}

// CanonicalPath returns the locale-prefixed form of path for l. A bare root
// collapses to "/<locale>" and trailing slashes are dropped.
func CanonicalPath(l Locale, path string) string {
	rest := StripLocalePrefix(path)
	rest = strings.TrimRight(rest, "/")
	return "/" + l.String() + rest
}

func firstSegment(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

func ensureLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
