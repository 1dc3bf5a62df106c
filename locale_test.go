package goGate

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseLocale(t *testing.T) {
	cases := []struct {
		in   string
		want Locale
		ok   bool
	}{
		{"en", LocaleEnglish, true},
		{"ms", LocaleMalay, true},
		{"EN", 0, false},
		{"en-GB", 0, false},
		{"fr", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseLocale(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseLocale(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLocaleMetadata(t *testing.T) {
	if LocaleEnglish.DisplayName() != "English" || LocaleMalay.DisplayName() != "Malay" {
		t.Fatal("unexpected display names")
	}
	if LocaleEnglish.DateTag() != language.BritishEnglish {
		t.Fatalf("expected en-GB, got %s", LocaleEnglish.DateTag())
	}
	if LocaleMalay.DateTag().String() != "ms-MY" {
		t.Fatalf("expected ms-MY, got %s", LocaleMalay.DateTag())
	}
	if Locale(0).String() != "" || Locale(0).Valid() {
		t.Fatal("zero locale must be invalid")
	}
	if got := Locales(); len(got) != 2 || got[0] != LocaleEnglish || got[1] != LocaleMalay {
		t.Fatalf("unexpected locales %v", got)
	}
}

func TestResolveLocalePrecedence(t *testing.T) {
	cases := []struct {
		name      string
		cookie    string
		hasCookie bool
		path      string
		want      Locale
	}{
		{"cookie wins over url", "ms", true, "/en/home", LocaleMalay},
		{"url when no cookie", "", false, "/ms/home", LocaleMalay},
		{"invalid cookie falls to url", "fr", true, "/ms/home", LocaleMalay},
		{"invalid cookie and no url", "xx", true, "/home", DefaultLocale},
		{"nothing", "", false, "/", DefaultLocale},
		{"locale not leading", "", false, "/home/ms", DefaultLocale},
	}
	for _, tc := range cases {
		if got := ResolveLocale(tc.cookie, tc.hasCookie, tc.path); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestStripLocalePrefix(t *testing.T) {
	cases := map[string]string{
		"/":                        "/",
		"/en":                      "/",
		"/en/":                     "/",
		"/en/home":                 "/home",
		"/ms/config/profile":       "/config/profile",
		"/en/ms/x":                 "/x",
		"/posts/en-language-guide": "/posts/en-language-guide",
		"/a/en/b":                  "/a/en/b",
		"/english":                 "/english",
		"home":                     "/home",
	}
	for in, want := range cases {
		if got := StripLocalePrefix(in); got != want {
			t.Fatalf("StripLocalePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalPath(t *testing.T) {
	cases := []struct {
		l    Locale
		path string
		want string
	}{
		{LocaleEnglish, "/", "/en"},
		{LocaleEnglish, "/dashboard", "/en/dashboard"},
		{LocaleMalay, "/en/dashboard", "/ms/dashboard"},
		{LocaleMalay, "/ms/dashboard/", "/ms/dashboard"},
		{LocaleEnglish, "/posts/en-guide", "/en/posts/en-guide"},
	}
	for _, tc := range cases {
		if got := CanonicalPath(tc.l, tc.path); got != tc.want {
			t.Fatalf("CanonicalPath(%v, %q) = %q, want %q", tc.l, tc.path, got, tc.want)
		}
	}
}

func TestClassifyUserAgent(t *testing.T) {
	cases := []struct {
		ua   string
		want DeviceClass
	}{
		{"", DeviceUnknown},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", DeviceDesktop},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", DeviceMobile},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", DeviceTablet},
	}
	for _, tc := range cases {
		if got := ClassifyUserAgent(tc.ua); got != tc.want {
			t.Fatalf("ClassifyUserAgent(%q) = %s, want %s", tc.ua, got, tc.want)
		}
	}
	if !DeviceUnknown.IsDesktop() || DeviceMobile.IsDesktop() {
		t.Fatal("unknown counts as desktop, mobile does not")
	}
	if ParseDeviceClass("tablet") != DeviceTablet || ParseDeviceClass("?") != DeviceUnknown {
		t.Fatal("ParseDeviceClass mismatch")
	}
}
