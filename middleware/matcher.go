package middleware

import "strings"

// Matcher reports whether the guard pipeline should run for path.
type Matcher func(path string) bool

var excludedRoots = []string{"api", "trpc", "_next", "_vercel"}

// DefaultMatcher selects page routes. A path is excluded when its remainder
// after the leading slash starts with api, trpc, _next or _vercel, or when it
// contains a dot anywhere.
func DefaultMatcher(path string) bool {
	rest := strings.TrimPrefix(path, "/")
	for _, root := range excludedRoots {
		if strings.HasPrefix(rest, root) {
			return false
		}
	}
	return !strings.Contains(rest, ".")
}

// MatchAll runs the pipeline for every path.
func MatchAll(string) bool { return true }
