package middleware

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// Gate runs matched requests through g using DefaultMatcher.
func Gate(g *goGate.Gate) func(http.Handler) http.Handler {
	return GateWithMatcher(g, DefaultMatcher)
}

// GateWithMatcher runs requests selected by match through g. Redirects are
// written directly; continue responses forward to next with their cookies
// and headers applied. Pipeline errors become 500.
func GateWithMatcher(g *goGate.Gate, match Matcher) func(http.Handler) http.Handler {
	if match == nil {
		match = DefaultMatcher
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g == nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			resp, err := g.Handle(NewRequestContext(r))
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if WriteResponse(w, resp) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteResponse applies resp to w. It reports true when resp was a redirect
// and the response has been written.
func WriteResponse(w http.ResponseWriter, resp *goGate.Response) bool {
	if resp == nil {
		return false
	}
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	for _, c := range resp.Cookies {
		http.SetCookie(w, c)
	}
	if !resp.IsRedirect() {
		return false
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusTemporaryRedirect
	}
	w.Header().Set("Location", resp.Location)
	w.WriteHeader(status)
	return true
}
