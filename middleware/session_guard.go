package middleware

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// RequireSession rejects requests that checker does not recognize as signed
// in. It is meant for API routes, which sit outside the page pipeline and
// answer 401 instead of redirecting.
func RequireSession(checker goGate.SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ok, err := checker.IsAuthenticated(r.Context(), NewRequestContext(r))
			if err != nil || !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
