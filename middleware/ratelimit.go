package middleware

import (
	"net/http"
	"strconv"
	"time"

	goGate "github.com/MrEthical07/goGate"
)

// RateLimit enforces per-principal admission after [Guard]. Every response
// carries X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset;
// a denied request additionally gets Retry-After and the 429 envelope.
// Requests whose path is in exemptPaths bypass admission (health probes).
func RateLimit(gateway *goGate.Gateway, exemptPaths ...string) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, ok := goGate.PrincipalFromContext(r.Context())
			if !ok {
				writeEnvelope(w, goGate.ErrTokenMalformed)
				return
			}

			result, err := gateway.Admit(r.Context(), principal.ID)
			setRateHeaders(w, result)
			if err != nil {
				retryAfter := time.Until(result.ResetAt)
				if retryAfter < 0 {
					retryAfter = 0
				}
				// Round up so clients never retry a moment too early.
				seconds := int((retryAfter + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeEnvelope(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateHeaders(w http.ResponseWriter, result goGate.AdmitResult) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	if !result.ResetAt.IsZero() {
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	}
}
