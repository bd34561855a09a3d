package middleware

import (
	"net/http"
	"strings"

	goGate "github.com/MrEthical07/goGate"
)

// Guard authenticates every request. It reads the Authorization bearer
// token, verifies it through the gateway, and stores the recovered principal
// in the request context for downstream handlers.
func Guard(gateway *goGate.Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gateway == nil {
				writeEnvelope(w, goGate.ErrGatewayNotReady)
				return
			}

			ctx := goGate.WithClientIP(r.Context(), remoteIP(r))

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeEnvelope(w, goGate.ErrTokenMalformed)
				return
			}

			principal, err := gateway.Authenticate(ctx, token)
			if err != nil {
				writeEnvelope(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(goGate.WithPrincipal(ctx, principal)))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func remoteIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.Trim(host, "[]")
}
