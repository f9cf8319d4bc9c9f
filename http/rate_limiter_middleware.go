package http

import (
	"net"
	"net/http"

	"stuntify/metrics"
)

// RateLimitMiddleware rejects a client's requests once its bucket is empty.
// Clients are keyed by remote IP.
func RateLimitMiddleware(
	limiter *RateLimiter,
	m *metrics.Metrics,
	next http.Handler,
) http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !limiter.Allow(ip) {
			m.ObserveRateLimited()
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
