package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
	"github.com/agriclinic/agri-clinic-hub/internal/repo/redisrepo"
)

// RateLimit caps requests per client IP over a fixed window. When the
// limiter backend is unavailable requests are allowed through.
func RateLimit(limiter redisrepo.RateLimitRepository, requests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.CheckRateLimit(r.Context(), getClientIP(r), requests, window)
			if err == nil && !allowed {
				response.RateLimit(w, "too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
