package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"view-router/internal/common/logging"
)

// RateLimit rejects requests with 429 once limiter has no tokens left.
// Navigations are serialized by the router, so one limiter covers every client.
func RateLimit(limiter *rate.Limiter, logger logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%g", float64(limiter.Limit())))
			w.Header().Set("X-RateLimit-Burst", fmt.Sprintf("%d", limiter.Burst()))

			if !limiter.Allow() {
				retry := 1
				if limit := float64(limiter.Limit()); limit > 0 {
					retry = int(math.Ceil(1 / limit))
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
				logger.Warn("Rate limit exceeded",
					logging.String("method", r.Method),
					logging.String("path", r.URL.Path),
					logging.String("remote_addr", r.RemoteAddr))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
