package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"social-go/internal/redis"
)

// RateLimit enforces limit requests per window for resource. It keys by the
// authenticated caller when there is one, otherwise by client IP, and fails
// open when the limiter is unavailable.
func RateLimit(limiter redis.RateLimiter, resource string, limit int, window time.Duration, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := "ip:" + clientIP(r)
			if caller, ok := CallerFromContext(r.Context()); ok {
				id = "user:" + strconv.FormatUint(uint64(caller.UserID), 10)
			}

			allowed, err := limiter.Allow(r.Context(), resource, id, limit, window)
			if err != nil {
				log.WithError(err).WithField("resource", resource).Warn("rate limiter unavailable, allowing request")
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
