// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/iyunix/go-linksports/internal/ratelimit"
)

type rateLimitSettings struct {
	trustProxy bool
}

// RateLimitOption adjusts how the rate limit middlewares identify clients.
type RateLimitOption func(*rateLimitSettings)

// TrustProxyHeaders keys clients by X-Forwarded-For / X-Real-IP instead of
// the connection address.
func TrustProxyHeaders(trust bool) RateLimitOption {
	return func(s *rateLimitSettings) { s.trustProxy = trust }
}

func newRateLimitSettings(opts []RateLimitOption) rateLimitSettings {
	var s rateLimitSettings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// RateLimitMiddleware rejects requests from client IPs the limiter refuses.
func RateLimitMiddleware(limiter ratelimit.Limiter, name string, logger Logger, opts ...RateLimitOption) func(http.Handler) http.Handler {
	settings := newRateLimitSettings(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.ClientIP(r, settings.trustProxy)
			allowed, info := limiter.Allow(name + ":" + clientIP)

			if info.Allowed {
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			}
			if !info.ResetTime.IsZero() {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
			}

			if !allowed {
				logger.Warn("rate limited",
					"limiter", name,
					"ip", clientIP,
					"banned", info.Banned,
					"retry_after_s", info.RetryAfter.Seconds())

				seconds := int(math.Ceil(info.RetryAfter.Seconds()))
				if seconds > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(seconds))
				}
				message := "Too many requests. Please try again later."
				if info.Banned {
					message = fmt.Sprintf("Too many attempts. Try again in %d minutes.", int(math.Ceil(info.RetryAfter.Minutes())))
				}
				writeFailure(w, http.StatusTooManyRequests, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthSuccessMiddleware clears the client's attempts after a 2xx response.
func AuthSuccessMiddleware(limiter *ratelimit.MemoryRateLimiter, name string, opts ...RateLimitOption) func(http.Handler) http.Handler {
	settings := newRateLimitSettings(opts)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				limiter.RecordSuccess(name + ":" + ratelimit.ClientIP(r, settings.trustProxy))
			}
		})
	}
}
