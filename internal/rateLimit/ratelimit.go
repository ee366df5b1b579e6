package rateLimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

// Counter increments a fixed-window counter and returns its new value.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimiter struct {
	counter Counter
	logger  observability.Logger
}

func NewRateLimiter(counter Counter, logger observability.Logger) *RateLimiter {
	return &RateLimiter{counter: counter, logger: logger}
}

// Allow fails open when the counter is unavailable.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	n, err := rl.counter.IncrWindow(ctx, "rl:"+key, period)
	if err != nil {
		observability.LoggerFrom(ctx, rl.logger).WithError(err).Warn("rate limit counter unavailable")
		return true
	}
	if n > int64(rate) {
		observability.RateLimitExceeded.Inc()
		return false
	}
	return true
}

// Middleware limits each client address to rate requests per period on the
// wrapped routes.
func (rl *RateLimiter) Middleware(name string, rate int, period time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(r.Context(), name+":"+clientIP(r), rate, period) {
				w.Header().Set("Retry-After", strconv.Itoa(int(period.Seconds())))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
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
