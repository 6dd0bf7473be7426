package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter admits a request or reports how long the caller should wait
// before retrying.
type rateLimiter interface {
	Admit() (bool, time.Duration)
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

// WithRateLimit configures a token bucket limiter. A zero rate or burst
// disables rate limiting entirely.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		if ratePerSecond <= 0 || burst <= 0 {
			cfg.rateLimiter = nil
			return
		}
		cfg.rateLimiter = newTokenBucketLimiter(ratePerSecond, burst)
	}
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// Admit takes a token when one is available now. Otherwise the reservation
// is returned to the bucket and the wait until the next token is reported.
func (l *limiterAdapter) Admit() (bool, time.Duration) {
	if l == nil || l.limiter == nil {
		return true, 0
	}
	r := l.limiter.Reserve()
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}

// Probes and metric scrapes are never limited.
var unlimitedPaths = map[string]bool{
	"/metrics":    true,
	"/api/health": true,
}

// rateLimitMiddleware rejects API requests once the limiter runs dry.
func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unlimitedPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ok, wait := limiter.Admit()
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", retryAfterSeconds(wait))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}

func retryAfterSeconds(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
