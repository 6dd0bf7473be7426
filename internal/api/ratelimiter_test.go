package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticLimiter struct {
	allow bool
	wait  time.Duration
}

func (s *staticLimiter) Admit() (bool, time.Duration) {
	if s.allow {
		return true, 0
	}
	return false, s.wait
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/solve", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/solve", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if ok, _ := limiter.Admit(); !ok {
		t.Fatalf("expected first request to be allowed")
	}
	ok, wait := limiter.Admit()
	if ok {
		t.Fatalf("expected second request to exceed a burst of one")
	}
	if wait <= 0 || wait > time.Second {
		t.Fatalf("expected wait within one token interval, got %s", wait)
	}
}

func TestRateLimitMiddlewareSetsRetryAfter(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want string
	}{
		{wait: 0, want: "1"},
		{wait: 200 * time.Millisecond, want: "1"},
		{wait: 2500 * time.Millisecond, want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.wait.String(), func(t *testing.T) {
			middleware := rateLimitMiddleware(&staticLimiter{wait: tt.wait}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))

			rec := httptest.NewRecorder()
			middleware.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/solve", nil))

			if got := rec.Header().Get("Retry-After"); got != tt.want {
				t.Fatalf("expected Retry-After %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRateLimitMiddlewareExemptsProbes(t *testing.T) {
	for _, path := range []string{"/metrics", "/api/health"} {
		t.Run(path, func(t *testing.T) {
			var called bool
			middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				called = true
			}))

			rec := httptest.NewRecorder()
			middleware.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			if !called {
				t.Fatalf("expected %s to bypass the limiter", path)
			}
		})
	}
}
