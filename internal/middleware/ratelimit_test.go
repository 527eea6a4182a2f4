package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/sessions"
)

type fakeLimiter struct {
	result *sessions.RateLimitResult
	err    error
	lastIP string
}

func (f *fakeLimiter) CheckLoginRateLimit(_ context.Context, ip string, _, _ int) (*sessions.RateLimitResult, error) {
	f.lastIP = ip
	return f.result, f.err
}

func newRateLimitHandler(limiter LoginLimiter, enabled bool) http.Handler {
	mw := RateLimitLogin(RateLimitConfig{
		Logger:        discardLogger(),
		Limiter:       limiter,
		Enabled:       enabled,
		RatePerMinute: 10,
		Burst:         5,
	})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimitLoginAllowed(t *testing.T) {
	limiter := &fakeLimiter{result: &sessions.RateLimitResult{Allowed: true, Remaining: 4}}
	handler := newRateLimitHandler(limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimitLoginBlocked(t *testing.T) {
	limiter := &fakeLimiter{result: &sessions.RateLimitResult{Allowed: false, RetryAfter: 30 * time.Second}}
	handler := newRateLimitHandler(limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("expected Retry-After 30, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"RATE_LIMITED"`) {
		t.Errorf("expected RATE_LIMITED envelope, got %s", rec.Body.String())
	}
}

func TestRateLimitLoginFailsOpen(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	handler := newRateLimitHandler(limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d", rec.Code)
	}
}

func TestRateLimitLoginDisabled(t *testing.T) {
	limiter := &fakeLimiter{result: &sessions.RateLimitResult{Allowed: false}}
	handler := newRateLimitHandler(limiter, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when disabled, got %d", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded_single", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "10.0.0.1:1234", "203.0.113.9"},
		{"forwarded_chain", map[string]string{"X-Forwarded-For": "203.0.113.9,10.0.0.2"}, "10.0.0.1:1234", "203.0.113.9"},
		{"real_ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.1:1234", "198.51.100.4"},
		{"remote_addr", nil, "10.0.0.1:1234", "10.0.0.1:1234"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = test.remote
			for k, v := range test.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != test.want {
				t.Errorf("expected %q, got %q", test.want, got)
			}
		})
	}
}
