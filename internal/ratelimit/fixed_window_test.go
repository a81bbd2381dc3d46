package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterAllowsUpToLimit(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "synapse:ratelimit:test", 2, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}

	key := "/api/auth/login|198.51.100.1"
	if !limiter.Allow(key) || !limiter.Allow(key) {
		t.Fatal("requests within the limit should pass")
	}
	if limiter.Allow(key) {
		t.Fatal("request over the limit should be blocked")
	}
	// Other clients have their own window.
	if !limiter.Allow("/api/auth/login|198.51.100.2") {
		t.Fatal("a different key must not share the window")
	}
}

func TestFixedWindowLimiterResetsAfterWindow(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "synapse:ratelimit:test", 1, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}

	if !limiter.Allow("client") {
		t.Fatal("first request should pass")
	}
	if limiter.Allow("client") {
		t.Fatal("second request should be blocked")
	}
	redis.FastForward(2 * time.Minute)
	if !limiter.Allow("client") {
		t.Fatal("window should reset after expiry")
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "synapse:ratelimit:test", 1, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	redis.Close()
	if limiter.Allow("client") {
		t.Fatal("limiter should fail closed when redis is unreachable")
	}
}

func TestFixedWindowLimiterRequiresRedisAddr(t *testing.T) {
	if limiter, err := NewRedisFixedWindowLimiter("", "", "synapse:ratelimit:test", 1, time.Minute); err == nil || limiter != nil {
		t.Fatal("expected constructor error for empty redis addr")
	}
}
