package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"lost-algorithm/internal/config"
)

func TestIPRateLimiterPerIP(t *testing.T) {
	rl := NewIPRateLimiter(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("Expected first request to pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Expected second request from the same IP to be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("Expected another IP to have its own budget")
	}

	stats := rl.GetStats()
	if stats["allowed"] != 2 || stats["rejected"] != 1 {
		t.Errorf("Expected 2 allowed and 1 rejected, got %v", stats)
	}
}

func TestIPRateLimiterCleanup(t *testing.T) {
	rl := NewIPRateLimiter(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.cleanup(time.Now().Add(time.Minute))

	if !rl.Allow("10.0.0.1") {
		t.Error("Expected a fresh limiter after cleanup")
	}
}

func TestIPRateLimiterDisabled(t *testing.T) {
	rl := NewIPRateLimiter(config.RateLimitConfig{})
	defer rl.Stop()

	for i := 0; i < 100; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("Expected unlimited rate, rejected at %d", i)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.1:80", "198.51.100.7"},
		{"no port", nil, "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestWebSocketRateLimiter(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)

	if !wrl.Allow("a") || !wrl.Allow("a") {
		t.Fatal("Expected two slots")
	}
	if wrl.Allow("a") {
		t.Error("Expected third connection to be rejected")
	}
	wrl.Release("a")
	if wrl.GetConnectionCount("a") != 1 {
		t.Errorf("Expected 1 connection, got %d", wrl.GetConnectionCount("a"))
	}
	if !wrl.Allow("a") {
		t.Error("Expected released slot to be reusable")
	}
}

func TestOriginChecker(t *testing.T) {
	c := NewOriginChecker([]string{"http://localhost:*", "https://game.example"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://localhost", false},
		{"http://localhost.evil.example", false},
		{"https://game.example", true},
		{"https://sub.game.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := c.Allowed(tt.origin); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
