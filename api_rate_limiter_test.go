package main

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewAPIRateLimiterDisabled(t *testing.T) {
	if l := newAPIRateLimiter(0, time.Minute); l != nil {
		t.Fatalf("expected nil limiter for max=0")
	}
	if l := newAPIRateLimiter(5, 0); l != nil {
		t.Fatalf("expected nil limiter for zero window")
	}
	var l *apiRateLimiter
	if !l.allow("x") {
		t.Fatalf("nil limiter must allow")
	}
}

// TestAPIRateLimiterWindow verifies the per-key budget and its reset once the
// window has passed.
func TestAPIRateLimiterWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newAPIRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.allow("a") || !l.allow("a") {
		t.Fatalf("first two requests should pass")
	}
	if l.allow("a") {
		t.Fatalf("third request inside the window should be throttled")
	}
	if !l.allow("b") {
		t.Fatalf("other keys have their own budget")
	}

	now = now.Add(time.Minute + time.Second)
	if !l.allow("a") {
		t.Fatalf("budget should reset after the window")
	}
}

func TestAPIRateLimiterCapsEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newAPIRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	for i := 0; i < apiRateLimitMaxEntries+10; i++ {
		l.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	l.mu.Lock()
	n := len(l.entries)
	l.mu.Unlock()
	if n > apiRateLimitMaxEntries+1 {
		t.Fatalf("entries = %d, want <= %d", n, apiRateLimitMaxEntries+1)
	}
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/links", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := clientKey(r); got != "203.0.113.9" {
		t.Fatalf("clientKey = %q, want 203.0.113.9", got)
	}
	r.RemoteAddr = "bare-host"
	if got := clientKey(r); got != "bare-host" {
		t.Fatalf("clientKey = %q, want bare-host", got)
	}
}
