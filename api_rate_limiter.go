package main

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const apiRateLimitMaxEntries = 8192

// apiRateLimiter is a fixed-window request counter keyed by client IP.
type apiRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*apiRateEntry
	max     int
	window  time.Duration
	now     func() time.Time
}

type apiRateEntry struct {
	count int
	reset time.Time
}

// newAPIRateLimiter returns nil (no limiting) when max <= 0.
func newAPIRateLimiter(max int, window time.Duration) *apiRateLimiter {
	if max <= 0 || window <= 0 {
		return nil
	}
	return &apiRateLimiter{
		entries: make(map[string]*apiRateEntry),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// cleanupLocked drops entries quiet for a full extra window and caps the map
// size so many distinct clients cannot grow it without bound.
func (l *apiRateLimiter) cleanupLocked(now time.Time) {
	for k, entry := range l.entries {
		if now.After(entry.reset.Add(l.window)) {
			delete(l.entries, k)
		}
	}
	if len(l.entries) <= apiRateLimitMaxEntries {
		return
	}
	excess := len(l.entries) - apiRateLimitMaxEntries
	for k := range l.entries {
		delete(l.entries, k)
		excess--
		if excess <= 0 {
			break
		}
	}
}

func (l *apiRateLimiter) allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanupLocked(now)
	if key == "" {
		key = "unknown"
	}
	entry, ok := l.entries[key]
	if !ok || now.After(entry.reset) {
		entry = &apiRateEntry{reset: now.Add(l.window)}
		l.entries[key] = entry
	}
	if entry.count >= l.max {
		return false
	}
	entry.count++
	return true
}

// clientKey is the remote IP without port. X-Forwarded-For is not trusted.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
