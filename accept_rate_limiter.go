package main

import (
	"context"
	"net"
	"sync"
	"time"
)

// acceptRateLimiter is a token bucket for new TCP accepts: an average rate
// with a burst allowance.
type acceptRateLimiter struct {
	rate   float64   // tokens per second
	burst  float64   // maximum tokens
	tokens float64   // current tokens
	last   time.Time // last refill time
	mu     sync.Mutex
}

// newAcceptRateLimiter returns nil (no limiting) when maxPerSecond <= 0.
// A non-positive burst means one second's worth of accepts.
func newAcceptRateLimiter(maxPerSecond, burst int) *acceptRateLimiter {
	if maxPerSecond <= 0 {
		return nil
	}
	rate := float64(maxPerSecond)
	burstSize := float64(burst)
	if burstSize <= 0 {
		burstSize = rate
	}
	return &acceptRateLimiter{
		rate:   rate,
		burst:  burstSize,
		tokens: burstSize,
		last:   time.Now(),
	}
}

func (l *acceptRateLimiter) refillLocked(now time.Time) {
	if l.last.IsZero() {
		l.last = now
	}
	elapsed := now.Sub(l.last).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.rate
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.last = now
	}
}

// wait blocks until a token is available or ctx is done. It returns false
// only on cancellation.
func (l *acceptRateLimiter) wait(ctx context.Context) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	l.refillLocked(time.Now())
	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return true
	}
	need := 1 - l.tokens
	rate := l.rate
	l.mu.Unlock()

	wait := time.Duration(need / rate * float64(time.Second))
	if wait <= 0 {
		wait = time.Millisecond
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	l.mu.Lock()
	l.refillLocked(time.Now())
	if l.tokens < 1 {
		l.tokens = 0
	} else {
		l.tokens--
	}
	l.mu.Unlock()
	return true
}

// rateLimitedListener throttles Accept with an acceptRateLimiter. Once ctx
// is cancelled Accept returns net.ErrClosed so http.Server.Serve exits.
type rateLimitedListener struct {
	net.Listener
	ctx     context.Context
	limiter *acceptRateLimiter
}

func newRateLimitedListener(ctx context.Context, ln net.Listener, limiter *acceptRateLimiter) net.Listener {
	if limiter == nil {
		return ln
	}
	return &rateLimitedListener{Listener: ln, ctx: ctx, limiter: limiter}
}

func (l *rateLimitedListener) Accept() (net.Conn, error) {
	if !l.limiter.wait(l.ctx) {
		return nil, net.ErrClosed
	}
	return l.Listener.Accept()
}
