package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter caps edit requests per client with a fixed window.
// Every accepted edit triggers a full re-triangulation, so the cap bounds
// CPU spent per client.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	maxRate int           // max requests per window
	period  time.Duration // window length
	now     func() time.Time
}

type window struct {
	remaining int
	start     time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRate requests per period.
func NewRateLimiter(maxRate int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		maxRate: maxRate,
		period:  period,
		now:     time.Now,
	}
}

// Allow reports whether client may make another request, consuming one slot.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evict(now)

	w, ok := rl.windows[client]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.windows[client] = &window{remaining: rl.maxRate - 1, start: now}
		return true
	}
	if w.remaining > 0 {
		w.remaining--
		return true
	}
	return false
}

// RetryAfter returns how many seconds until client's window resets.
func (rl *RateLimiter) RetryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[client]
	if !ok {
		return 0
	}
	left := rl.period - rl.now().Sub(w.start)
	if left < 0 {
		return 0
	}
	return int(left.Seconds()) + 1
}

// evict drops windows that expired long ago. Caller holds mu.
func (rl *RateLimiter) evict(now time.Time) {
	for client, w := range rl.windows {
		if now.Sub(w.start) > 2*rl.period {
			delete(rl.windows, client)
		}
	}
}

// RateLimitMiddleware wraps a handler with rate limiting. Returns 429 if exceeded.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r)
		if !rl.Allow(client) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(client)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientAddr identifies the caller, preferring the first X-Forwarded-For hop.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
