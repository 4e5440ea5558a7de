// Package ratelimit bounds authentication attempts per client to deter
// brute-force and enumeration probing.
package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type windowState struct {
	count int
	start time.Time
}

// Limiter is a fixed-window counter keyed by client identity. It is safe
// for concurrent use; expired windows are pruned lazily on access.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*windowState

	now func() time.Time // overridable in tests
}

// New creates a Limiter allowing limit attempts per window per client.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*windowState),
		now:     time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within quota.
// When denied, retryAfter says how long until the window resets.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, found := l.clients[key]
	if !found || now.Sub(state.start) >= l.window {
		l.clients[key] = &windowState{count: 1, start: now}
		return true, 0
	}

	state.count++
	if state.count > l.limit {
		return false, state.start.Add(l.window).Sub(now)
	}
	return true, 0
}

// Middleware applies the limiter per client IP, failing throttled requests
// with 429 and a Retry-After hint before they reach credential checks.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := l.Allow(clientKey(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "too many attempts, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey normalizes the originating address. RealIP middleware may have
// already stripped the port.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
