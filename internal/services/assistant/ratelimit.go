package assistant

import (
	"sync"
	"time"
)

// Rate limit defaults for the public chat endpoint.
const (
	DefaultRateLimit  = 10
	DefaultRateWindow = time.Minute
)

type windowEntry struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window per-key request limiter.
type RateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	entries map[string]windowEntry
}

// NewRateLimiter constructs a fixed-window limiter.
func NewRateLimiter(limit int, window time.Duration, clock func() time.Time) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clock:   clock,
		entries: make(map[string]windowEntry),
	}
}

// Allow reports whether one more request from key fits the current window.
func (r *RateLimiter) Allow(key string) bool {
	if r == nil {
		return true
	}
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok || now.Sub(entry.start) > r.window {
		r.entries[key] = windowEntry{start: now, count: 1}
		return true
	}
	entry.count++
	r.entries[key] = entry
	return entry.count <= r.limit
}
