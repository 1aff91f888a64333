package services

import (
	"sync"
	"time"
)

const (
	DefaultRateLimitWindow = 60 * time.Second
	DefaultRateLimitMax    = 30
)

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a per-client fixed window admission counter held in process memory.
// Running several instances requires moving the table to a shared store with atomic
// increment-with-TTL.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	window  time.Duration
	max     int
	now     func() time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

// Admit records a request from clientID and reports whether it is within the limit.
// The counter keeps growing past the cap; every call stays rejected until the window resets.
func (l *RateLimiter) Admit(clientID string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[clientID]
	if !ok || now.After(entry.resetAt) {
		l.entries[clientID] = &rateLimitEntry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	entry.count++
	return entry.count <= l.max
}

// Prune drops entries whose window has already elapsed and returns how many were removed.
func (l *RateLimiter) Prune() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}
