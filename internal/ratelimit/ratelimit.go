// Package ratelimit bounds request frequency per actor with a per-key
// sliding counter. State is in-memory and per-process: across multiple
// instances the bound is best-effort, which is fine for a soft abuse
// guard that is not a security boundary.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of one Attempt call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

type window struct {
	start time.Time
	count int
}

// Limiter is an explicit component instance meant to be constructed in main
// and injected into the request path, its counter map is private state.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// New creates a Limiter.
func New() *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// NewWithClock creates a Limiter with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     now,
	}
}

// Attempt records one request against key and reports whether it fits within
// maxRequests per windowSize. Counters reset once a full window elapsed.
func (l *Limiter) Attempt(key string, maxRequests int, windowSize time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= windowSize {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	remaining := maxRequests - w.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   w.count <= maxRequests,
		Remaining: remaining,
		ResetTime: w.start.Add(windowSize),
	}
}
