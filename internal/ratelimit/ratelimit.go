// Package ratelimit implements a fixed-window request counter used to
// protect downstream paid detection APIs. Windows are discrete and
// non-overlapping; this is a soft anti-abuse control, so state is held in
// memory and is not preserved across restarts.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per identifier in fixed windows. Expired entries
// are lazily replaced on the next request for that identifier. Safe for
// concurrent use; increments for the same identifier are serialized.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewLimiter creates an empty limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check records a request for identifier and reports whether it is allowed
// under maxRequests per window. The first request for an identifier, or the
// first after the window expires, atomically starts a fresh window with
// count 1.
func (l *Limiter) Check(identifier string, window time.Duration, maxRequests int) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		l.entries[identifier] = e
		return Result{Allowed: true, Remaining: maxRequests - 1, ResetAt: e.resetAt}
	}

	if e.count >= maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}

	e.count++
	return Result{Allowed: true, Remaining: maxRequests - e.count, ResetAt: e.resetAt}
}

// Reset drops the window for identifier, if any.
func (l *Limiter) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, identifier)
}
