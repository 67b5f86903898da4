// Package ratelimit throttles API clients with one token bucket per client.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// bucket tracks the token state for a single client.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter implements a token-bucket rate limiter keyed by client identifier,
// usually the remote IP.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
	clock   clockwork.Clock
}

// New creates a Limiter that allows rate requests per window and client. A nil
// clock uses the real one.
func New(rate int, window time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		clock:   clock,
	}
}

// Rate returns the number of requests allowed per window.
func (l *Limiter) Rate() int { return l.rate }

// getBucket returns the bucket for key, creating a full one if needed.
// Must be called with l.mu held.
func (l *Limiter) getBucket(key string) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.rate), lastRefill: l.clock.Now()}
		l.buckets[key] = b
	}
	return b
}

// refill adds the tokens earned since the last refill, capped at the rate.
// Must be called with l.mu held.
func (l *Limiter) refill(b *bucket) {
	now := l.clock.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	b.tokens += elapsed * l.perSecond()
	if b.tokens > float64(l.rate) {
		b.tokens = float64(l.rate)
	}
	b.lastRefill = now
}

func (l *Limiter) perSecond() float64 {
	return float64(l.rate) / l.window.Seconds()
}

// Allow consumes one token for key and reports whether the request may
// proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getBucket(key)
	l.refill(b)

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Status returns the bucket size, the whole tokens left for key and the time
// at which its bucket will be full again.
func (l *Limiter) Status(key string) (limit int, remaining int, resetAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.getBucket(key)
	l.refill(b)

	limit = l.rate
	remaining = int(b.tokens)
	if remaining < 0 {
		remaining = 0
	}

	now := l.clock.Now()
	deficit := float64(l.rate) - b.tokens
	if deficit <= 0 {
		return limit, remaining, now
	}
	resetAt = now.Add(time.Duration(deficit / l.perSecond() * float64(time.Second)))
	return limit, remaining, resetAt
}

// Sweep forgets buckets that have refilled completely, so clients seen once
// do not accumulate. It returns the number of buckets dropped.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := 0
	for key, b := range l.buckets {
		l.refill(b)
		if b.tokens >= float64(l.rate) {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
