// AngelaMos | 2026
// bucket.go

// Package ratelimit implements a process-local token-bucket rate limiter
// keyed by hashed client identity. Each Registry is an explicitly owned
// object injected where needed; there is no package-level state. Limits
// enforced here are per worker process: a multi-process deployment that
// needs a global budget should layer the redis-backed middleware limiter
// on top.
package ratelimit

import (
	"sync"
	"time"

	"github.com/angelamos/casefile/internal/core"
)

const (
	idleTTL       = time.Hour
	sweepInterval = 5 * time.Minute
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Registry holds the buckets for one endpoint class (e.g. login, refresh).
type Registry struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	capacity  float64
	window    time.Duration
	rate      float64 // tokens per second
	lastSweep time.Time
	now       func() time.Time
}

// Result reports the outcome of an Allow call. RetryAfter is only
// meaningful when Allowed is false and equals the configured window.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// NewRegistry creates a registry allowing maxRequests per window for each
// distinct client identifier.
func NewRegistry(maxRequests int, window time.Duration) *Registry {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	return &Registry{
		buckets:  make(map[string]*bucket),
		capacity: float64(maxRequests),
		window:   window,
		rate:     float64(maxRequests) / window.Seconds(),
		now:      time.Now,
	}
}

// Allow refills the caller's bucket proportionally to elapsed wall-clock
// time, then attempts to deduct one token. The identifier is hashed before
// use as a map key so raw client addresses are never retained.
func (r *Registry) Allow(identifier string) Result {
	key := core.HashToken(identifier)
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.maybeSweep(now)

	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{tokens: r.capacity, lastRefill: now}
		r.buckets[key] = b
	} else {
		b.refill(now, r.rate, r.capacity)
	}

	if b.tokens >= 1 {
		b.tokens--
		return Result{Allowed: true, Remaining: int(b.tokens)}
	}

	return Result{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: r.window,
	}
}

// Window returns the configured window duration, used as the Retry-After
// hint on limited responses.
func (r *Registry) Window() time.Duration {
	return r.window
}

// Len reports the current number of live buckets. Exposed for tests and
// operational visibility of the memory footprint between sweeps.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets)
}

func (b *bucket) refill(now time.Time, rate, capacity float64) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	b.tokens += elapsed * rate
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastRefill = now
}

// maybeSweep drops buckets idle for over idleTTL. It piggybacks on request
// traffic rather than running on a timer, and runs at most once per
// sweepInterval; under sustained unique-client load the map can grow
// between sweeps.
func (r *Registry) maybeSweep(now time.Time) {
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now

	cutoff := now.Add(-idleTTL)
	for key, b := range r.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(r.buckets, key)
		}
	}
}
