// Package ratelimit limits match creation and spectator connections per client.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides if a request from key should be allowed.
// Allow returns (allowed, retryAfterSeconds). When allowed is false, retryAfterSeconds
// may be set for the Retry-After response header (0 = omit).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// New returns an InMemory limiter, or Noop when limit is zero.
func New(limit int, window time.Duration) Limiter {
	if limit <= 0 {
		return Noop{}
	}
	return NewInMemory(limit, window)
}

// Noop allows all requests.
type Noop struct{}

func (Noop) Allow(key string) (bool, int) { return true, 0 }

// InMemory is a sliding-window rate limiter per key (single-instance only).
type InMemory struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	limit   int
	window  time.Duration
	nowFunc func() time.Time
}

// NewInMemory allows up to limit requests per key per window.
func NewInMemory(limit int, window time.Duration) *InMemory {
	return &InMemory{
		entries: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

func (r *InMemory) Allow(key string) (allowed bool, retryAfterSec int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nowFunc()
	times := r.live(r.entries[key], now)
	if len(times) >= r.limit {
		r.entries[key] = times
		retryAfter := times[0].Add(r.window).Sub(now)
		if retryAfter > 0 {
			retryAfterSec = int(retryAfter.Seconds())
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
		}
		return false, retryAfterSec
	}
	r.entries[key] = append(times, now)
	return true, 0
}

// Prune forgets keys with no request inside the window and returns how many
// were dropped.
func (r *InMemory) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nowFunc()
	dropped := 0
	for key, times := range r.entries {
		if times = r.live(times, now); len(times) == 0 {
			delete(r.entries, key)
			dropped++
			continue
		}
		r.entries[key] = times
	}
	return dropped
}

// Run prunes idle keys every interval until stop is closed.
func (r *InMemory) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Prune()
		case <-stop:
			return
		}
	}
}

// live drops timestamps that fell out of the window, in place.
func (r *InMemory) live(times []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-r.window)
	i := 0
	for _, t := range times {
		if t.After(cutoff) {
			times[i] = t
			i++
		}
	}
	return times[:i]
}
