// Package ratelimit tracks failed attempts per identifier and blocks an
// identifier once it reaches the configured ceiling inside the window.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultMaxAttempts   = 5
	DefaultBlockDuration = 5 * time.Minute
)

// Entry is the per-identifier attempt state.
type Entry struct {
	Count        int
	FirstAttempt time.Time
	BlockedUntil time.Time
}

// Store persists entries with a time-to-live. Implementations must drop an
// entry once its TTL has elapsed.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Limiter struct {
	store         Store
	maxAttempts   int
	blockDuration time.Duration
	now           func() time.Time

	// mu serialises read-modify-write of a single process. A shared store
	// used by several instances needs its own atomic update.
	mu sync.Mutex
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func NewLimiter(store Store, maxAttempts int, blockDuration time.Duration, opts ...Option) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if blockDuration <= 0 {
		blockDuration = DefaultBlockDuration
	}
	l := &Limiter{
		store:         store,
		maxAttempts:   maxAttempts,
		blockDuration: blockDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Blocked reports whether key is currently blocked and for how long.
func (l *Limiter) Blocked(ctx context.Context, key string) (time.Duration, bool, error) {
	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return 0, false, fmt.Errorf("get attempts: %w", err)
	}
	if !ok || entry.BlockedUntil.IsZero() {
		return 0, false, nil
	}
	remaining := entry.BlockedUntil.Sub(l.now())
	if remaining <= 0 {
		return 0, false, nil
	}
	return remaining, true, nil
}

// RecordFailure counts a failed attempt and returns true when the key has just
// become (or still is) blocked.
func (l *Limiter) RecordFailure(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get attempts: %w", err)
	}

	switch {
	case !ok:
		entry = Entry{Count: 1, FirstAttempt: now}
	case !entry.BlockedUntil.IsZero() && now.After(entry.BlockedUntil):
		entry = Entry{Count: 1, FirstAttempt: now}
	case now.Sub(entry.FirstAttempt) > l.blockDuration:
		entry = Entry{Count: 1, FirstAttempt: now}
	default:
		entry.Count++
	}

	if entry.Count >= l.maxAttempts {
		entry.BlockedUntil = now.Add(l.blockDuration)
	}

	ttl := entry.FirstAttempt.Add(l.blockDuration).Sub(now)
	if !entry.BlockedUntil.IsZero() {
		ttl = entry.BlockedUntil.Sub(now)
	}
	if err := l.store.Set(ctx, key, entry, ttl); err != nil {
		return false, fmt.Errorf("set attempts: %w", err)
	}
	return !entry.BlockedUntil.IsZero(), nil
}

// Reset forgets key, typically after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Delete(ctx, key)
}
