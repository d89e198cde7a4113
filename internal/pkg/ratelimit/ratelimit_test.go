package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter() (*Limiter, *MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
	store := NewMemoryStoreWithClock(clock.Now)
	return NewLimiter(store, 5, 5*time.Minute, WithClock(clock.Now)), store, clock
}

func TestBlocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLimiter()

	for i := 0; i < 4; i++ {
		blocked, err := l.RecordFailure(ctx, "john@demo.com")
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d", i+1)
	}

	blocked, err := l.RecordFailure(ctx, "john@demo.com")
	require.NoError(t, err)
	assert.True(t, blocked)

	remaining, isBlocked, err := l.Blocked(ctx, "john@demo.com")
	require.NoError(t, err)
	assert.True(t, isBlocked)
	assert.Equal(t, 5*time.Minute, remaining)

	_, otherBlocked, err := l.Blocked(ctx, "jane@demo.com")
	require.NoError(t, err)
	assert.False(t, otherBlocked)
}

func TestBlockExpires(t *testing.T) {
	ctx := context.Background()
	l, store, clock := newTestLimiter()

	for i := 0; i < 5; i++ {
		_, err := l.RecordFailure(ctx, "k")
		require.NoError(t, err)
	}
	clock.Advance(5*time.Minute + time.Second)

	_, blocked, err := l.Blocked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, store.Len())
}

func TestWindowRestartsCount(t *testing.T) {
	ctx := context.Background()
	l, _, clock := newTestLimiter()

	for i := 0; i < 4; i++ {
		_, err := l.RecordFailure(ctx, "k")
		require.NoError(t, err)
	}
	clock.Advance(6 * time.Minute)

	blocked, err := l.RecordFailure(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		_, err := l.RecordFailure(ctx, "k")
		require.NoError(t, err)
	}
	require.NoError(t, l.Reset(ctx, "k"))

	_, blocked, err := l.Blocked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, blocked)
}
