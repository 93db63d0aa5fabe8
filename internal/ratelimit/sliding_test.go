package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSlidingWindowCeiling(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewSlidingWindow(10, time.Minute)
	limiter.Clock = clock.Now

	for i := 0; i < 10; i++ {
		decision, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, decision.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 9-i, decision.Remaining)
		clock.Advance(time.Second)
	}

	decision, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 50*time.Second, decision.RetryAfter)
	assert.Equal(t, 10, limiter.Count("203.0.113.7"), "rejection must not record a timestamp")

	other, err := limiter.Allow(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "clients are limited independently")
}

func TestSlidingWindowSlides(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewSlidingWindow(2, time.Minute)
	limiter.Clock = clock.Now

	first, _ := limiter.Allow(ctx, "c")
	require.True(t, first.Allowed)
	clock.Advance(30 * time.Second)
	second, _ := limiter.Allow(ctx, "c")
	require.True(t, second.Allowed)

	third, _ := limiter.Allow(ctx, "c")
	require.False(t, third.Allowed)

	// The first timestamp leaves the window exactly one window after it was recorded.
	clock.Advance(30*time.Second - time.Millisecond)
	stillBlocked, _ := limiter.Allow(ctx, "c")
	require.False(t, stillBlocked.Allowed)

	clock.Advance(time.Millisecond)
	admitted, _ := limiter.Allow(ctx, "c")
	assert.True(t, admitted.Allowed)
	assert.Equal(t, 2, limiter.Count("c"))
}

func TestSlidingWindowDropsExpiredKeys(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewSlidingWindow(10, time.Minute)
	limiter.Clock = clock.Now

	_, _ = limiter.Allow(ctx, "a")
	require.Equal(t, 1, limiter.Len())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 0, limiter.Count("a"))
	assert.Equal(t, 0, limiter.Len())
}

func TestSlidingWindowEmptyKeyIsUnknown(t *testing.T) {
	ctx := context.Background()
	limiter := NewSlidingWindow(1, time.Minute)

	first, _ := limiter.Allow(ctx, "")
	require.True(t, first.Allowed)
	second, _ := limiter.Allow(ctx, UnknownClient)
	assert.False(t, second.Allowed, "anonymous callers share one bucket")
}

func TestSlidingWindowConcurrentCallersNeverExceedLimit(t *testing.T) {
	ctx := context.Background()
	limiter := NewSlidingWindow(10, time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.Allow(ctx, "burst")
			if err == nil && decision.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}
