package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowThreePerHour(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewFixedWindow(3, time.Hour)
	limiter.Clock = clock.Now

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, decision.Allowed, "submission %d should be allowed", i+1)
		assert.Equal(t, 2-i, decision.Remaining)
		clock.Advance(10 * time.Minute)
	}

	fourth, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, fourth.Allowed)
	assert.Equal(t, 30*time.Minute, fourth.RetryAfter)

	// The window is anchored at the first submission, not the last.
	clock.Advance(30 * time.Minute)
	reset, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, reset.Allowed)
	assert.Equal(t, 2, reset.Remaining, "count resets to one on the first request after expiry")
}

func TestFixedWindowSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewFixedWindow(3, time.Hour)
	limiter.SweepThreshold = 5
	limiter.Clock = clock.Now

	for i := 0; i < 5; i++ {
		_, err := limiter.Allow(ctx, fmt.Sprintf("old-%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 5, limiter.Len())

	clock.Advance(2 * time.Hour)
	_, err := limiter.Allow(ctx, "fresh")
	require.NoError(t, err)

	assert.Equal(t, 1, limiter.Len(), "table above threshold sweeps every expired entry")
}

func TestFixedWindowNoSweepAtThreshold(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewFixedWindow(3, time.Hour)
	limiter.SweepThreshold = 5
	limiter.Clock = clock.Now

	for i := 0; i < 4; i++ {
		_, _ = limiter.Allow(ctx, fmt.Sprintf("old-%d", i))
	}
	clock.Advance(2 * time.Hour)
	_, _ = limiter.Allow(ctx, "fresh")

	assert.Equal(t, 5, limiter.Len())
}

func TestFixedWindowRejectionDoesNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	limiter := NewFixedWindow(1, time.Hour)
	limiter.Clock = clock.Now

	first, _ := limiter.Allow(ctx, "k")
	require.True(t, first.Allowed)

	clock.Advance(59 * time.Minute)
	blocked, _ := limiter.Allow(ctx, "k")
	require.False(t, blocked.Allowed)
	assert.Equal(t, time.Minute, blocked.RetryAfter)

	clock.Advance(time.Minute)
	again, _ := limiter.Allow(ctx, "k")
	assert.True(t, again.Allowed)
}
