package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSlidingWindowUsageAndReset(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	clock := newFakeClock()

	limiter := &RedisSlidingWindow{Client: client, Name: "chat", Limit: 3, Window: time.Minute, Clock: clock.Now}
	var _ Inspector = limiter

	idle, err := limiter.Usage(ctx, "198.51.100.4")
	require.NoError(t, err)
	assert.Equal(t, Usage{Key: "198.51.100.4", Limit: 3}, idle)

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "198.51.100.4")
		require.NoError(t, err)
		clock.Advance(10 * time.Second)
	}

	usage, err := limiter.Usage(ctx, "198.51.100.4")
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Count)
	assert.Equal(t, 30*time.Second, usage.ResetIn)

	clock.Advance(35 * time.Second)
	usage, err = limiter.Usage(ctx, "198.51.100.4")
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Count, "the first request left the window")

	require.NoError(t, limiter.Reset(ctx, "198.51.100.4"))
	usage, err = limiter.Usage(ctx, "198.51.100.4")
	require.NoError(t, err)
	assert.Zero(t, usage.Count)
}

func TestRedisFixedWindowUsageAndReset(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)

	limiter := &RedisFixedWindow{Client: client, Name: "contact", Limit: 3, Window: time.Hour}
	var _ Inspector = limiter

	for i := 0; i < 4; i++ {
		_, err := limiter.Allow(ctx, "198.51.100.4")
		require.NoError(t, err)
	}

	usage, err := limiter.Usage(ctx, "198.51.100.4")
	require.NoError(t, err)
	assert.Equal(t, 4, usage.Count, "rejected hits are counted")
	assert.InDelta(t, time.Hour, usage.ResetIn, float64(time.Second))

	require.NoError(t, limiter.Reset(ctx, "198.51.100.4"))
	assert.False(t, mr.Exists("lightspeed:rl:contact:198.51.100.4"))

	decision, err := limiter.Allow(ctx, "198.51.100.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 2, decision.Remaining)
}
