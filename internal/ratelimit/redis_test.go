package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSlidingWindow(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	clock := newFakeClock()

	limiter := &RedisSlidingWindow{
		Client: client,
		Name:   "chat",
		Limit:  3,
		Window: time.Minute,
		Clock:  clock.Now,
	}

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
		assert.Equal(t, 2-i, decision.Remaining)
		clock.Advance(10 * time.Second)
	}

	blocked, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)
	assert.Equal(t, 30*time.Second, blocked.RetryAfter)

	members, err := mr.ZMembers("lightspeed:rl:chat:203.0.113.7")
	require.NoError(t, err)
	assert.Len(t, members, 3, "rejected requests are not recorded")

	clock.Advance(30 * time.Second)
	admitted, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, admitted.Allowed)
}

func TestRedisFixedWindow(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)

	limiter := &RedisFixedWindow{
		Client: client,
		Name:   "contact",
		Prefix: "test:rl",
		Limit:  3,
		Window: time.Hour,
	}

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	blocked, err := limiter.Allow(ctx, "")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)
	assert.InDelta(t, time.Hour, blocked.RetryAfter, float64(time.Second))
	assert.True(t, mr.Exists("test:rl:contact:unknown"))

	mr.FastForward(time.Hour)

	reset, err := limiter.Allow(ctx, "")
	require.NoError(t, err)
	assert.True(t, reset.Allowed)
	assert.Equal(t, 2, reset.Remaining)
}

func TestRedisLimiterReportsStoreErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	limiter := &RedisFixedWindow{Client: client, Name: "contact", Limit: 3, Window: time.Hour}
	_, err := limiter.Allow(context.Background(), "k")
	assert.Error(t, err)
}
