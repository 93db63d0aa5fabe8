package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces limiter keys in a shared Redis.
const DefaultKeyPrefix = "lightspeed:rl"

// slidingScript prunes, counts and conditionally records in one round trip.
// Scores are milliseconds from the caller's clock.
var slidingScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local retry = window
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, count, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// fixedScript starts the window on the first hit and reports the count and
// the milliseconds left in the window.
var fixedScript = redis.NewScript(`
local key = KEYS[1]
local count = redis.call('INCR', key)
if count == 1 then
  redis.call('PEXPIRE', key, ARGV[1])
end
local ttl = redis.call('PTTL', key)
if ttl < 0 then
  redis.call('PEXPIRE', key, ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisSlidingWindow is SlidingWindow backed by a sorted set per key, so the
// ceiling holds across every process sharing the Redis.
type RedisSlidingWindow struct {
	Client redis.Scripter
	Name   string
	Prefix string
	Limit  int
	Window time.Duration
	Clock  func() time.Time
}

func (s *RedisSlidingWindow) Allow(ctx context.Context, key string) (Decision, error) {
	now := nowFrom(s.Clock).UnixMilli()
	res, err := slidingScript.Run(ctx, s.Client,
		[]string{redisKey(s.Prefix, s.Name, key)},
		now, s.Window.Milliseconds(), s.Limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("sliding window %s: %w", s.Name, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("sliding window %s: unexpected reply %v", s.Name, res)
	}

	if res[0] == 0 {
		return Decision{Allowed: false, RetryAfter: time.Duration(res[2]) * time.Millisecond}, nil
	}
	return Decision{Allowed: true, Remaining: s.Limit - int(res[1])}, nil
}

// RedisFixedWindow is FixedWindow backed by INCR and PEXPIRE. Expired windows
// are reclaimed by Redis, so no sweep is needed.
type RedisFixedWindow struct {
	Client redis.Scripter
	Name   string
	Prefix string
	Limit  int
	Window time.Duration
}

func (f *RedisFixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedScript.Run(ctx, f.Client,
		[]string{redisKey(f.Prefix, f.Name, key)},
		f.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("fixed window %s: %w", f.Name, err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("fixed window %s: unexpected reply %v", f.Name, res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if count > f.Limit {
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: f.Limit - count}, nil
}

func redisKey(prefix, name, key string) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":" + name + ":" + normalizeKey(key)
}
