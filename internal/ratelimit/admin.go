package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Usage is a read-only view of one key's window.
type Usage struct {
	Key   string
	Count int
	Limit int
	// ResetIn is how long until the window frees a slot. Zero when idle.
	ResetIn time.Duration
}

// Inspector is implemented by limiters whose state outlives the server
// process and can be examined or cleared by an operator.
type Inspector interface {
	Usage(ctx context.Context, key string) (Usage, error)
	Reset(ctx context.Context, key string) error
}

var slidingUsageScript = redis.NewScript(`
local key = KEYS[1]
local floor = '(' .. (tonumber(ARGV[1]) - tonumber(ARGV[2]))
local count = redis.call('ZCOUNT', key, floor, '+inf')
local reset = 0
local oldest = redis.call('ZRANGEBYSCORE', key, floor, '+inf', 'WITHSCORES', 'LIMIT', 0, 1)
if oldest[2] then
  reset = tonumber(oldest[2]) + tonumber(ARGV[2]) - tonumber(ARGV[1])
end
return {count, reset}
`)

var fixedUsageScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  ttl = 0
end
return {count, ttl}
`)

var deleteScript = redis.NewScript(`return redis.call('DEL', KEYS[1])`)

// Usage counts the requests recorded in the current window without
// recording a new one.
func (s *RedisSlidingWindow) Usage(ctx context.Context, key string) (Usage, error) {
	now := nowFrom(s.Clock).UnixMilli()
	res, err := slidingUsageScript.Run(ctx, s.Client,
		[]string{redisKey(s.Prefix, s.Name, key)},
		now, s.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Usage{}, fmt.Errorf("sliding window %s usage: %w", s.Name, err)
	}
	return usageFrom(key, s.Limit, res)
}

func (s *RedisSlidingWindow) Reset(ctx context.Context, key string) error {
	return resetKey(ctx, s.Client, redisKey(s.Prefix, s.Name, key))
}

// Usage reports the window's hit count, including rejected hits.
func (f *RedisFixedWindow) Usage(ctx context.Context, key string) (Usage, error) {
	res, err := fixedUsageScript.Run(ctx, f.Client, []string{redisKey(f.Prefix, f.Name, key)}).Int64Slice()
	if err != nil {
		return Usage{}, fmt.Errorf("fixed window %s usage: %w", f.Name, err)
	}
	return usageFrom(key, f.Limit, res)
}

func (f *RedisFixedWindow) Reset(ctx context.Context, key string) error {
	return resetKey(ctx, f.Client, redisKey(f.Prefix, f.Name, key))
}

func usageFrom(key string, limit int, res []int64) (Usage, error) {
	if len(res) != 2 {
		return Usage{}, fmt.Errorf("unexpected usage reply %v", res)
	}
	return Usage{
		Key:     normalizeKey(key),
		Count:   int(res[0]),
		Limit:   limit,
		ResetIn: time.Duration(res[1]) * time.Millisecond,
	}, nil
}

func resetKey(ctx context.Context, client redis.Scripter, key string) error {
	if err := deleteScript.Run(ctx, client, []string{key}).Err(); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}
