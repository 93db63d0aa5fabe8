package handlers

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CredentialCheck reports degraded when present returns false. env names the
// variable an operator should set.
func CredentialCheck(env string, present func() bool) HealthChecker {
	return HealthCheckerFunc(func(context.Context) error {
		if present == nil || !present() {
			return fmt.Errorf("%w: %s is not set", ErrDegraded, env)
		}
		return nil
	})
}

// SettingCheck reports degraded naming whatever missing returns, when it
// returns anything.
func SettingCheck(missing func() string) HealthChecker {
	return HealthCheckerFunc(func(context.Context) error {
		if name := missing(); name != "" {
			return fmt.Errorf("%w: %s is not set", ErrDegraded, name)
		}
		return nil
	})
}

// Pinger is the part of a redis client used by RedisCheck.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisCheck pings the limiter store. Limiters fail open, so an unreachable
// store degrades the server rather than taking it out of rotation.
func RedisCheck(client Pinger) HealthChecker {
	return HealthCheckerFunc(func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: redis ping: %v", ErrDegraded, err)
		}
		return nil
	})
}
