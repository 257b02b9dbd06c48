package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 5
	defaultWindow = time.Minute
)

// LoginLimiter bounds login attempts per username+address using a fixed
// window counter in Redis. Key format: login_attempts:<key>
type LoginLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLoginLimiter creates a LoginLimiter allowing defaultLimit attempts per
// defaultWindow.
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{client: client, limit: defaultLimit, window: defaultWindow}
}

// Allow counts an attempt and reports whether it is within the window limit.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("login_attempts:%s", key)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("login limiter incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("login limiter expire: %w", err)
		}
	}
	return n <= l.limit, nil
}
