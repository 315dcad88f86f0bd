package redis

import (
	"context"
	"errors"
	"time"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Allow implements a fixed window rate limiter: the counter is incremented
// and expires with the window. It is advisory, not a hard mutex.
func (c *Client) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	prefixedKey := c.prefixKey("ratelimit:" + key)

	count, err := c.rdb.Incr(ctx, prefixedKey).Result()
	if err != nil {
		return false, err
	}

	// Set expiry on first request
	if count == 1 {
		c.rdb.Expire(ctx, prefixedKey, window)
	}

	return count <= limit, nil
}
