package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Reset-password tokens are cached with a bounded lifetime and compared on
// use; a missing key means the link expired or was never issued.

func (c *Client) SetResetToken(ctx context.Context, residentID, tokenDigest string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefixKey("reset:"+residentID), tokenDigest, ttl).Err()
}

func (c *Client) GetResetToken(ctx context.Context, residentID string) (string, error) {
	v, err := c.rdb.Get(ctx, c.prefixKey("reset:"+residentID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (c *Client) DeleteResetToken(ctx context.Context, residentID string) error {
	return c.rdb.Del(ctx, c.prefixKey("reset:"+residentID)).Err()
}
