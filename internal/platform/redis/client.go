package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/oceanview/backend/pkg/config"
)

// Client wraps the redis connection with a key prefix so several deployments
// can share one instance.
type Client struct {
	rdb    *redis.Client
	prefix string
}

func New(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	l.Infow("redis client configured", "addr", cfg.Redis.Addr)
	return &Client{rdb: rdb, prefix: cfg.Redis.Prefix}, nil
}

func (c *Client) prefixKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func registerClose(lc fx.Lifecycle, l *zap.SugaredLogger, c *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Infow("closing redis client")
			return c.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerClose),
)
