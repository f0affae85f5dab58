// Package redisclient wraps go-redis for the pieces of the API that share
// state across instances (rate limit windows).
package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	return &Client{redisdb: redisdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Incr bumps key inside a fixed window and reports the new count and the
// time left in the window. The expiry is only set when the key is new.
func (c *Client) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := c.redisdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	if left < 0 {
		left = window
	}

	return incr.Val(), left, nil
}
