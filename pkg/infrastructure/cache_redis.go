package infrastructure

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPDFCache keeps rendered PDFs in Redis for a fixed TTL.
type RedisPDFCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func NewRedisPDFCache(client *redis.Client, ttl time.Duration) *RedisPDFCache {
	return &RedisPDFCache{client: client, ttl: ttl}
}

func (c *RedisPDFCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisPDFCache) Set(ctx context.Context, key string, pdf []byte) error {
	return c.client.Set(ctx, key, pdf, c.ttl).Err()
}
