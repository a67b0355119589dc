package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps go-redis to satisfy the ListClient interface.
type RedisClient struct {
	rdb *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Fail fast if connection is bad
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisClient{rdb: rdb}, nil
}

// PushCapped prepends value to the list at key and trims it to max entries.
func (c *RedisClient) PushCapped(ctx context.Context, key string, value interface{}, max int64) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, bytes)
		pipe.LTrim(ctx, key, 0, max-1)
		return nil
	})
	return err
}

// Recent returns up to n raw entries, newest first.
func (c *RedisClient) Recent(ctx context.Context, key string, n int64) ([][]byte, error) {
	vals, err := c.rdb.LRange(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
