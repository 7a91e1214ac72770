package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "orvann:reports"

// RedisReportCache namespaces entries under a generation counter. Bumping the
// counter orphans every entry of the previous generation; orphans expire by
// TTL.
type RedisReportCache struct {
	client *redis.Client
	prefix string
}

func NewRedisReportCache(addr string, password string, db int) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisReportCache{client: client, prefix: defaultPrefix}
}

// WithPrefix returns a copy of the cache that keys under prefix.
func (c *RedisReportCache) WithPrefix(prefix string) *RedisReportCache {
	return &RedisReportCache{client: c.client, prefix: prefix}
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// Generation reads the current generation counter. A missing counter is
// generation 0.
func (c *RedisReportCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return gen, nil
}

func (c *RedisReportCache) Get(ctx context.Context, gen int64, key string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, gen int64, key string, value any, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(gen, key), payload, ttl).Err()
}

func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

func (c *RedisReportCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *RedisReportCache) key(gen int64, key string) string {
	return c.prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key
}
