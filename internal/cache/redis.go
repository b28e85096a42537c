package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	hitPrefix     = "link:"
	missingSuffix = ":missing"
	goneSuffix    = ":gone"
)

// RedisCache is the Cache backed by a real Redis instance.
type RedisCache struct {
	client *redis.Client
}

// NewRedis parses redisURL and opens a client, verifying connectivity.
func NewRedis(ctx context.Context, redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) key(domainID int64, code string) string {
	return fmt.Sprintf("%s%d:%s", hitPrefix, domainID, code)
}

func (c *RedisCache) Get(ctx context.Context, domainID int64, code string) (Outcome, Entry, error) {
	key := c.key(domainID, code)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var entry Entry
		if unmarshalErr := json.Unmarshal([]byte(raw), &entry); unmarshalErr != nil {
			return OutcomeMiss, Entry{}, fmt.Errorf("decode cached entry: %w", unmarshalErr)
		}
		return OutcomeHit, entry, nil
	}
	if !errors.Is(err, redis.Nil) {
		return OutcomeMiss, Entry{}, fmt.Errorf("redis get: %w", err)
	}

	exists, err := c.client.Exists(ctx, key+missingSuffix).Result()
	if err != nil {
		return OutcomeMiss, Entry{}, fmt.Errorf("redis exists (missing): %w", err)
	}
	if exists > 0 {
		return OutcomeHitMissing, Entry{}, nil
	}

	exists, err = c.client.Exists(ctx, key+goneSuffix).Result()
	if err != nil {
		return OutcomeMiss, Entry{}, fmt.Errorf("redis exists (gone): %w", err)
	}
	if exists > 0 {
		return OutcomeHitGone, Entry{}, nil
	}

	return OutcomeMiss, Entry{}, nil
}

func (c *RedisCache) SetHit(ctx context.Context, domainID int64, code string, entry Entry, ttl time.Duration) error {
	key := c.key(domainID, code)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, ttl)
	pipe.Del(ctx, key+missingSuffix, key+goneSuffix)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("cache hit entry: %w", err)
	}
	return nil
}

func (c *RedisCache) SetMissing(ctx context.Context, domainID int64, code string, negTTL time.Duration) error {
	key := c.key(domainID, code)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key+missingSuffix, "1", negTTL)
	pipe.Del(ctx, key, key+goneSuffix)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("cache missing entry: %w", err)
	}
	return nil
}

func (c *RedisCache) SetGone(ctx context.Context, domainID int64, code string, negTTL time.Duration) error {
	key := c.key(domainID, code)
	pipe := c.client.Pipeline()
	pipe.Set(ctx, key+goneSuffix, "1", negTTL)
	pipe.Del(ctx, key, key+missingSuffix)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("cache gone entry: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, domainID int64, code string) error {
	key := c.key(domainID, code)
	if err := c.client.Del(ctx, key, key+missingSuffix, key+goneSuffix).Err(); err != nil {
		return fmt.Errorf("invalidate cache entry: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error { return c.client.Ping(ctx).Err() }

func (c *RedisCache) Close() error { return c.client.Close() }
