package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

type postedValue struct {
	ExternalID string    `json:"externalId"`
	PostedAt   time.Time `json:"postedAt"`
}

func (c *RedisCache) StorePosted(ctx context.Context, postID int64, externalID string, postedAt time.Time) error {
	key := fmt.Sprintf("post:%d", postID)
	val := postedValue{
		ExternalID: externalID,
		PostedAt:   postedAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
