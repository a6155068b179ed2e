package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dealer/internal/classification/models"
	id "dealer/pkg/domain"
	"dealer/pkg/platform/sentinel"
)

const classificationKeyPrefix = "dealer:classification:"

// RedisCache shares classifications across instances. Entries expire by TTL
// and are deleted after every committed sale or cancellation for the client.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func key(clientID id.ClientID) string {
	return classificationKeyPrefix + clientID.String()
}

func (c *RedisCache) Get(ctx context.Context, clientID id.ClientID) (*models.Classification, error) {
	raw, err := c.client.Get(ctx, key(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get classification: %w", err)
	}
	var out models.Classification
	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		return nil, sentinel.ErrNotFound
	}
	return &out, nil
}

func (c *RedisCache) Set(ctx context.Context, value *models.Classification, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal classification: %w", err)
	}
	if err := c.client.Set(ctx, key(value.ClientID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set classification: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, clientID id.ClientID) error {
	if err := c.client.Del(ctx, key(clientID)).Err(); err != nil {
		return fmt.Errorf("redis delete classification: %w", err)
	}
	return nil
}
