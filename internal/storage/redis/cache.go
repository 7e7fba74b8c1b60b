package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/ilindan-dev/seq-chat-bridge/pkg/keybuilder"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Ensure DeliveryCache implements the interface
var _ repo.DeliveryCache = (*DeliveryCache)(nil)

// DeliveryCache implements the repository.DeliveryCache interface
// using the standard go-redis client.
type DeliveryCache struct {
	redis  goredis.Cmdable
	logger zerolog.Logger
}

// NewDeliveryCache creates a new instance of the DeliveryCache.
func NewDeliveryCache(logger *zerolog.Logger, redis goredis.Cmdable) *DeliveryCache {
	return &DeliveryCache{
		redis:  redis,
		logger: logger.With().Str("layer", "redis_cache").Logger(),
	}
}

// Get retrieves a delivery from the cache.
func (c *DeliveryCache) Get(ctx context.Context, eventID string) (*model.Delivery, error) {
	key := keybuilder.RedisDeliveryKeyBuild(eventID)
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.logger.Debug().Str("key", key).Str("cache", "miss").Msg("delivery not found in cache")
			return nil, repo.ErrNotFound
		}
		c.logger.Error().Err(err).Str("key", key).Msg("failed to get key from redis")
		return nil, err
	}

	var delivery model.Delivery
	if err := json.Unmarshal([]byte(val), &delivery); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to unmarshal delivery from cache")
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	c.logger.Debug().Str("key", key).Str("cache", "hit").Msg("delivery found in cache")
	return &delivery, nil
}

// Set adds a delivery to the cache for a specified duration.
func (c *DeliveryCache) Set(ctx context.Context, d *model.Delivery, expiration time.Duration) error {
	key := keybuilder.RedisDeliveryKeyBuild(d.EventID)
	raw, err := json.Marshal(d)
	if err != nil {
		c.logger.Error().Err(err).Str("event_id", d.EventID).Msg("failed to marshal delivery for cache")
		return fmt.Errorf("failed to marshal delivery: %w", err)
	}

	if err := c.redis.Set(ctx, key, raw, expiration).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to set key in redis")
		return err
	}
	return nil
}

// Delete removes a delivery from the cache.
func (c *DeliveryCache) Delete(ctx context.Context, eventID string) error {
	key := keybuilder.RedisDeliveryKeyBuild(eventID)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to delete key from redis")
		return err
	}
	return nil
}
