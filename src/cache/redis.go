package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory/src/config"
	"inventory/src/models"
	"inventory/src/utils"

	"github.com/redis/go-redis/v9"
)

// RedisHandler encapsulates the Redis client and provides utility methods.
type RedisHandler struct {
	client *redis.Client
}

// NewRedisHandler initializes a new Redis handler and checks the connection.
func NewRedisHandler(ctx context.Context, cfg *config.Config) (*RedisHandler, error) {
	opts := &redis.Options{
		Addr:     cfg.Databases.Redis.Host + ":" + cfg.Databases.Redis.Port,
		Username: cfg.Databases.Redis.Username,
		Password: cfg.Databases.Redis.Password,
		DB:       cfg.Databases.Redis.Database,
	}
	if cfg.Databases.Redis.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisHandler{client: client}, nil
}

func NewRedisHandlerFromClient(client *redis.Client) *RedisHandler {
	return &RedisHandler{client: client}
}

var ErrKeyNotFound = errors.New("key does not exist")

// Set stores a JSON-encoded value with an optional expiration.
func (r *RedisHandler) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves and deserializes the value of a key into result.
func (r *RedisHandler) Get(ctx context.Context, key string, result interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	} else if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return fmt.Errorf("failed to deserialize value: %w", err)
	}
	return nil
}

func (r *RedisHandler) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisHandler) Close() error {
	return r.client.Close()
}

type redisCache struct {
	handler *RedisHandler
	ttl     time.Duration
}

// NewRedisCache shares public cards between API replicas.
func NewRedisCache(handler *RedisHandler, ttl time.Duration) AssetCardCache {
	return &redisCache{handler: handler, ttl: ttl}
}

func cardKey(assetID int) string {
	return fmt.Sprintf("inventory:asset-card:%d", assetID)
}

func (c *redisCache) Get(ctx context.Context, assetID int) (*models.PublicAssetCard, bool) {
	var card models.PublicAssetCard
	if err := c.handler.Get(ctx, cardKey(assetID), &card); err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			utils.LoggerFromContext(ctx).WithError(err).Warn("redis cache read failed")
		}
		return nil, false
	}
	return &card, true
}

func (c *redisCache) Set(ctx context.Context, card *models.PublicAssetCard) {
	if err := c.handler.Set(ctx, cardKey(card.ID), card, c.ttl); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("redis cache write failed")
	}
}

func (c *redisCache) Invalidate(ctx context.Context, assetID int) {
	if err := c.handler.Delete(ctx, cardKey(assetID)); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("redis cache invalidation failed")
	}
}
