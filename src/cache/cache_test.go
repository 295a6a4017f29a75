package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"inventory/src/cache"
	"inventory/src/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func card(id int, label string) *models.PublicAssetCard {
	return &models.PublicAssetCard{ID: id, Label: label, Status: models.AssetStatusInStock}
}

func exerciseCache(t *testing.T, c cache.AssetCardCache) {
	ctx := context.Background()

	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)

	c.Set(ctx, card(1, "Projector"))
	got, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Projector", got.Label)

	c.Set(ctx, card(1, "Projector B"))
	got, ok = c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Projector B", got.Label)

	c.Invalidate(ctx, 1)
	_, ok = c.Get(ctx, 1)
	assert.False(t, ok)

	assert.NotPanics(t, func() { c.Invalidate(ctx, 404) })
}

func TestLRUCache(t *testing.T) {
	t.Run("should store, replace and invalidate cards", func(t *testing.T) {
		exerciseCache(t, cache.NewLRUCache(4, time.Minute))
	})

	t.Run("should evict the least recently used card", func(t *testing.T) {
		ctx := context.Background()
		c := cache.NewLRUCache(2, time.Minute)
		c.Set(ctx, card(1, "a"))
		c.Set(ctx, card(2, "b"))
		_, _ = c.Get(ctx, 1)
		c.Set(ctx, card(3, "c"))

		_, ok := c.Get(ctx, 2)
		assert.False(t, ok)
		_, ok = c.Get(ctx, 1)
		assert.True(t, ok)
	})

	t.Run("should expire cards after the ttl", func(t *testing.T) {
		ctx := context.Background()
		c := cache.NewLRUCache(2, 20*time.Millisecond)
		c.Set(ctx, card(1, "a"))
		assert.Eventually(t, func() bool {
			_, ok := c.Get(ctx, 1)
			return !ok
		}, time.Second, 10*time.Millisecond)
	})
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewNoopCache()
	c.Set(ctx, card(1, "a"))
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION to run against a redis container")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "docker.io/redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	handler := cache.NewRedisHandlerFromClient(client)

	t.Run("should store, replace and invalidate cards", func(t *testing.T) {
		exerciseCache(t, cache.NewRedisCache(handler, time.Minute))
	})

	t.Run("should set the ttl on stored cards", func(t *testing.T) {
		c := cache.NewRedisCache(handler, time.Minute)
		c.Set(ctx, card(7, "Camera"))
		ttl, err := client.TTL(ctx, "inventory:asset-card:7").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("should report missing keys", func(t *testing.T) {
		var out string
		err := handler.Get(ctx, "inventory:missing", &out)
		assert.ErrorIs(t, err, cache.ErrKeyNotFound)
	})
}
