package cache

import (
	"context"
	"time"

	"inventory/src/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// AssetCardCache keeps public asset cards by asset id. Implementations are
// best effort: failures behave as misses.
type AssetCardCache interface {
	Get(ctx context.Context, assetID int) (*models.PublicAssetCard, bool)
	Set(ctx context.Context, card *models.PublicAssetCard)
	Invalidate(ctx context.Context, assetID int)
}

type lruCache struct {
	lru *expirable.LRU[int, models.PublicAssetCard]
}

func NewLRUCache(size int, ttl time.Duration) AssetCardCache {
	if size <= 0 {
		size = 512
	}
	return &lruCache{lru: expirable.NewLRU[int, models.PublicAssetCard](size, nil, ttl)}
}

func (c *lruCache) Get(_ context.Context, assetID int) (*models.PublicAssetCard, bool) {
	card, ok := c.lru.Get(assetID)
	if !ok {
		return nil, false
	}
	return &card, true
}

func (c *lruCache) Set(_ context.Context, card *models.PublicAssetCard) {
	c.lru.Add(card.ID, *card)
}

func (c *lruCache) Invalidate(_ context.Context, assetID int) {
	c.lru.Remove(assetID)
}

type noopCache struct{}

// NewNoopCache returns a cache that never stores anything.
func NewNoopCache() AssetCardCache {
	return noopCache{}
}

func (noopCache) Get(context.Context, int) (*models.PublicAssetCard, bool) { return nil, false }
func (noopCache) Set(context.Context, *models.PublicAssetCard)             {}
func (noopCache) Invalidate(context.Context, int)                          {}
