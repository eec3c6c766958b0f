package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ikkim/tagmanager-backend/internal/app/model"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const categoryTreeKey = "categories:tree"

// CategoryCache keeps the flattened category tree in Redis so list
// reads skip the database. Writes to the hierarchy invalidate the key;
// the next read repopulates it. A nil client disables caching and
// every method becomes a no-op.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	return &CategoryCache{client: client, ttl: ttl}
}

func (c *CategoryCache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetTree returns the cached category list and whether it was a hit.
// Cache failures degrade to a miss, never to a request failure.
func (c *CategoryCache) GetTree(ctx context.Context) ([]model.Category, bool) {
	if !c.Enabled() {
		return nil, false
	}

	payload, err := c.client.Get(ctx, categoryTreeKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Category cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var categories []model.Category
	if err := json.Unmarshal(payload, &categories); err != nil {
		logger.Warn("Category cache holds malformed payload, dropping it", map[string]interface{}{
			"error": err.Error(),
		})
		c.Invalidate(ctx)
		return nil, false
	}

	logger.Debug("Category cache hit", map[string]interface{}{
		"count": len(categories),
	})
	return categories, true
}

func (c *CategoryCache) SetTree(ctx context.Context, categories []model.Category) {
	if !c.Enabled() {
		return
	}

	payload, err := json.Marshal(categories)
	if err != nil {
		logger.Warn("Failed to marshal categories for cache", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := c.client.Set(ctx, categoryTreeKey, payload, c.ttl).Err(); err != nil {
		logger.Warn("Category cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Invalidate drops the cached tree. Called after every create, rename
// and delete so readers never see a stale hierarchy.
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}

	if err := c.client.Del(ctx, categoryTreeKey).Err(); err != nil {
		logger.Warn("Category cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
