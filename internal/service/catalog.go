package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/core/cache"
)

func cacheKey(kind string, id uint) string { return fmt.Sprintf("%s:%d", kind, id) }

// invalidate drops a cached read. Failures only cost freshness until TTL.
func invalidate(ctx context.Context, c *cache.Cache, l *zap.Logger, key string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, key); err != nil {
		l.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

type cached struct {
	cache *cache.Cache
	ttl   time.Duration
}
