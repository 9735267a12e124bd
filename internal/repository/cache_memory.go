package repository

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache implements Cache with a bounded in-process LRU. Entries carry
// their own expiry and are evicted lazily on Get.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
	logger  *zap.Logger
}

func NewMemoryCache(size int, logger *zap.Logger) (*MemoryCache, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}

	return &MemoryCache{
		entries: entries,
		now:     time.Now,
		logger:  logger.Named("memory-cache"),
	}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		c.logger.Debug("Cache entry expired", zap.String("key", key))
		return "", false, nil
	}

	c.logger.Debug("Cache hit", zap.String("key", key))
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, entry)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}
