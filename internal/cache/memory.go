package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

type memoryEntry struct {
	result    domain.AnalysisResult
	createdAt time.Time
	expiresAt time.Time
}

// MemoryCache is the fallback store used when Redis is not configured
// (local development, tests). Same contract, per-process scope.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	locks      map[string]time.Time
	maxEntries int
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 2000
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		locks:      make(map[string]time.Time),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*domain.AnalysisResult, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Now().UTC().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	result := entry.result
	return &result, true
}

func (c *MemoryCache) Put(_ context.Context, key string, result *domain.AnalysisResult, ttl time.Duration) {
	if result == nil {
		return
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = memoryEntry{
		result:    *result,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) bool {
	now := time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	if expiry, held := c.locks[lockKey(key)]; held && now.Before(expiry) {
		return false
	}
	c.locks[lockKey(key)] = now.Add(ttl)
	return true
}

func (c *MemoryCache) Unlock(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.locks, lockKey(key))
	c.mu.Unlock()
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

func (c *MemoryCache) evictOldest() {
	if len(c.entries) == 0 {
		return
	}

	type pair struct {
		key       string
		createdAt time.Time
	}
	pairs := make([]pair, 0, len(c.entries))
	for key, entry := range c.entries {
		pairs = append(pairs, pair{key: key, createdAt: entry.createdAt})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].createdAt.Before(pairs[j].createdAt)
	})
	delete(c.entries, pairs[0].key)
}
