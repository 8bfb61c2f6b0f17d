package market

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache stores fetched candle series keyed by symbol, timeframe and size
type Cache interface {
	Get(ctx context.Context, key string) ([]Candle, bool)
	Set(ctx context.Context, key string, candles []Candle, ttl time.Duration)
}

// CacheKey builds the key shared by every cache tier
func CacheKey(symbol string, timeframe Timeframe, minCount int) string {
	return fmt.Sprintf("%s:%s:%d", symbol, timeframe, minCount)
}

// MemoryCache provides in-process caching for candle data
type MemoryCache struct {
	data map[string]*cacheEntry
	mu   sync.RWMutex
	now  func() time.Time
}

type cacheEntry struct {
	candles   []Candle
	expiresAt time.Time
}

// NewMemoryCache creates a new candle cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*cacheEntry),
		now:  time.Now,
	}
}

// Get retrieves cached candles if not expired
func (c *MemoryCache) Get(_ context.Context, key string) ([]Candle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.candles, true
}

// Set stores candles with expiration
func (c *MemoryCache) Set(_ context.Context, key string, candles []Candle, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		candles:   candles,
		expiresAt: c.now().Add(ttl),
	}
}

// Clear removes expired entries
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.After(entry.expiresAt) {
			delete(c.data, key)
		}
	}
}

// Len returns the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// CachedProvider checks each cache tier in order before calling the wrapped provider.
// Hits in a lower tier are copied into the tiers above it.
type CachedProvider struct {
	next   Provider
	tiers  []Cache
	ttlFor func(Timeframe) time.Duration
}

// NewCachedProvider wraps next with the given cache tiers (fastest first)
func NewCachedProvider(next Provider, tiers ...Cache) *CachedProvider {
	return &CachedProvider{
		next:   next,
		tiers:  tiers,
		ttlFor: Timeframe.CacheTTL,
	}
}

// WithTTL replaces the per-timeframe TTL with a fixed one. Non-positive values are ignored.
func (p *CachedProvider) WithTTL(ttl time.Duration) *CachedProvider {
	if ttl > 0 {
		p.ttlFor = func(Timeframe) time.Duration { return ttl }
	}
	return p
}

// FetchCandles implements Provider
func (p *CachedProvider) FetchCandles(ctx context.Context, symbol string, timeframe Timeframe, minCount int) ([]Candle, error) {
	key := CacheKey(symbol, timeframe, minCount)
	ttl := p.ttlFor(timeframe)

	for i, tier := range p.tiers {
		if candles, ok := tier.Get(ctx, key); ok {
			for j := 0; j < i; j++ {
				p.tiers[j].Set(ctx, key, candles, ttl)
			}
			return candles, nil
		}
	}

	candles, err := p.next.FetchCandles(ctx, symbol, timeframe, minCount)
	if err != nil {
		return nil, err
	}

	for _, tier := range p.tiers {
		tier.Set(ctx, key, candles, ttl)
	}
	return candles, nil
}
