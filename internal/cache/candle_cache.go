package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/market"
)

// CandleCache stores candle series as JSON in a Store. It implements market.Cache;
// store failures degrade to misses.
type CandleCache struct {
	store Store
	log   *logging.Logger
}

// NewCandleCache wraps store
func NewCandleCache(store Store) *CandleCache {
	return &CandleCache{
		store: store,
		log:   logging.WithComponent("cache"),
	}
}

// Get returns the cached series for key
func (c *CandleCache) Get(ctx context.Context, key string) ([]market.Candle, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrUnavailable) {
			c.log.WithError(err).Debug("Candle cache read failed", "key", key)
		}
		return nil, false
	}

	var candles []market.Candle
	if err := json.Unmarshal([]byte(raw), &candles); err != nil {
		c.log.WithError(err).Warn("Discarding corrupt cached series", "key", key)
		return nil, false
	}
	return candles, true
}

// Set stores candles under key for ttl
func (c *CandleCache) Set(ctx context.Context, key string, candles []market.Candle, ttl time.Duration) {
	data, err := json.Marshal(candles)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, string(data), ttl); err != nil && !errors.Is(err, ErrUnavailable) {
		c.log.WithError(err).Debug("Candle cache write failed", "key", key)
	}
}

var _ market.Cache = (*CandleCache)(nil)
