package pricing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// PriceCache caches price tables per region to reduce API calls
type PriceCache struct {
	data  map[string]*cacheEntry
	ttl   time.Duration
	mutex sync.RWMutex
}

type cacheEntry struct {
	prices    models.PriceTable
	expiresAt time.Time
}

func NewPriceCache(ttl time.Duration) *PriceCache {
	return &PriceCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *PriceCache) Get(key string) models.PriceTable {
	c.mutex.RLock()
	entry, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		return nil
	}

	if time.Now().After(entry.expiresAt) {
		// Expired
		c.mutex.Lock()
		if current, ok := c.data[key]; ok && current == entry {
			delete(c.data, key)
		}
		c.mutex.Unlock()
		return nil
	}

	return entry.prices
}

func (c *PriceCache) Set(key string, prices models.PriceTable) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &cacheEntry{
		prices:    prices,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// CachedProvider fetches each region once. Concurrent callers for the same region
// share one in-flight fetch, and every caller gets its own copy of the table.
type CachedProvider struct {
	provider Provider
	cache    *PriceCache
	group    singleflight.Group
}

func NewCachedProvider(provider Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewPriceCache(ttl),
	}
}

func (c *CachedProvider) Name() string {
	return c.provider.Name()
}

func (c *CachedProvider) PriceTable(ctx context.Context, region string) (models.PriceTable, error) {
	if prices := c.cache.Get(region); prices != nil {
		return prices.Clone(), nil
	}

	v, err, _ := c.group.Do(region, func() (interface{}, error) {
		if prices := c.cache.Get(region); prices != nil {
			return prices, nil
		}
		prices, err := c.provider.PriceTable(ctx, region)
		if err != nil {
			return nil, err
		}
		c.cache.Set(region, prices)
		return prices, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(models.PriceTable).Clone(), nil
}
