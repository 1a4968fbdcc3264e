package resolver

import (
	"sync"

	"ppp-pricing/core/types"
)

type cacheKey struct {
	indicator types.Indicator
	territory types.Territory
}

// cache memoizes resolution results. Every table change bumps the epoch and
// drops all entries; a result computed under an older epoch is discarded.
type cache struct {
	mu      sync.RWMutex
	epoch   uint64
	entries map[cacheKey]types.ResolutionResult
}

func newCache() *cache {
	return &cache{entries: make(map[cacheKey]types.ResolutionResult)}
}

func (c *cache) get(ind types.Indicator, t types.Territory) (types.ResolutionResult, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[cacheKey{ind, t}]
	return res, c.epoch, ok
}

func (c *cache) put(epoch uint64, res types.ResolutionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	c.entries[cacheKey{res.Indicator, res.Territory}] = res
}

func (c *cache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[cacheKey]types.ResolutionResult)
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
