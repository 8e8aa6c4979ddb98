package services

import (
	"context"
	"sync"
	"time"

	"callpulse/pkg/contracts/domain"
)

// LoadedTable is one load cycle's output: the merged table plus its
// load report.
type LoadedTable struct {
	Records []domain.CallRecord
	Report  domain.LoadReport
}

// LoadFunc performs one full re-scan of the data directory.
type LoadFunc func(ctx context.Context) (*LoadedTable, error)

// TableCache memoizes the merged table between load cycles. A cached
// value stays valid for the TTL window; Invalidate forces the next
// GetOrRefresh to re-scan. The cache holds exactly one value and is
// safe for concurrent readers.
type TableCache struct {
	mu          sync.RWMutex
	value       *LoadedTable
	lastRefresh time.Time
	ttl         time.Duration
	load        LoadFunc

	hitCount  int64
	missCount int64
}

// NewTableCache creates a TableCache around a load function.
func NewTableCache(ttl time.Duration, load LoadFunc) *TableCache {
	return &TableCache{ttl: ttl, load: load}
}

// GetOrRefresh returns the cached table when still valid, otherwise it
// runs the load function and caches the result. A failed refresh keeps
// any previously cached value untouched.
func (c *TableCache) GetOrRefresh(ctx context.Context) (*LoadedTable, error) {
	c.mu.RLock()
	if c.value != nil && time.Since(c.lastRefresh) < c.ttl {
		value := c.value
		c.mu.RUnlock()

		c.mu.Lock()
		c.hitCount++
		c.mu.Unlock()
		return value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if c.value != nil && time.Since(c.lastRefresh) < c.ttl {
		c.hitCount++
		return c.value, nil
	}

	c.missCount++
	value, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.value = value
	c.lastRefresh = time.Now()
	return value, nil
}

// Invalidate discards the cached table so the next GetOrRefresh
// re-scans the directory.
func (c *TableCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.lastRefresh = time.Time{}
}

// Stats returns hit and miss counters.
func (c *TableCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hitCount, c.missCount
}
