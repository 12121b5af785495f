package cache

import (
	"sync"

	"github.com/synthrisk/perilgen/pkg/core"
)

// SeriesCache maps storm event IDs to their built time series for the current run
type SeriesCache struct {
	mu     sync.RWMutex
	series map[string]*core.Series
}

// NewSeriesCache creates a new SeriesCache
func NewSeriesCache() *SeriesCache {
	return &SeriesCache{
		series: make(map[string]*core.Series),
	}
}

// Get retrieves a series by storm event ID
func (c *SeriesCache) Get(eventID string) (*core.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.series[eventID]
	return s, ok
}

// Set stores a series under its storm event ID
func (c *SeriesCache) Set(eventID string, s *core.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[eventID] = s
}

// Delete removes a series by storm event ID
func (c *SeriesCache) Delete(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.series, eventID)
}

// Len returns the number of cached series
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.series)
}

// Reset clears all series from the cache
func (c *SeriesCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = make(map[string]*core.Series)
}
