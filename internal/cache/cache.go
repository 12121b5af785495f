package cache

import (
	"sync"

	"github.com/synthrisk/perilgen/pkg/core"
)

// PortfolioCache caches generated entities by their external IDs so sink
// handlers can resolve dispatcher events without rereading storage.
// Latency in these calls is critical to keep the sink queues moving.
type PortfolioCache struct {
	m          sync.Mutex
	Events     map[string]core.StormEvent
	Gauges     map[string]core.FloodGauge
	Properties map[string]core.Property
	Mortgages  map[string]core.Mortgage
}

func NewPortfolioCache() *PortfolioCache {
	return &PortfolioCache{
		m:          sync.Mutex{},
		Events:     make(map[string]core.StormEvent),
		Gauges:     make(map[string]core.FloodGauge),
		Properties: make(map[string]core.Property),
		Mortgages:  make(map[string]core.Mortgage),
	}
}

func (c *PortfolioCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Events = make(map[string]core.StormEvent)
	c.Gauges = make(map[string]core.FloodGauge)
	c.Properties = make(map[string]core.Property)
	c.Mortgages = make(map[string]core.Mortgage)
}

func (c *PortfolioCache) GetEvent(id string) (core.StormEvent, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.Events[id]; ok {
		return e, true
	}
	return core.StormEvent{}, false
}

func (c *PortfolioCache) GetGauge(id string) (core.FloodGauge, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if g, ok := c.Gauges[id]; ok {
		return g, true
	}
	return core.FloodGauge{}, false
}

func (c *PortfolioCache) GetProperty(id string) (core.Property, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if p, ok := c.Properties[id]; ok {
		return p, true
	}
	return core.Property{}, false
}

func (c *PortfolioCache) GetMortgage(id string) (core.Mortgage, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if m, ok := c.Mortgages[id]; ok {
		return m, true
	}
	return core.Mortgage{}, false
}

func (c *PortfolioCache) AddEvent(e core.StormEvent) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Events[e.EventID] = e
}

func (c *PortfolioCache) AddGauge(g core.FloodGauge) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Gauges[g.GaugeID] = g
}

func (c *PortfolioCache) AddProperty(p core.Property) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Properties[p.PropertyID] = p
}

func (c *PortfolioCache) AddMortgage(m core.Mortgage) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Mortgages[m.MortgageID] = m
}

// Counts reports the cached entities per type, keyed by table name.
func (c *PortfolioCache) Counts() map[string]int {
	c.m.Lock()
	defer c.m.Unlock()
	return map[string]int{
		"storm_events": len(c.Events),
		"flood_gauges": len(c.Gauges),
		"properties":   len(c.Properties),
		"mortgages":    len(c.Mortgages),
	}
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}

func (c *SafeCounter) Add(n int) {
	c.mu.Lock()
	c.v += n
	c.mu.Unlock()
}
