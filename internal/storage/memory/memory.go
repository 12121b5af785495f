// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/synthrisk/perilgen/internal/config"
	"github.com/synthrisk/perilgen/pkg/core"
)

// EventRecord groups a storm event with its generated time series
type EventRecord struct {
	Event  core.StormEvent
	Series *core.Series
}

// GaugeRecord groups a flood gauge with its simulated readings
type GaugeRecord struct {
	Gauge    core.FloodGauge
	Readings []core.GaugeReading
}

// Backend stores run data in memory and exports to JSON
type Backend struct {
	cfg config.MemoryConfig
	run *core.Run

	events map[string]*EventRecord // keyed by EventID
	gauges map[string]*GaugeRecord // keyed by GaugeID

	properties []core.Property
	mortgages  []core.Mortgage

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:    cfg,
		events: make(map[string]*EventRecord),
		gauges: make(map[string]*GaugeRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins recording a new run
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	run.ID = b.idCounter
	b.run = run

	// Reset all collections
	b.events = make(map[string]*EventRecord)
	b.gauges = make(map[string]*GaugeRecord)
	b.properties = nil
	b.mortgages = nil

	return nil
}

// EndRun finalizes and exports the run data
func (b *Backend) EndRun() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.exportJSON()
}

// AddStormEvent registers a new storm event
func (b *Backend) AddStormEvent(e *core.StormEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[e.EventID] = &EventRecord{Event: *e}
	return nil
}

// AddGauge registers a new flood gauge
func (b *Backend) AddGauge(g *core.FloodGauge) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gauges[g.GaugeID] = &GaugeRecord{
		Gauge:    *g,
		Readings: make([]core.GaugeReading, 0),
	}
	return nil
}

// AddProperty registers a new property
func (b *Backend) AddProperty(p *core.Property) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.properties = append(b.properties, *p)
	return nil
}

// AddMortgage registers a new mortgage
func (b *Backend) AddMortgage(m *core.Mortgage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mortgages = append(b.mortgages, *m)
	return nil
}

// AddSeries attaches a built time series to its storm event
func (b *Backend) AddSeries(s *core.Series) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.events[s.SeriesID]; ok {
		record.Series = s
	}
	return nil // silently ignore if event not found
}

// AddReading appends a water level reading to its gauge
func (b *Backend) AddReading(r *core.GaugeReading) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.gauges[r.GaugeID]; ok {
		record.Readings = append(record.Readings, *r)
	}
	return nil
}

// GetEventByID looks up a storm event by its external ID
func (b *Backend) GetEventByID(eventID string) (*core.StormEvent, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.events[eventID]; ok {
		return &record.Event, true
	}
	return nil, false
}

// GetGaugeByID looks up a flood gauge by its external ID
func (b *Backend) GetGaugeByID(gaugeID string) (*core.FloodGauge, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.gauges[gaugeID]; ok {
		return &record.Gauge, true
	}
	return nil, false
}

// Counts reports stored records per type, keyed by table name
func (b *Backend) Counts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seriesRecords := 0
	for _, record := range b.events {
		if record.Series != nil {
			seriesRecords += record.Series.Len()
		}
	}
	readings := 0
	for _, record := range b.gauges {
		readings += len(record.Readings)
	}

	return map[string]int{
		"storm_events":   len(b.events),
		"series_records": seriesRecords,
		"flood_gauges":   len(b.gauges),
		"gauge_readings": readings,
		"properties":     len(b.properties),
		"mortgages":      len(b.mortgages),
	}
}
