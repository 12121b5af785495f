// internal/storage/storage.go
package storage

import "github.com/synthrisk/perilgen/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management (StartRun assigns an ID to the passed pointer)
	StartRun(run *core.Run) error
	EndRun() error

	// Portfolio registration
	AddStormEvent(e *core.StormEvent) error
	AddGauge(g *core.FloodGauge) error
	AddProperty(p *core.Property) error
	AddMortgage(m *core.Mortgage) error

	// Generated data recording
	AddSeries(s *core.Series) error
	AddReading(r *core.GaugeReading) error

	// Counts reports accepted records per type, keyed by table name.
	Counts() map[string]int
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the risk platform ingest API.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}

// Queued is an optional interface for backends that buffer writes.
// Depths feed the run performance metrics.
type Queued interface {
	QueueDepths() map[string]int
}
