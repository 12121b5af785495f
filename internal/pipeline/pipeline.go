// Package pipeline runs the generation stages in dependency order and routes
// their output through the dispatcher into the storage backend and metric
// sinks. Stages cache what they generate and emit sink events carrying only
// identifiers and scalars; handlers resolve the full records from the caches.
package pipeline

import (
	"errors"
	"time"

	"github.com/synthrisk/perilgen/internal/cache"
	"github.com/synthrisk/perilgen/internal/influx"
	"github.com/synthrisk/perilgen/internal/logging"
	"github.com/synthrisk/perilgen/internal/storage"
)

// Sink event commands emitted by the generation stages.
const (
	CmdPortfolioEntity = ":PORTFOLIO:ENTITY:"
	CmdRecordSeries    = ":RECORD:SERIES:"
	CmdRecordReading   = ":RECORD:READING:"
	CmdTrackPoint      = ":TRACK:POINT:"
)

// Portfolio entity kinds carried as the first argument of CmdPortfolioEntity.
const (
	KindStormEvent = "event"
	KindGauge      = "gauge"
	KindProperty   = "property"
	KindMortgage   = "mortgage"
)

// timestampLayout matches the wire timestamps the generator produces.
const timestampLayout = "2006-01-02T15:04:05Z"

// ErrNotCached is returned when an event references an entity that was never
// cached. Stages run in dependency order, so this indicates a producer bug.
var ErrNotCached = errors.New("referenced entity has not been cached")

// Dependencies holds all dependencies for the pipeline manager.
type Dependencies struct {
	RunTag     string
	Portfolio  *cache.PortfolioCache
	Series     *cache.SeriesCache
	LogManager *logging.SlogManager
	Influx     *influx.Manager
}

// Manager connects generation stages, sink handlers and the storage backend.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
}

// NewManager creates a new pipeline manager.
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last write-cycle duration for monitoring.
type DBWriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// LastWriteDuration returns the duration of the backend's last write cycle.
// Returns 0 if the backend doesn't track this metric.
func (m *Manager) LastWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}

// QueueDepths reports the backend's internal write queues. Returns nil for
// backends that write synchronously.
func (m *Manager) QueueDepths() map[string]int {
	if q, ok := m.backend.(storage.Queued); ok {
		return q.QueueDepths()
	}
	return nil
}

// Counts reports accepted records per type from the backend.
func (m *Manager) Counts() map[string]int {
	if m.backend == nil {
		return map[string]int{}
	}
	return m.backend.Counts()
}
