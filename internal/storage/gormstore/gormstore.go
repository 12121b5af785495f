// Package gormstore implements the storage.Backend interface using GORM
// with internal queues and a background DB writer goroutine.
package gormstore

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/synthrisk/perilgen/internal/cache"
	"github.com/synthrisk/perilgen/internal/logging"
	"github.com/synthrisk/perilgen/internal/model"
	"github.com/synthrisk/perilgen/internal/model/convert"
	"github.com/synthrisk/perilgen/internal/queue"
	"github.com/synthrisk/perilgen/pkg/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	Portfolio  *cache.PortfolioCache
	LogManager *logging.SlogManager
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	StormEvents   *queue.Queue[model.StormEvent]
	SeriesRecords *queue.Queue[model.SeriesRecord]
	FloodGauges   *queue.Queue[model.FloodGauge]
	GaugeReadings *queue.Queue[model.GaugeReading]
	Properties    *queue.Queue[model.Property]
	Mortgages     *queue.Queue[model.Mortgage]
}

func newQueues() *queues {
	return &queues{
		StormEvents:   queue.New[model.StormEvent](),
		SeriesRecords: queue.New[model.SeriesRecord](),
		FloodGauges:   queue.New[model.FloodGauge](),
		GaugeReadings: queue.New[model.GaugeReading](),
		Properties:    queue.New[model.Property](),
		Mortgages:     queue.New[model.Mortgage](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	runID     atomic.Uint64
	stopChan  chan struct{}
	dbReady   bool
	written   map[string]*cache.SafeCounter
	lastWrite atomic.Int64 // milliseconds
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps: deps,
		written: map[string]*cache.SafeCounter{
			"storm_events":   {},
			"series_records": {},
			"flood_gauges":   {},
			"gauge_readings": {},
			"properties":     {},
			"mortgages":      {},
		},
	}
}

// Init creates internal queues, runs schema migration, and starts the DB
// writer goroutine. The queues come first so records can buffer even when
// the database is unavailable.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if b.deps.DB == nil {
		return fmt.Errorf("no database connection provided")
	}

	if err := b.setupDB(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true

	b.startDBWriter()
	return nil
}

// setupDB migrates tables and creates the default generator info row if it
// doesn't exist.
func (b *Backend) setupDB() error {
	db := b.deps.DB
	log := b.deps.LogManager.Logger()

	if !db.Migrator().HasTable(&model.GeneratorInfo{}) {
		if err := db.AutoMigrate(&model.GeneratorInfo{}); err != nil {
			log.Error("Failed to create generator_infos table", "function", "setupDB", "error", err)
			return fmt.Errorf("failed to auto-migrate GeneratorInfo: %w", err)
		}
		if err := db.Create(&model.GeneratorInfo{
			Name:        "PerilGen",
			Description: "Synthetic Thames flood peril and portfolio generator",
			Website:     "https://github.com/synthrisk/perilgen",
		}).Error; err != nil {
			return fmt.Errorf("failed to create generator_infos entry: %w", err)
		}
	}

	if db.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS postgis;`).Error; err != nil {
			return fmt.Errorf("failed to create PostGIS extension: %w", err)
		}
		log.Info("PostGIS extension created", "function", "setupDB")
	}

	log.Info("Migrating schema", "function", "setupDB")
	if db.Name() == "sqlite" {
		if err := db.AutoMigrate(model.DatabaseModelsSQLite...); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	} else {
		if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	log.Info("Database setup complete", "function", "setupDB")
	return nil
}

// Close stops the DB writer goroutine.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	return nil
}

// StartRun inserts the run row and assigns the DB-generated ID back to the
// core type. The ID is kept for the writer goroutine so every queued row is
// stamped with it at conversion time.
func (b *Backend) StartRun(run *core.Run) error {
	if b.deps.DB == nil {
		return nil
	}

	gormRun := convert.CoreToRun(*run)
	if err := b.deps.DB.Create(&gormRun).Error; err != nil {
		return fmt.Errorf("failed to insert new run: %w", err)
	}

	run.ID = gormRun.ID
	b.runID.Store(uint64(gormRun.ID))
	return nil
}

// SetRunID sets the current run ID for the DB writer (used by CLI tools).
func (b *Backend) SetRunID(id uint) {
	b.runID.Store(uint64(id))
}

// EndRun drains whatever is still queued so a batch run can exit without
// waiting for the next writer tick.
func (b *Backend) EndRun() error {
	if b.deps.DB == nil || !b.dbReady {
		return nil
	}
	b.flush()
	return nil
}

func (b *Backend) currentRunID() uint {
	return uint(b.runID.Load())
}

// AddStormEvent converts a core storm event to GORM and pushes to the write queue.
func (b *Backend) AddStormEvent(e *core.StormEvent) error {
	b.queues.StormEvents.Push(convert.CoreToStormEvent(*e, b.currentRunID()))
	return nil
}

// AddGauge converts a core flood gauge to GORM and pushes to the write queue.
func (b *Backend) AddGauge(g *core.FloodGauge) error {
	b.queues.FloodGauges.Push(convert.CoreToFloodGauge(*g, b.currentRunID()))
	return nil
}

// AddProperty converts a core property to GORM and pushes to the write queue.
func (b *Backend) AddProperty(p *core.Property) error {
	b.queues.Properties.Push(convert.CoreToProperty(*p, b.currentRunID()))
	return nil
}

// AddMortgage converts a core mortgage to GORM and pushes to the write queue.
func (b *Backend) AddMortgage(m *core.Mortgage) error {
	b.queues.Mortgages.Push(convert.CoreToMortgage(*m, b.currentRunID()))
	return nil
}

// AddSeries flattens a series into one row per timestep and queues the batch.
func (b *Backend) AddSeries(s *core.Series) error {
	rows := convert.CoreToSeriesRecords(s, b.currentRunID())
	b.queues.SeriesRecords.Push(rows...)
	return nil
}

// AddReading converts and queues a water level reading, backfilling the
// threshold columns from the cached gauge when the simulator omitted them.
func (b *Backend) AddReading(r *core.GaugeReading) error {
	row := convert.CoreToGaugeReading(*r, b.currentRunID())
	if row.AlertLevel == 0 && b.deps.Portfolio != nil {
		if gauge, ok := b.deps.Portfolio.GetGauge(r.GaugeID); ok {
			row.AlertLevel = gauge.AlertLevel
			row.WarningLevel = gauge.WarningLevel
			row.SevereLevel = gauge.SevereLevel
		}
	}
	b.queues.GaugeReadings.Push(row)
	return nil
}

// writeQueue writes all items from a queue to the database in a transaction.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, onSuccess func(int)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("Error writing batch", "queue", name, "error", err)
		tx.Rollback()
		q.Push(items...)
		return
	}

	tx.Commit()
	if onSuccess != nil {
		onSuccess(len(items))
	}
}

// flush drains every queue into the database. Referenced tables go first so
// parent rows exist before their dependents.
func (b *Backend) flush() {
	log := b.deps.LogManager.Logger()
	start := time.Now()

	writeQueue(b.deps.DB, b.queues.StormEvents, "storm events", log, b.written["storm_events"].Add)
	writeQueue(b.deps.DB, b.queues.FloodGauges, "flood gauges", log, b.written["flood_gauges"].Add)
	writeQueue(b.deps.DB, b.queues.Properties, "properties", log, b.written["properties"].Add)
	writeQueue(b.deps.DB, b.queues.Mortgages, "mortgages", log, b.written["mortgages"].Add)
	writeQueue(b.deps.DB, b.queues.SeriesRecords, "series records", log, b.written["series_records"].Add)
	writeQueue(b.deps.DB, b.queues.GaugeReadings, "gauge readings", log, b.written["gauge_readings"].Add)

	b.lastWrite.Store(time.Since(start).Milliseconds())
}

// startDBWriter starts the background goroutine that periodically drains
// queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		for {
			select {
			case <-b.stopChan:
				return
			default:
			}

			if !b.dbReady {
				time.Sleep(1 * time.Second)
				continue
			}

			b.flush()
			time.Sleep(2 * time.Second)
		}
	}()
}

// Counts reports rows accepted by the database per table.
func (b *Backend) Counts() map[string]int {
	counts := make(map[string]int, len(b.written))
	for table, counter := range b.written {
		counts[table] = counter.Value()
	}
	return counts
}

// QueueDepths reports how many converted rows are waiting per table.
func (b *Backend) QueueDepths() map[string]int {
	if b.queues == nil {
		return map[string]int{}
	}
	return map[string]int{
		"storm_events":   b.queues.StormEvents.Len(),
		"series_records": b.queues.SeriesRecords.Len(),
		"flood_gauges":   b.queues.FloodGauges.Len(),
		"gauge_readings": b.queues.GaugeReadings.Len(),
		"properties":     b.queues.Properties.Len(),
		"mortgages":      b.queues.Mortgages.Len(),
	}
}

// LastWriteDuration returns how long the most recent flush took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load()) * time.Millisecond
}
