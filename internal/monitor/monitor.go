// Package monitor samples run health once per second: dispatcher buffer
// depths, backend write queue depths and the last write duration go to a
// status file, the run_performances table and the metrics sink. At the end
// of a run it writes a summary report next to the status file.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/synthrisk/perilgen/internal/dispatcher"
	"github.com/synthrisk/perilgen/internal/influx"
	"github.com/synthrisk/perilgen/internal/logging"
	"github.com/synthrisk/perilgen/internal/model"
	"github.com/synthrisk/perilgen/internal/pipeline"
	"github.com/synthrisk/perilgen/pkg/core"

	"gorm.io/gorm"
)

const sampleInterval = 1000 * time.Millisecond

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	DB              *gorm.DB
	LogManager      *logging.SlogManager
	Dispatcher      *dispatcher.Dispatcher
	Pipeline        *pipeline.Manager
	Influx          *influx.Manager
	Run             *core.Run
	StatusDir       string
	IsDatabaseValid func() bool
}

// Service manages run health monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetRunStatus returns the current run status. Each requested section is
// rendered as an indented JSON blob alongside the assembled performance row.
func (s *Service) GetRunStatus(
	rawBuffers bool,
	writeQueues bool,
	lastWrite bool,
) (output []string, perf model.RunPerformance) {
	buffers := s.deps.Dispatcher.QueueLengths()
	buffersObj := model.BufferLengths{
		SeriesRecords: uint16(buffers[pipeline.CmdRecordSeries]),
		GaugeReadings: uint16(buffers[pipeline.CmdRecordReading]),
		TrackPoints:   uint16(buffers[pipeline.CmdTrackPoint]),
	}

	depths := s.deps.Pipeline.QueueDepths()
	writeQueuesObj := model.WriteQueueLengths{
		StormEvents:   uint16(depths["storm_events"]),
		SeriesRecords: uint16(depths["series_records"]),
		FloodGauges:   uint16(depths["flood_gauges"]),
		GaugeReadings: uint16(depths["gauge_readings"]),
		Properties:    uint16(depths["properties"]),
		Mortgages:     uint16(depths["mortgages"]),
	}

	perf = model.RunPerformance{
		Time:                time.Now(),
		RunID:               s.deps.Run.ID,
		BufferLengths:       buffersObj,
		WriteQueueLengths:   writeQueuesObj,
		LastWriteDurationMs: float32(s.deps.Pipeline.LastWriteDuration().Milliseconds()),
	}

	if rawBuffers {
		rawBuffersStr, err := json.MarshalIndent(buffersObj, "", "  ")
		if err != nil {
			rawBuffersStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(rawBuffersStr))
	}
	if writeQueues {
		writeQueuesStr, err := json.MarshalIndent(writeQueuesObj, "", "  ")
		if err != nil {
			writeQueuesStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(writeQueuesStr))
	}
	if lastWrite {
		lastWriteStr, err := json.MarshalIndent(perf.LastWriteDurationMs, "", "  ")
		if err != nil {
			lastWriteStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
		}
		output = append(output, string(lastWriteStr))
	}

	return output, perf
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting run status monitor", "function", "monitor.Start")

		statusFile, err := os.Create(filepath.Join(s.deps.StatusDir, "status.txt"))
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		for {
			select {
			case <-s.stopChan:
				return
			default:
				time.Sleep(sampleInterval)

				// No row to reference until StartRun has assigned the ID.
				if s.deps.Run.ID == 0 {
					continue
				}

				statusStr, perf := s.GetRunStatus(true, true, true)

				if statusFile != nil {
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					for _, line := range statusStr {
						statusFile.WriteString(line + "\n")
					}
				}

				if s.deps.IsDatabaseValid() {
					if err := s.deps.DB.Create(&perf).Error; err != nil {
						logger.Error("Error writing run performance row", "error", err)
					}
				}

				s.writePerformancePoint(perf)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}

// writePerformancePoint mirrors one sample to the metrics sink.
func (s *Service) writePerformancePoint(perf model.RunPerformance) {
	if s.deps.Influx == nil {
		return
	}

	point := influx.PerformancePoint(
		s.deps.Run.Tag,
		bufferMap(perf.BufferLengths),
		queueMap(perf.WriteQueueLengths),
		float64(perf.LastWriteDurationMs),
		perf.Time,
	)
	err := s.deps.Influx.WritePoint(context.Background(), s.deps.Influx.PerformanceBucket(), point)
	if err != nil {
		s.deps.LogManager.Logger().Warn("Failed to write performance point", "error", err)
	}
}

func bufferMap(b model.BufferLengths) map[string]int {
	return map[string]int{
		"series_records": int(b.SeriesRecords),
		"gauge_readings": int(b.GaugeReadings),
		"track_points":   int(b.TrackPoints),
	}
}

func queueMap(w model.WriteQueueLengths) map[string]int {
	return map[string]int{
		"storm_events":   int(w.StormEvents),
		"series_records": int(w.SeriesRecords),
		"flood_gauges":   int(w.FloodGauges),
		"gauge_readings": int(w.GaugeReadings),
		"properties":     int(w.Properties),
		"mortgages":      int(w.Mortgages),
	}
}

// Summary is the end-of-run report.
type Summary struct {
	Tag                 string         `json:"tag"`
	RunID               uint           `json:"runId"`
	FinishedAt          time.Time      `json:"finishedAt"`
	Counts              map[string]int `json:"counts"`
	WriteQueueDepths    map[string]int `json:"writeQueueDepths,omitempty"`
	LastWriteDurationMs float64        `json:"lastWriteDurationMs"`
}

// BuildSummary snapshots record counts, outstanding write queue depths and
// the last write duration for the current run.
func (s *Service) BuildSummary() Summary {
	return Summary{
		Tag:                 s.deps.Run.Tag,
		RunID:               s.deps.Run.ID,
		FinishedAt:          time.Now().UTC(),
		Counts:              s.deps.Pipeline.Counts(),
		WriteQueueDepths:    s.deps.Pipeline.QueueDepths(),
		LastWriteDurationMs: float64(s.deps.Pipeline.LastWriteDuration().Milliseconds()),
	}
}

// WriteSummary writes the end-of-run summary as indented JSON into the
// status directory and returns the file path.
func (s *Service) WriteSummary() (string, error) {
	summary := s.BuildSummary()

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run summary: %w", err)
	}

	path := filepath.Join(s.deps.StatusDir, "summary.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run summary: %w", err)
	}

	s.deps.LogManager.Logger().Info("Run summary written", "path", path)
	return path, nil
}
