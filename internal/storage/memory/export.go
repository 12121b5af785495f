// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/synthrisk/perilgen/pkg/core"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// RunExport is the root JSON structure
type RunExport struct {
	GeneratorVersion string          `json:"generatorVersion"`
	Tag              string          `json:"tag"`
	StartTime        string          `json:"startTime"`
	Anchor           string          `json:"anchor"`
	NumSteps         int             `json:"numSteps"`
	SimulationHours  int             `json:"simulationHours"`
	StormEvents      []EventExport   `json:"stormEvents"`
	FloodGauges      []GaugeExport   `json:"floodGauges"`
	Properties       []core.Property `json:"properties"`
	Mortgages        []core.Mortgage `json:"mortgages"`
}

// EventExport is one storm event with its full time series
type EventExport struct {
	EventID    string         `json:"eventId"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	StartDate  string         `json:"startDate"`
	EndDate    string         `json:"endDate"`
	Timeseries []*core.Record `json:"timeseries"`
}

// GaugeExport is one flood gauge document with its simulated readings
type GaugeExport struct {
	GaugeID  string              `json:"gaugeId"`
	Document *core.Record        `json:"document"`
	Readings []core.GaugeReading `json:"readings"`
}

// exportJSON writes the run data to a JSON file, gzipped when configured
func (b *Backend) exportJSON() error {
	if b.run == nil {
		return fmt.Errorf("no active run to export")
	}

	export := b.buildExport()

	// Build filename
	tag := strings.ReplaceAll(b.run.Tag, " ", "_")
	tag = strings.ReplaceAll(tag, ":", "_")
	timestamp := b.run.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", tag, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", tag, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

// buildExport assembles the export structure. Events and gauges are sorted
// by ID so repeated exports of the same run produce identical files.
func (b *Backend) buildExport() RunExport {
	export := RunExport{
		GeneratorVersion: b.run.GeneratorVersion,
		Tag:              b.run.Tag,
		StartTime:        b.run.StartTime.UTC().Format(timestampLayout),
		Anchor:           b.run.Anchor.UTC().Format(timestampLayout),
		NumSteps:         b.run.NumSteps,
		SimulationHours:  b.run.SimulationHours,
		StormEvents:      make([]EventExport, 0, len(b.events)),
		FloodGauges:      make([]GaugeExport, 0, len(b.gauges)),
		Properties:       b.properties,
		Mortgages:        b.mortgages,
	}

	eventIDs := make([]string, 0, len(b.events))
	for id := range b.events {
		eventIDs = append(eventIDs, id)
	}
	sort.Strings(eventIDs)

	for _, id := range eventIDs {
		record := b.events[id]
		event := EventExport{
			EventID:   record.Event.EventID,
			Name:      record.Event.Name,
			Type:      record.Event.Type,
			StartDate: record.Event.StartDate,
			EndDate:   record.Event.EndDate,
		}
		if record.Series != nil {
			event.Timeseries = record.Series.Timeseries
		}
		export.StormEvents = append(export.StormEvents, event)
	}

	gaugeIDs := make([]string, 0, len(b.gauges))
	for id := range b.gauges {
		gaugeIDs = append(gaugeIDs, id)
	}
	sort.Strings(gaugeIDs)

	for _, id := range gaugeIDs {
		record := b.gauges[id]
		export.FloodGauges = append(export.FloodGauges, GaugeExport{
			GaugeID:  record.Gauge.GaugeID,
			Document: record.Gauge.Document,
			Readings: record.Readings,
		})
	}

	return export
}

func (b *Backend) writeJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data RunExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

// GetExportedFilePath returns the path of the last exported file
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last exported run for the ingest API
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.run == nil {
		return core.UploadMetadata{}
	}
	return core.UploadMetadata{
		Tag:             b.run.Tag,
		Anchor:          b.run.Anchor.UTC().Format(timestampLayout),
		NumSteps:        b.run.NumSteps,
		SimulationHours: b.run.SimulationHours,
	}
}
