package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/synthrisk/perilgen/internal/dispatcher"
	"github.com/synthrisk/perilgen/internal/influx"
	"github.com/synthrisk/perilgen/pkg/core"
)

// RegisterHandlers registers all sink event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Portfolio entities - sync (must land in the backend before the series
	// and readings that reference them)
	d.Register(CmdPortfolioEntity, m.handlePortfolioEntity, dispatcher.Logged())

	// Complete event time series - buffered, one event per series
	d.Register(CmdRecordSeries, m.handleRecordSeries, dispatcher.Buffered(100), dispatcher.Logged())

	// High-volume gauge readings - buffered
	d.Register(CmdRecordReading, m.handleRecordReading, dispatcher.Buffered(10000), dispatcher.Logged())

	// Storm track positions - buffered
	d.Register(CmdTrackPoint, m.handleTrackPoint, dispatcher.Buffered(5000), dispatcher.Logged())
}

func (m *Manager) handlePortfolioEntity(e dispatcher.Event) (any, error) {
	if m.backend == nil {
		return nil, nil
	}
	if len(e.Args) < 2 {
		return nil, fmt.Errorf("portfolio entity event expects 2 args, got %d", len(e.Args))
	}
	kind, id := e.Args[0], e.Args[1]

	switch kind {
	case KindStormEvent:
		event, ok := m.deps.Portfolio.GetEvent(id)
		if !ok {
			return nil, fmt.Errorf("storm event %s: %w", id, ErrNotCached)
		}
		if err := m.backend.AddStormEvent(&event); err != nil {
			return nil, fmt.Errorf("failed to record storm event: %w", err)
		}
	case KindGauge:
		gauge, ok := m.deps.Portfolio.GetGauge(id)
		if !ok {
			return nil, fmt.Errorf("flood gauge %s: %w", id, ErrNotCached)
		}
		if err := m.backend.AddGauge(&gauge); err != nil {
			return nil, fmt.Errorf("failed to record flood gauge: %w", err)
		}
	case KindProperty:
		property, ok := m.deps.Portfolio.GetProperty(id)
		if !ok {
			return nil, fmt.Errorf("property %s: %w", id, ErrNotCached)
		}
		if err := m.backend.AddProperty(&property); err != nil {
			return nil, fmt.Errorf("failed to record property: %w", err)
		}
	case KindMortgage:
		mortgage, ok := m.deps.Portfolio.GetMortgage(id)
		if !ok {
			return nil, fmt.Errorf("mortgage %s: %w", id, ErrNotCached)
		}
		if err := m.backend.AddMortgage(&mortgage); err != nil {
			return nil, fmt.Errorf("failed to record mortgage: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown portfolio entity kind: %s", kind)
	}

	return nil, nil
}

func (m *Manager) handleRecordSeries(e dispatcher.Event) (any, error) {
	if m.backend == nil {
		return nil, nil
	}
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("series event expects the event id")
	}
	eventID := e.Args[0]

	s, ok := m.deps.Series.Get(eventID)
	if !ok {
		return nil, fmt.Errorf("series for event %s: %w", eventID, ErrNotCached)
	}

	if err := m.backend.AddSeries(s); err != nil {
		return nil, fmt.Errorf("failed to record series: %w", err)
	}

	// Series are never referenced again once handed off
	m.deps.Series.Delete(eventID)

	return nil, nil
}

func (m *Manager) handleRecordReading(e dispatcher.Event) (any, error) {
	if m.backend == nil {
		return nil, nil
	}
	if len(e.Args) < 4 {
		return nil, fmt.Errorf("reading event expects 4 args, got %d", len(e.Args))
	}
	gaugeID, timestamp, rawLevel, status := e.Args[0], e.Args[1], e.Args[2], e.Args[3]

	level, err := strconv.ParseFloat(rawLevel, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse water level %q: %w", rawLevel, err)
	}

	// Thresholds come from the cached gauge; the status was decided at
	// simulation time on the unrounded level and passes through untouched.
	gauge, ok := m.deps.Portfolio.GetGauge(gaugeID)
	if !ok {
		return nil, fmt.Errorf("flood gauge %s: %w", gaugeID, ErrNotCached)
	}

	reading := core.GaugeReading{
		GaugeID:      gaugeID,
		Timestamp:    timestamp,
		WaterLevel:   level,
		AlertLevel:   gauge.AlertLevel,
		WarningLevel: gauge.WarningLevel,
		SevereLevel:  gauge.SevereLevel,
		AlertStatus:  status,
	}

	if err := m.backend.AddReading(&reading); err != nil {
		return nil, fmt.Errorf("failed to record reading: %w", err)
	}

	m.mirrorReading(reading)

	return nil, nil
}

// mirrorReading sends the reading to InfluxDB. The storage write already
// succeeded, so sink failures are logged rather than returned.
func (m *Manager) mirrorReading(reading core.GaugeReading) {
	if m.deps.Influx == nil {
		return
	}

	point, err := influx.GaugeReadingPoint(m.deps.RunTag, reading)
	if err != nil {
		m.deps.LogManager.Logger().Warn("Skipping reading metric",
			"gaugeId", reading.GaugeID, "error", err)
		return
	}
	err = m.deps.Influx.WritePoint(context.Background(), m.deps.Influx.GaugeReadingsBucket(), point)
	if err != nil {
		m.deps.LogManager.Logger().Warn("Failed to mirror reading to InfluxDB",
			"gaugeId", reading.GaugeID, "error", err)
	}
}

func (m *Manager) handleTrackPoint(e dispatcher.Event) (any, error) {
	if m.deps.Influx == nil {
		return nil, nil
	}
	if len(e.Args) < 5 {
		return nil, fmt.Errorf("track point event expects 5 args, got %d", len(e.Args))
	}
	eventID := e.Args[0]

	leadTime, err := strconv.Atoi(e.Args[1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse lead time %q: %w", e.Args[1], err)
	}
	lat, err := strconv.ParseFloat(e.Args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latitude %q: %w", e.Args[2], err)
	}
	lon, err := strconv.ParseFloat(e.Args[3], 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse longitude %q: %w", e.Args[3], err)
	}
	ts, err := time.Parse(timestampLayout, e.Args[4])
	if err != nil {
		return nil, fmt.Errorf("failed to parse track timestamp %q: %w", e.Args[4], err)
	}

	point := influx.StormTrackPoint(eventID, leadTime, core.TrackPoint{Lat: lat, Lon: lon}, ts)
	err = m.deps.Influx.WritePoint(context.Background(), m.deps.Influx.StormTrackBucket(), point)
	if err != nil {
		return nil, fmt.Errorf("failed to write track point: %w", err)
	}

	return nil, nil
}
