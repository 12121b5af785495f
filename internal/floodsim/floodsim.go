// Package floodsim produces hourly water-level readings for a set of flood
// gauges. Each gauge sees one flood wave: a rising phase, a plateau around
// its peak hour and a recession back toward the base level, with a small
// sinusoidal variation layered on top. Peaks are staggered two hours per
// gauge so the wave travels down the river.
package floodsim

import (
	"math"
	"time"

	"github.com/synthrisk/perilgen/internal/util"
	"github.com/synthrisk/perilgen/pkg/core"
)

// Wave shape constants. The base level sits one metre below each gauge's
// alert threshold; the wave peaks at hour 30 plus the stagger.
const (
	baseBelowAlert = 1.0
	firstPeakHour  = 30
	peakStagger    = 2
	peakHalfWidth  = 12
)

// Simulate generates one reading per gauge per hour, grouped by hour.
// Timestamps advance hourly from start. The water level on the wire is
// rounded to centimetres; alert statuses are decided on the unrounded level.
func Simulate(gauges []core.FloodGauge, hours int, start time.Time) []core.GaugeTimestep {
	timesteps := make([]core.GaugeTimestep, 0, hours)
	for hour := 0; hour < hours; hour++ {
		timestamp := start.UTC().Add(time.Duration(hour) * time.Hour).Format("2006-01-02T15:04:05Z")
		readings := make([]core.GaugeReading, 0, len(gauges))
		for i, gauge := range gauges {
			level := waterLevel(i, hour, hours, gauge.AlertLevel)
			readings = append(readings, core.GaugeReading{
				GaugeID:      gauge.GaugeID,
				Timestamp:    timestamp,
				WaterLevel:   util.Round2(level),
				AlertLevel:   gauge.AlertLevel,
				WarningLevel: gauge.WarningLevel,
				SevereLevel:  gauge.SevereLevel,
				AlertStatus:  status(level, gauge.AlertLevel, gauge.WarningLevel, gauge.SevereLevel),
			})
		}
		timesteps = append(timesteps, core.GaugeTimestep{Readings: readings})
	}
	return timesteps
}

// waterLevel evaluates the wave for one gauge at one hour.
func waterLevel(gaugeIndex, hour, hours int, alertLevel float64) float64 {
	base := alertLevel - baseBelowAlert
	peak := firstPeakHour + gaugeIndex*peakStagger

	var amplitude float64
	switch {
	case hour < peak-peakHalfWidth:
		progress := float64(hour) / float64(peak-peakHalfWidth)
		amplitude = 0.5 + progress*1.5
	case hour < peak+peakHalfWidth:
		progress := math.Abs(float64(hour-peak)) / peakHalfWidth
		amplitude = 2.0 - progress*0.5
	default:
		progress := float64(hour-peak-peakHalfWidth) / float64(hours-peak-peakHalfWidth)
		amplitude = 1.5 * (1 - progress)
	}

	variation := math.Sin(float64(hour+gaugeIndex)*0.3) * 0.2
	return base + amplitude + variation
}

// status maps a water level onto the gauge's threshold bands.
func status(level, alert, warning, severe float64) string {
	switch {
	case level >= severe:
		return core.StatusSevereWarning
	case level >= warning:
		return core.StatusFloodWarning
	case level >= alert:
		return core.StatusFloodAlert
	default:
		return core.StatusNormal
	}
}
