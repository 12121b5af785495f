package portfolio

import (
	"fmt"
	"time"

	"github.com/synthrisk/perilgen/internal/schema"
	"github.com/synthrisk/perilgen/internal/synth"
	"github.com/synthrisk/perilgen/pkg/core"
)

// Historical highs start at a base level and spread deterministically across
// gauges; alert thresholds are fixed fractions of each gauge's high.
const (
	historicalHighBase = 5.0
	alertFraction      = 0.6
	warningFraction    = 0.8
	severeFraction     = 0.95
)

// GenerateFloodGauges builds count gauges sited on the Thames points in
// order. Each gauge carries the full schema-shaped document built by the
// walker, with identity, location and threshold fields pinned afterwards to
// the exact values the flood simulator reads. Count is capped at the number
// of Thames points.
func GenerateFloodGauges(count int, anchor time.Time) []core.FloodGauge {
	if count > len(ThamesPoints) {
		count = len(ThamesPoints)
	}
	root := schema.FloodGauge()
	gauges := make([]core.FloodGauge, 0, count)
	for i := 0; i < count; i++ {
		gauges = append(gauges, newGauge(root, i, anchor))
	}
	return gauges
}

func newGauge(root *schema.Section, index int, anchor time.Time) core.FloodGauge {
	point := ThamesPoints[index]
	high := historicalHighBase + float64(index%30)*0.1
	gauge := core.FloodGauge{
		GaugeID:        newID("GAUGE"),
		Latitude:       point.Lat,
		Longitude:      point.Lon,
		Elevation:      point.Elevation,
		GaugeType:      schema.GaugeTypes[index%len(schema.GaugeTypes)],
		HistoricalHigh: high,
		AlertLevel:     alertFraction * high,
		WarningLevel:   warningFraction * high,
		SevereLevel:    severeFraction * high,
	}

	document := synth.Walk(root, synth.Context{
		Index:    index,
		NumSteps: len(ThamesPoints),
		SeriesID: gauge.GaugeID,
		Anchor:   anchor,
	})
	pinGauge(document, gauge, index, anchor)
	gauge.Document = document
	return gauge
}

// pinGauge overwrites the fields whose values other components depend on.
// Missing sections are created so the pins hold even under a pruned schema.
func pinGauge(document *core.Record, gauge core.FloodGauge, index int, anchor time.Time) {
	root := ensure(document, "FloodGauge")

	header := ensure(root, "Header")
	header.Set("GaugeID", gauge.GaugeID)
	header.Set("GaugeName", fmt.Sprintf("Thames %s Gauge %d",
		LondonAreas[index%len(LondonAreas)], index+1))

	// Installed 2 to 15 years before the anchor; the historical high falls
	// between installation and 30 days before the anchor.
	years := 2 + index%14
	highDays := 30 + (index*61)%(365*years-60)
	exceedDays := (index * 97) % (365 * 5)

	info := ensure(ensure(root, "SensorDetails"), "GaugeInformation")
	info.Set("InstallationDate", dateBefore(anchor, years, 0))
	info.Set("GaugeLatitude", gauge.Latitude)
	info.Set("GaugeLongitude", gauge.Longitude)
	info.Set("GroundLevelMeters", gauge.Elevation)

	stats := ensure(root, "SensorStats")
	stats.Set("HistoricalHighLevel", gauge.HistoricalHigh)
	stats.Set("HistoricalHighDate", dateBefore(anchor, 0, highDays))
	stats.Set("LastDateLevelExceedLevel3", dateBefore(anchor, 0, exceedDays))
	stats.Set("FrequencyExceedLevel3", index%11)

	uk := ensure(ensure(root, "FloodStage"), "UK")
	uk.Set("FloodAlert", gauge.AlertLevel)
	uk.Set("FloodWarning", gauge.WarningLevel)
	uk.Set("SevereFloodWarning", gauge.SevereLevel)

	thames := ensure(root, "ThamesInfo")
	thames.Set("DistanceToThamesMeters", 0)
	thames.Set("FloodRiskAssessment", riskAssessment(index, anchor))
}

// ensure returns the nested record under key, creating it when absent.
func ensure(record *core.Record, key string) *core.Record {
	if sub := record.Section(key); sub != nil {
		return sub
	}
	sub := core.NewRecord()
	record.Set(key, sub)
	return sub
}

// dateBefore formats the day the given number of days before the anchor.
func dateBefore(anchor time.Time, years, days int) string {
	return anchor.UTC().AddDate(-years, 0, -days).Format("2006-01-02")
}

// Gauges sit directly on the river, so every assessment lands in the upper
// risk band.
func riskAssessment(index int, anchor time.Time) *core.Record {
	score := 7 + index%4
	category := "High"
	if score >= 9 {
		category = "Very High"
	}
	assessment := core.NewRecord()
	assessment.Set("FloodRiskScore", score)
	assessment.Set("FloodRiskCategory", category)
	assessment.Set("LastAssessmentDate", dateBefore(anchor, 0, (index*11)%365))
	return assessment
}
