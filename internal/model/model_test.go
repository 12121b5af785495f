package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"GeneratorInfo", &GeneratorInfo{}, "generator_infos"},
		{"Run", &Run{}, "runs"},
		{"RunPerformance", &RunPerformance{}, "run_performances"},
		{"StormEvent", &StormEvent{}, "storm_events"},
		{"SeriesRecord", &SeriesRecord{}, "series_records"},
		{"FloodGauge", &FloodGauge{}, "flood_gauges"},
		{"GaugeReading", &GaugeReading{}, "gauge_readings"},
		{"Property", &Property{}, "properties"},
		{"Mortgage", &Mortgage{}, "mortgages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModelListsMatch(t *testing.T) {
	// The SQLite list must migrate the same models as the postgres list so
	// the fallback database stays schema-compatible.
	assert.Equal(t, len(DatabaseModels), len(DatabaseModelsSQLite))
	for i := range DatabaseModels {
		assert.IsType(t, DatabaseModels[i], DatabaseModelsSQLite[i])
	}
}
