// internal/storage/memory/memory_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthrisk/perilgen/internal/config"
	"github.com/synthrisk/perilgen/pkg/core"
)

func testBackend(t *testing.T) *Backend {
	t.Helper()
	return New(config.MemoryConfig{
		OutputDir: t.TempDir(),
	})
}

func testRun() *core.Run {
	return &core.Run{
		Tag:              "test-run",
		StartTime:        time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Anchor:           time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		NumSteps:         40,
		SimulationHours:  6,
		GeneratorVersion: "1.0.0",
	}
}

func TestBackend_InitClose(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())
}

func TestBackend_StartRunAssignsID(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())

	first := testRun()
	require.NoError(t, b.StartRun(first))
	assert.Equal(t, uint(1), first.ID)

	second := testRun()
	require.NoError(t, b.StartRun(second))
	assert.Equal(t, uint(2), second.ID)
}

func TestBackend_StartRunResetsState(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))

	require.NoError(t, b.AddStormEvent(&core.StormEvent{EventID: "TC-EVENT-abc123"}))
	require.NoError(t, b.AddGauge(&core.FloodGauge{GaugeID: "GAUGE-1a2b3c4d"}))
	require.NoError(t, b.AddProperty(&core.Property{PropertyID: "PROP-9f8e7d6c"}))

	require.NoError(t, b.StartRun(testRun()))

	counts := b.Counts()
	for table, n := range counts {
		assert.Zero(t, n, "table %s should be empty after a new run starts", table)
	}
}

func TestBackend_AddStormEventAndSeries(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))

	event := &core.StormEvent{
		EventID:   "TC-EVENT-abc123",
		Name:      "Storm Alice",
		Type:      "TC",
		StartDate: "2026-03-14T00:00:00Z",
		EndDate:   "2026-03-16T12:00:00Z",
	}
	require.NoError(t, b.AddStormEvent(event))

	series := &core.Series{
		SeriesID:    "TC-EVENT-abc123",
		Description: "Storm Alice track",
		Timeseries:  []*core.Record{core.NewRecord(), core.NewRecord()},
	}
	require.NoError(t, b.AddSeries(series))

	got, ok := b.GetEventByID("TC-EVENT-abc123")
	require.True(t, ok)
	assert.Equal(t, "Storm Alice", got.Name)

	counts := b.Counts()
	assert.Equal(t, 1, counts["storm_events"])
	assert.Equal(t, 2, counts["series_records"])
}

func TestBackend_AddSeriesUnknownEvent(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))

	series := &core.Series{
		SeriesID:   "TC-EVENT-missing",
		Timeseries: []*core.Record{core.NewRecord()},
	}
	require.NoError(t, b.AddSeries(series))
	assert.Zero(t, b.Counts()["series_records"])
}

func TestBackend_AddGaugeAndReadings(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))

	gauge := &core.FloodGauge{
		GaugeID:    "GAUGE-1a2b3c4d",
		Latitude:   51.45,
		Longitude:  -0.32,
		AlertLevel: 3.2,
	}
	require.NoError(t, b.AddGauge(gauge))

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		reading := &core.GaugeReading{
			GaugeID:     "GAUGE-1a2b3c4d",
			Timestamp:   base.Add(time.Duration(i) * 15 * time.Minute).Format("2006-01-02T15:04:05Z"),
			WaterLevel:  1.1 + float64(i)*0.3,
			AlertStatus: core.StatusNormal,
		}
		require.NoError(t, b.AddReading(reading))
	}

	got, ok := b.GetGaugeByID("GAUGE-1a2b3c4d")
	require.True(t, ok)
	assert.InDelta(t, 3.2, got.AlertLevel, 1e-9)

	counts := b.Counts()
	assert.Equal(t, 1, counts["flood_gauges"])
	assert.Equal(t, 3, counts["gauge_readings"])
}

func TestBackend_AddReadingUnknownGauge(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))

	reading := &core.GaugeReading{GaugeID: "GAUGE-missing", WaterLevel: 2.0}
	require.NoError(t, b.AddReading(reading))
	assert.Zero(t, b.Counts()["gauge_readings"])
}

func TestBackend_AddPropertyAndMortgage(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))

	property := &core.Property{
		PropertyID:    "PROP-9f8e7d6c",
		Address:       "12 Riverbank Road",
		Area:          "Richmond",
		PropertyValue: decimal.NewFromInt(425000),
	}
	require.NoError(t, b.AddProperty(property))

	mortgage := &core.Mortgage{
		MortgageID: "MTG-aa11bb22",
		PropertyID: "PROP-9f8e7d6c",
		LoanAmount: decimal.NewFromInt(340000),
	}
	require.NoError(t, b.AddMortgage(mortgage))

	counts := b.Counts()
	assert.Equal(t, 1, counts["properties"])
	assert.Equal(t, 1, counts["mortgages"])
}

func TestBackend_EndRunWithoutRun(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())
	assert.Error(t, b.EndRun())
}

func TestBackend_ExportJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))

	// Insert out of ID order to check the export sorts them.
	require.NoError(t, b.AddStormEvent(&core.StormEvent{EventID: "TC-EVENT-zz9999", Name: "Storm Bravo"}))
	require.NoError(t, b.AddStormEvent(&core.StormEvent{EventID: "TC-EVENT-aa1111", Name: "Storm Alice"}))

	record := core.NewRecord()
	record.Set("timestamp", "2026-03-14T00:00:00Z")
	require.NoError(t, b.AddSeries(&core.Series{
		SeriesID:   "TC-EVENT-aa1111",
		Timeseries: []*core.Record{record},
	}))

	require.NoError(t, b.AddGauge(&core.FloodGauge{GaugeID: "GAUGE-1a2b3c4d"}))
	require.NoError(t, b.AddReading(&core.GaugeReading{
		GaugeID:    "GAUGE-1a2b3c4d",
		Timestamp:  "2026-03-14T00:15:00Z",
		WaterLevel: 1.4,
	}))
	require.NoError(t, b.AddProperty(&core.Property{PropertyID: "PROP-9f8e7d6c"}))
	require.NoError(t, b.AddMortgage(&core.Mortgage{MortgageID: "MTG-aa11bb22"}))

	require.NoError(t, b.EndRun())

	path := b.GetExportedFilePath()
	require.NotEmpty(t, path)
	assert.Equal(t, "test-run_20260314_093000.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export RunExport
	require.NoError(t, json.Unmarshal(data, &export))

	assert.Equal(t, "test-run", export.Tag)
	assert.Equal(t, "1.0.0", export.GeneratorVersion)
	assert.Equal(t, "2026-03-14T09:30:00Z", export.StartTime)
	assert.Equal(t, "2026-03-14T00:00:00Z", export.Anchor)
	assert.Equal(t, 40, export.NumSteps)
	assert.Equal(t, 6, export.SimulationHours)

	require.Len(t, export.StormEvents, 2)
	assert.Equal(t, "TC-EVENT-aa1111", export.StormEvents[0].EventID)
	assert.Equal(t, "TC-EVENT-zz9999", export.StormEvents[1].EventID)
	assert.Len(t, export.StormEvents[0].Timeseries, 1)
	assert.Empty(t, export.StormEvents[1].Timeseries)

	require.Len(t, export.FloodGauges, 1)
	assert.Len(t, export.FloodGauges[0].Readings, 1)
	assert.Len(t, export.Properties, 1)
	assert.Len(t, export.Mortgages, 1)
}

func TestBackend_ExportGzip(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))
	require.NoError(t, b.AddStormEvent(&core.StormEvent{EventID: "TC-EVENT-abc123"}))
	require.NoError(t, b.EndRun())

	path := b.GetExportedFilePath()
	assert.Equal(t, "test-run_20260314_093000.json.gz", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export RunExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	require.Len(t, export.StormEvents, 1)
	assert.Equal(t, "TC-EVENT-abc123", export.StormEvents[0].EventID)
}

func TestBackend_ExportFilenameSanitized(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Init())

	run := testRun()
	run.Tag = "Thames Watch: Q1"
	require.NoError(t, b.StartRun(run))
	require.NoError(t, b.EndRun())

	assert.Equal(t, "Thames_Watch__Q1_20260314_093000.json", filepath.Base(b.GetExportedFilePath()))
}

func TestBackend_ExportMetadata(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Init())

	// Before any run starts the metadata is empty.
	assert.Equal(t, core.UploadMetadata{}, b.GetExportMetadata())

	require.NoError(t, b.StartRun(testRun()))
	require.NoError(t, b.EndRun())

	meta := b.GetExportMetadata()
	assert.Equal(t, "test-run", meta.Tag)
	assert.Equal(t, "2026-03-14T00:00:00Z", meta.Anchor)
	assert.Equal(t, 40, meta.NumSteps)
	assert.Equal(t, 6, meta.SimulationHours)
}
