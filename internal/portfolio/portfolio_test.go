package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthrisk/perilgen/internal/schema"
)

var testAnchor = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestGenerateStormEvents(t *testing.T) {
	events := GenerateStormEvents(3, testAnchor)
	require.Len(t, events, 3)

	for _, event := range events {
		assert.Regexp(t, `^TC-EVENT-[0-9a-f]{8}$`, event.EventID)
		assert.Equal(t, "Tropical Cyclone", event.Type)
		assert.Equal(t, "2025-03-05", event.StartDate)
		assert.Equal(t, "2025-03-08", event.EndDate)
	}
	assert.Equal(t, "Cyclone A", events[0].Name)
	assert.Equal(t, "Cyclone B", events[1].Name)
	assert.Equal(t, "Cyclone C", events[2].Name)

	assert.NotEqual(t, events[0].EventID, events[1].EventID)
}

func TestGenerateFloodGaugesSitedOnThames(t *testing.T) {
	gauges := GenerateFloodGauges(5, testAnchor)
	require.Len(t, gauges, 5)

	for i, gauge := range gauges {
		assert.Regexp(t, `^GAUGE-[0-9a-f]{8}$`, gauge.GaugeID)
		assert.Equal(t, ThamesPoints[i].Lat, gauge.Latitude)
		assert.Equal(t, ThamesPoints[i].Lon, gauge.Longitude)
		assert.Equal(t, ThamesPoints[i].Elevation, gauge.Elevation)

		high := 5.0 + float64(i%30)*0.1
		assert.Equal(t, high, gauge.HistoricalHigh)
		assert.Equal(t, 0.6*high, gauge.AlertLevel)
		assert.Equal(t, 0.8*high, gauge.WarningLevel)
		assert.Equal(t, 0.95*high, gauge.SevereLevel)
		assert.Equal(t, schema.GaugeTypes[i%len(schema.GaugeTypes)], gauge.GaugeType)
	}
}

func TestGenerateFloodGaugesCappedAtThamesPoints(t *testing.T) {
	gauges := GenerateFloodGauges(500, testAnchor)
	assert.Len(t, gauges, len(ThamesPoints))
}

func TestGaugeDocumentPins(t *testing.T) {
	gauges := GenerateFloodGauges(2, testAnchor)
	require.Len(t, gauges, 2)

	first := gauges[0]
	root := first.Document.Section("FloodGauge")
	require.NotNil(t, root)

	header := root.Section("Header")
	require.NotNil(t, header)
	gaugeID, _ := header.Get("GaugeID")
	assert.Equal(t, first.GaugeID, gaugeID)
	name, _ := header.Get("GaugeName")
	assert.Equal(t, "Thames Chelsea Gauge 1", name)

	info := root.Section("SensorDetails").Section("GaugeInformation")
	require.NotNil(t, info)
	lat, _ := info.Get("GaugeLatitude")
	assert.Equal(t, first.Latitude, lat)
	ground, _ := info.Get("GroundLevelMeters")
	assert.Equal(t, first.Elevation, ground)

	uk := root.Section("FloodStage").Section("UK")
	require.NotNil(t, uk)
	alert, _ := uk.Get("FloodAlert")
	assert.Equal(t, first.AlertLevel, alert)
	warning, _ := uk.Get("FloodWarning")
	assert.Equal(t, first.WarningLevel, warning)
	severe, _ := uk.Get("SevereFloodWarning")
	assert.Equal(t, first.SevereLevel, severe)

	stats := root.Section("SensorStats")
	require.NotNil(t, stats)
	highLevel, _ := stats.Get("HistoricalHighLevel")
	assert.Equal(t, first.HistoricalHigh, highLevel)

	thames := root.Section("ThamesInfo")
	require.NotNil(t, thames)
	distance, _ := thames.Get("DistanceToThamesMeters")
	assert.Equal(t, 0, distance)
	risk := thames.Section("FloodRiskAssessment")
	require.NotNil(t, risk)
	score, _ := risk.Get("FloodRiskScore")
	assert.Equal(t, 7, score)

	second := gauges[1].Document.Section("FloodGauge").Section("Header")
	secondName, _ := second.Get("GaugeName")
	assert.Equal(t, "Thames Kensington Gauge 2", secondName)
}

func TestGaugeDocumentKeepsSchemaOrder(t *testing.T) {
	gauge := GenerateFloodGauges(1, testAnchor)[0]
	root := gauge.Document.Section("FloodGauge")
	require.NotNil(t, root)
	assert.Equal(t,
		[]string{"Header", "SensorDetails", "SensorStats", "FloodStage", "ThamesInfo"},
		root.Keys())
}

func TestGenerateProperties(t *testing.T) {
	properties := GenerateProperties(12)
	require.Len(t, properties, 12)

	for i, property := range properties {
		assert.Regexp(t, `^PROP-[0-9a-f]{8}$`, property.PropertyID)
		assert.Equal(t, LondonAreas[i%len(LondonAreas)], property.Area)
		assert.True(t, property.PropertyValue.GreaterThanOrEqual(minPropertyValue),
			"value %s below floor", property.PropertyValue)
		assert.True(t, property.PropertyValue.LessThanOrEqual(maxPropertyValue),
			"value %s above ceiling", property.PropertyValue)
		assert.NotEmpty(t, property.PostCode)
		assert.Greater(t, property.FloorAreaSqm, 0.0)
	}

	// Chelsea carries the highest area factor, so the first property should
	// be worth more than its Dagenham counterpart of the same floor area.
	chelsea := properties[0]
	assert.Equal(t, "Chelsea", chelsea.Area)
}

func TestGeneratePropertiesDeterministicApartFromIDs(t *testing.T) {
	a := GenerateProperties(6)
	b := GenerateProperties(6)
	for i := range a {
		assert.Equal(t, a[i].Area, b[i].Area)
		assert.Equal(t, a[i].PropertyType, b[i].PropertyType)
		assert.True(t, a[i].PropertyValue.Equal(b[i].PropertyValue))
		assert.NotEqual(t, a[i].PropertyID, b[i].PropertyID)
	}
}

func TestGenerateMortgagesFrom(t *testing.T) {
	properties := GenerateProperties(8)
	mortgages := GenerateMortgagesFrom(properties)
	require.Len(t, mortgages, len(properties))

	for i, mortgage := range mortgages {
		assert.Regexp(t, `^MTG-[0-9a-f]{8}$`, mortgage.MortgageID)
		assert.Equal(t, properties[i].PropertyID, mortgage.PropertyID)

		wantLoan := properties[i].PropertyValue.Mul(loanToValue).Round(2)
		assert.True(t, mortgage.LoanAmount.Equal(wantLoan),
			"loan %s, want %s", mortgage.LoanAmount, wantLoan)

		months := decimal.NewFromInt(int64(mortgage.TermMonths))
		totalRepaid := mortgage.MonthlyPayment.Mul(months)
		assert.True(t, totalRepaid.GreaterThan(mortgage.LoanAmount),
			"total repaid %s must exceed principal %s", totalRepaid, mortgage.LoanAmount)

		assert.GreaterOrEqual(t, mortgage.TermMonths, 25*12)
		assert.LessOrEqual(t, mortgage.TermMonths, 35*12)
	}
}

func TestMonthlyPaymentFormula(t *testing.T) {
	loan := decimal.NewFromInt(300000)

	payment := monthlyPayment(loan, 0.0325, 300)
	// 300k over 25 years at 3.25% is about £1,462 a month.
	assert.True(t, payment.GreaterThan(decimal.NewFromInt(1400)), "payment %s", payment)
	assert.True(t, payment.LessThan(decimal.NewFromInt(1520)), "payment %s", payment)

	flat := monthlyPayment(loan, 0, 300)
	assert.True(t, flat.Equal(decimal.NewFromInt(1000)), "zero-rate payment %s", flat)
}
