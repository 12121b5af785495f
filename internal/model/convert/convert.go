// Package convert provides functions to convert generated core entities to
// GORM models.
package convert

import (
	"encoding/json"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/synthrisk/perilgen/internal/geo"
	"github.com/synthrisk/perilgen/internal/model"
	"github.com/synthrisk/perilgen/pkg/core"
)

// timestampLayout is the wire format of generated datetime values.
const timestampLayout = "2006-01-02T15:04:05Z"

// locationPoint projects a WGS84 coordinate onto the web-mercator point the
// database stores. Out-of-range coordinates yield an empty point; generated
// coordinates never leave the valid grid.
func locationPoint(lon, lat float64) geom.Point {
	point, err := geo.Point3857From4326(lon, lat)
	if err != nil {
		return geom.Point{}
	}
	return point
}

// recordJSON serializes a schema-shaped record for a JSON column, keeping
// field order.
func recordJSON(record *core.Record) datatypes.JSON {
	if record == nil {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToRun converts a core.Run to a GORM model.Run. The database assigns
// the primary key on insert.
func CoreToRun(run core.Run) model.Run {
	return model.Run{
		Tag:              run.Tag,
		StartTime:        run.StartTime,
		Anchor:           run.Anchor,
		NumSteps:         run.NumSteps,
		SimulationHours:  run.SimulationHours,
		GeneratorVersion: run.GeneratorVersion,
	}
}

// CoreToStormEvent converts a core.StormEvent to a GORM model.StormEvent.
// A track of fewer than two points leaves the geometry column empty.
func CoreToStormEvent(event core.StormEvent, runID uint) model.StormEvent {
	row := model.StormEvent{
		RunID:     runID,
		EventID:   event.EventID,
		Name:      event.Name,
		EventType: event.Type,
		StartDate: event.StartDate,
		EndDate:   event.EndDate,
	}
	if ls, err := geo.TrackLineString(event.Track); err == nil {
		row.Track = ls
	}
	return row
}

// CoreToSeriesRecords flattens a series into one row per timestep. Identity
// and coordinate columns are lifted out of the record; the full document is
// kept as ordered JSON.
func CoreToSeriesRecords(series *core.Series, runID uint) []model.SeriesRecord {
	rows := make([]model.SeriesRecord, 0, len(series.Timeseries))
	for i, record := range series.Timeseries {
		row := model.SeriesRecord{
			RunID:    runID,
			EventID:  series.SeriesID,
			LeadTime: i,
			Document: recordJSON(record),
		}
		event := record.Section("EventTimeseries")
		if header := event.Section("Header"); header != nil {
			if lead, ok := header.Get("lead_time"); ok {
				if n, ok := lead.(int); ok {
					row.LeadTime = n
				}
			}
			if value, ok := header.Get("time"); ok {
				if s, ok := value.(string); ok {
					if parsed, err := time.Parse(timestampLayout, s); err == nil {
						row.Time = parsed
					}
				}
			}
		}
		if dims := event.Section("Dimensions"); dims != nil {
			if lat, ok := dims.Get("lat"); ok {
				if f, ok := lat.(float64); ok {
					row.Latitude = f
				}
			}
			if lon, ok := dims.Get("lon"); ok {
				if f, ok := lon.(float64); ok {
					row.Longitude = f
				}
			}
			row.Location = locationPoint(row.Longitude, row.Latitude)
		}
		rows = append(rows, row)
	}
	return rows
}

// CoreToFloodGauge converts a core.FloodGauge to a GORM model.FloodGauge.
func CoreToFloodGauge(gauge core.FloodGauge, runID uint) model.FloodGauge {
	name := ""
	if header := gauge.Document.Section("FloodGauge").Section("Header"); header != nil {
		if value, ok := header.Get("GaugeName"); ok {
			if s, ok := value.(string); ok {
				name = s
			}
		}
	}
	return model.FloodGauge{
		RunID:          runID,
		GaugeID:        gauge.GaugeID,
		Name:           name,
		GaugeType:      gauge.GaugeType,
		Latitude:       gauge.Latitude,
		Longitude:      gauge.Longitude,
		Location:       locationPoint(gauge.Longitude, gauge.Latitude),
		Elevation:      gauge.Elevation,
		HistoricalHigh: gauge.HistoricalHigh,
		AlertLevel:     gauge.AlertLevel,
		WarningLevel:   gauge.WarningLevel,
		SevereLevel:    gauge.SevereLevel,
		Document:       recordJSON(gauge.Document),
	}
}

// CoreToGaugeReading converts a single reading to its GORM model row.
func CoreToGaugeReading(reading core.GaugeReading, runID uint) model.GaugeReading {
	row := model.GaugeReading{
		RunID:        runID,
		GaugeID:      reading.GaugeID,
		WaterLevel:   reading.WaterLevel,
		AlertLevel:   reading.AlertLevel,
		WarningLevel: reading.WarningLevel,
		SevereLevel:  reading.SevereLevel,
		AlertStatus:  reading.AlertStatus,
	}
	if parsed, err := time.Parse(timestampLayout, reading.Timestamp); err == nil {
		row.Time = parsed
	}
	return row
}

// CoreToGaugeReadings flattens hourly timesteps into one row per reading.
func CoreToGaugeReadings(timesteps []core.GaugeTimestep, runID uint) []model.GaugeReading {
	var rows []model.GaugeReading
	for _, step := range timesteps {
		for _, reading := range step.Readings {
			rows = append(rows, CoreToGaugeReading(reading, runID))
		}
	}
	return rows
}

// CoreToProperty converts a core.Property to a GORM model.Property.
func CoreToProperty(property core.Property, runID uint) model.Property {
	return model.Property{
		RunID:         runID,
		PropertyID:    property.PropertyID,
		Address:       property.Address,
		Area:          property.Area,
		PostCode:      property.PostCode,
		Latitude:      property.Latitude,
		Longitude:     property.Longitude,
		Location:      locationPoint(property.Longitude, property.Latitude),
		Elevation:     property.Elevation,
		PropertyType:  property.PropertyType,
		FloorAreaSqm:  property.FloorAreaSqm,
		PropertyValue: property.PropertyValue,
	}
}

// CoreToMortgage converts a core.Mortgage to a GORM model.Mortgage.
func CoreToMortgage(mortgage core.Mortgage, runID uint) model.Mortgage {
	return model.Mortgage{
		RunID:          runID,
		MortgageID:     mortgage.MortgageID,
		PropertyID:     mortgage.PropertyID,
		LoanAmount:     mortgage.LoanAmount,
		LTVRatio:       mortgage.LTVRatio,
		InterestRate:   mortgage.InterestRate,
		TermMonths:     mortgage.TermMonths,
		MonthlyPayment: mortgage.MonthlyPayment,
		RateType:       mortgage.RateType,
	}
}
