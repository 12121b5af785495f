package schema

// StormEventTimeseries returns the schema for tropical cyclone event time
// series records. Declaration order here is the output order of generated
// records, so it must stay stable.
func StormEventTimeseries() *Section {
	header := NewSection().
		Add("event_id", &Field{Type: TypeText}).
		Add("time", &Field{Type: TypeDateTime}).
		Add("lead_time", &Field{Type: TypeInteger})

	dimensions := NewSection().
		Add("lat", &Field{Type: TypeDecimal}).
		Add("lon", &Field{Type: TypeDecimal}).
		Add("mrr", &Field{Type: TypeDecimal})

	surface := NewSection().
		Add("t2m", &Field{Type: TypeDecimal}).
		Add("sp", &Field{Type: TypeDecimal}).
		Add("msl", &Field{Type: TypeDecimal}).
		Add("tcwv", &Field{Type: TypeDecimal}).
		Add("u10m", &Field{Type: TypeDecimal}).
		Add("v10m", &Field{Type: TypeDecimal}).
		Add("tp", &Field{Type: TypeDecimal})

	pressureLevels := NewSection().
		Add("850hPa", pressureLevel("850")).
		Add("500hPa", pressureLevel("500"))

	cyclone := NewSection().
		Add("direction", &Field{Type: TypeDecimal}).
		Add("storm_size", &Field{Type: TypeDecimal}).
		Add("intensity_change", &Field{Type: TypeDecimal}).
		Add("pressure_change", &Field{Type: TypeDecimal}).
		Add("classification", &Field{Type: TypeMenu, Options: []string{
			"Tropical Depression", "Tropical Storm",
			"Category 1", "Category 2", "Category 3",
		}})

	event := NewSection().
		Add("Header", header).
		Add("Dimensions", dimensions).
		Add("SurfaceNearSurface", surface).
		Add("PressureLevels", pressureLevels).
		Add("CycloneParameters", cyclone)

	return NewSection().Add("EventTimeseries", event)
}

func pressureLevel(level string) *Section {
	return NewSection().
		Add("u"+level, &Field{Type: TypeDecimal}).
		Add("v"+level, &Field{Type: TypeDecimal}).
		Add("t"+level, &Field{Type: TypeDecimal}).
		Add("z"+level, &Field{Type: TypeDecimal}).
		Add("r"+level, &Field{Type: TypeDecimal})
}

// FloodGauge returns the schema for flood gauge portfolio records.
func FloodGauge() *Section {
	header := NewSection().
		Add("GaugeID", &Field{Type: TypeText}).
		Add("GaugeName", &Field{Type: TypeText}).
		Add("GaugeOwner", &Field{Type: TypeMenu, Options: GaugeOwners}).
		Add("DataCurator", &Field{Type: TypeMenu, Options: DataCurators}).
		Add("DecisionBody", &Field{Type: TypeMenu, Options: DecisionBodies})

	gaugeInfo := NewSection().
		Add("GaugeType", &Field{Type: TypeMenu, Options: GaugeTypes}).
		Add("ManufacturerName", &Field{Type: TypeMenu, Options: Manufacturers}).
		Add("InstallationDate", &Field{Type: TypeDate}).
		Add("GaugeLatitude", &Field{Type: TypeDecimal}).
		Add("GaugeLongitude", &Field{Type: TypeDecimal}).
		Add("GroundLevelMeters", &Field{Type: TypeDecimal}).
		Add("OperationalStatus", &Field{Type: TypeMenu, Options: []string{
			"Fully operational", "Maintenance required", "Temporarily offline", "Decommissioned",
		}}).
		Add("CertificationStatus", &Field{Type: TypeMenu, Options: []string{
			"Fully certified", "Provisional", "Under review", "Non-certified",
		}}).
		Add("MaintenanceSchedule", &Field{Type: TypeMenu, Options: []string{
			"Monthly", "Quarterly", "Bi-annual", "Annual",
		}})

	measurements := NewSection().
		Add("MeasurementFrequency", &Field{Type: TypeMenu, Options: []string{
			"5 minutes", "15 minutes", "30 minutes", "Hourly",
		}}).
		Add("MeasurementMethod", &Field{Type: TypeMenu, Options: []string{
			"Automatic", "Manual", "Hybrid",
		}}).
		Add("DataTransmission", &Field{Type: TypeMenu, Options: []string{
			"Automatic", "Manual", "Batch",
		}}).
		Add("DataAccessMethod", &Field{Type: TypeMenu, Options: []string{
			"PublicAPI", "WebInterface", "Email/Other",
		}})

	sensorDetails := NewSection().
		Add("GaugeInformation", gaugeInfo).
		Add("Measurements", measurements)

	sensorStats := NewSection().
		Add("HistoricalHighLevel", &Field{Type: TypeDecimal}).
		Add("HistoricalHighDate", &Field{Type: TypeDate}).
		Add("LastDateLevelExceedLevel3", &Field{Type: TypeDate}).
		Add("FrequencyExceedLevel3", &Field{Type: TypeInteger})

	floodStage := NewSection().
		Add("UK", NewSection().
			Add("FloodAlert", &Field{Type: TypeDecimal}).
			Add("FloodWarning", &Field{Type: TypeDecimal}).
			Add("SevereFloodWarning", &Field{Type: TypeDecimal}))

	gauge := NewSection().
		Add("Header", header).
		Add("SensorDetails", sensorDetails).
		Add("SensorStats", sensorStats).
		Add("FloodStage", floodStage)

	return NewSection().Add("FloodGauge", gauge)
}

// Option tables shared between the gauge schema and portfolio generation.
var (
	GaugeTypes = []string{
		"Staff gauge", "Wire-weight gauge", "Shaft encoder",
		"Bubbler system", "Pressure transducer", "Radar gauge",
		"Ultrasonic gauge",
	}

	GaugeOwners = []string{
		"Environment Agency", "Thames Water", "Local Authority",
		"Met Office", "Research Institution",
	}

	DecisionBodies = []string{
		"Environment Agency", "Department for Environment, Food and Rural Affairs",
		"Natural Resources Wales", "Scottish Environment Protection Agency",
	}

	DataCurators = []string{
		"Environment Agency", "Met Office", "CEDA Archive",
		"British Hydrological Society", "Centre for Ecology & Hydrology",
	}

	Manufacturers = []string{
		"OTT HydroMet", "Campbell Scientific", "Vaisala", "Sutron",
		"YSI", "In-Situ Inc.", "Stevens Water", "SEBA Hydrometrie",
	}
)
