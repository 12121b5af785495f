package core

// Alert statuses reported by the flood simulator, ordered by severity.
const (
	StatusNormal        = "Normal"
	StatusFloodAlert    = "Flood Alert"
	StatusFloodWarning  = "Flood Warning"
	StatusSevereWarning = "Severe Flood Warning"
)

// GaugeReading is one gauge's water level observation at a single timestep.
type GaugeReading struct {
	GaugeID      string  `json:"gaugeId"`
	Timestamp    string  `json:"timestamp"`
	WaterLevel   float64 `json:"waterLevel"`
	AlertLevel   float64 `json:"alertLevel"`
	WarningLevel float64 `json:"warningLevel"`
	SevereLevel  float64 `json:"severeLevel"`
	AlertStatus  string  `json:"alertStatus"`
}

// GaugeTimestep groups the readings of all gauges at one simulation hour.
type GaugeTimestep struct {
	Readings []GaugeReading `json:"readings"`
}
