package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&GeneratorInfo{},
	&Run{},
	&StormEvent{},
	&SeriesRecord{},
	&FloodGauge{},
	&GaugeReading{},
	&Property{},
	&Mortgage{},
	&RunPerformance{},
}

// DatabaseModelsSQLite mirrors DatabaseModels for the local fallback database.
var DatabaseModelsSQLite = []interface{}{
	&GeneratorInfo{},
	&Run{},
	&StormEvent{},
	&SeriesRecord{},
	&FloodGauge{},
	&GaugeReading{},
	&Property{},
	&Mortgage{},
	&RunPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// GeneratorInfo contains information about this generator instance
type GeneratorInfo struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:127"`
	Description string `json:"description" gorm:"size:255"`
	Website     string `json:"websiteURL" gorm:"size:255"`
}

func (*GeneratorInfo) TableName() string {
	return "generator_infos"
}

// RunPerformance is the model for generator performance metrics
type RunPerformance struct {
	Time                time.Time         `json:"time" gorm:"type:timestamptz;index:idx_time"`
	RunID               uint              `json:"runId" gorm:"index:idx_runperformance_run_id"`
	Run                 Run               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	BufferLengths       BufferLengths     `json:"bufferLengths" gorm:"embedded;embeddedPrefix:buffer_"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*RunPerformance) TableName() string {
	return "run_performances"
}

// BufferLengths is the model for the dispatcher's buffered command depths
type BufferLengths struct {
	SeriesRecords uint16 `json:"seriesRecords"`
	GaugeReadings uint16 `json:"gaugeReadings"`
	TrackPoints   uint16 `json:"trackPoints"`
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	StormEvents   uint16 `json:"stormEvents"`
	SeriesRecords uint16 `json:"seriesRecords"`
	FloodGauges   uint16 `json:"floodGauges"`
	GaugeReadings uint16 `json:"gaugeReadings"`
	Properties    uint16 `json:"properties"`
	Mortgages     uint16 `json:"mortgages"`
}

////////////////////////
// GENERATION MODELS
////////////////////////

// Run is the main model for one generation run
type Run struct {
	gorm.Model
	Tag              string    `json:"tag" gorm:"size:127"`
	StartTime        time.Time `json:"runStart" gorm:"type:timestamptz;index:idx_run_start"`
	Anchor           time.Time `json:"anchor" gorm:"type:timestamptz"`
	NumSteps         int       `json:"numSteps"`
	SimulationHours  int       `json:"simulationHours"`
	GeneratorVersion string    `json:"generatorVersion" gorm:"size:64;default:1.0.0"`

	StormEvents   []StormEvent
	SeriesRecords []SeriesRecord
	FloodGauges   []FloodGauge
	GaugeReadings []GaugeReading
	Properties    []Property
	Mortgages     []Mortgage
}

func (*Run) TableName() string {
	return "runs"
}

// StormEvent is a generated tropical cyclone event. Track holds the full
// interpolated path as one LineString in 4326 lon/lat order.
type StormEvent struct {
	gorm.Model
	RunID     uint            `json:"runId" gorm:"index:idx_stormevent_run_id"`
	EventID   string          `json:"eventId" gorm:"size:32;index:idx_stormevent_event_id"`
	Name      string          `json:"name" gorm:"size:127"`
	EventType string          `json:"type" gorm:"size:64"`
	StartDate string          `json:"startDate" gorm:"size:10"`
	EndDate   string          `json:"endDate" gorm:"size:10"`
	Track     geom.LineString `json:"track"`
}

func (*StormEvent) TableName() string {
	return "storm_events"
}

// SeriesRecord is one schema-shaped timestep of a storm event's time series.
// The full nested record is kept as a JSON document; the fields queries
// filter on are lifted into columns.
type SeriesRecord struct {
	gorm.Model
	RunID     uint           `json:"runId" gorm:"index:idx_seriesrecord_run_id"`
	EventID   string         `json:"eventId" gorm:"size:32;index:idx_seriesrecord_event_id"`
	LeadTime  int            `json:"leadTime"`
	Time      time.Time      `json:"time" gorm:"type:timestamptz;index:idx_seriesrecord_time"`
	Latitude  float64        `json:"latitude" gorm:"-"`
	Longitude float64        `json:"longitude" gorm:"-"`
	Location  geom.Point     `json:"location"`
	Document  datatypes.JSON `json:"document"`
}

func (*SeriesRecord) TableName() string {
	return "series_records"
}

// FloodGauge is a generated Thames gauge
type FloodGauge struct {
	gorm.Model
	RunID          uint           `json:"runId" gorm:"index:idx_floodgauge_run_id"`
	GaugeID        string         `json:"gaugeId" gorm:"size:32;index:idx_floodgauge_gauge_id"`
	Name           string         `json:"name" gorm:"size:127"`
	GaugeType      string         `json:"gaugeType" gorm:"size:64"`
	Latitude       float64        `json:"latitude" gorm:"-"`
	Longitude      float64        `json:"longitude" gorm:"-"`
	Location       geom.Point     `json:"location"`
	Elevation      float64        `json:"elevation"`
	HistoricalHigh float64        `json:"historicalHigh"`
	AlertLevel     float64        `json:"alertLevel"`
	WarningLevel   float64        `json:"warningLevel"`
	SevereLevel    float64        `json:"severeLevel"`
	Document       datatypes.JSON `json:"document"`
}

func (*FloodGauge) TableName() string {
	return "flood_gauges"
}

// GaugeReading is one hourly water-level observation
type GaugeReading struct {
	Time         time.Time `json:"time" gorm:"type:timestamptz;index:idx_gaugereading_time"`
	RunID        uint      `json:"runId" gorm:"index:idx_gaugereading_run_id"`
	GaugeID      string    `json:"gaugeId" gorm:"size:32;index:idx_gaugereading_gauge_id"`
	WaterLevel   float64   `json:"waterLevel"`
	AlertLevel   float64   `json:"alertLevel"`
	WarningLevel float64   `json:"warningLevel"`
	SevereLevel  float64   `json:"severeLevel"`
	AlertStatus  string    `json:"alertStatus" gorm:"size:32"`
}

func (*GaugeReading) TableName() string {
	return "gauge_readings"
}

////////////////////////
// PORTFOLIO MODELS
////////////////////////

// Property is a synthetic residential property
type Property struct {
	gorm.Model
	RunID         uint            `json:"runId" gorm:"index:idx_property_run_id"`
	PropertyID    string          `json:"propertyId" gorm:"size:32;index:idx_property_property_id"`
	Address       string          `json:"address" gorm:"size:255"`
	Area          string          `json:"area" gorm:"size:64"`
	PostCode      string          `json:"postCode" gorm:"size:16"`
	Latitude      float64         `json:"latitude" gorm:"-"`
	Longitude     float64         `json:"longitude" gorm:"-"`
	Location      geom.Point      `json:"location"`
	Elevation     float64         `json:"elevation"`
	PropertyType  string          `json:"propertyType" gorm:"size:64"`
	FloorAreaSqm  float64         `json:"floorAreaSqm"`
	PropertyValue decimal.Decimal `json:"propertyValue" gorm:"type:decimal(15,2)"`
}

func (*Property) TableName() string {
	return "properties"
}

// Mortgage is a synthetic loan secured against one property
type Mortgage struct {
	gorm.Model
	RunID          uint            `json:"runId" gorm:"index:idx_mortgage_run_id"`
	MortgageID     string          `json:"mortgageId" gorm:"size:32;index:idx_mortgage_mortgage_id"`
	PropertyID     string          `json:"propertyId" gorm:"size:32;index:idx_mortgage_property_id"`
	LoanAmount     decimal.Decimal `json:"loanAmount" gorm:"type:decimal(15,2)"`
	LTVRatio       decimal.Decimal `json:"ltvRatio" gorm:"type:decimal(5,4)"`
	InterestRate   decimal.Decimal `json:"interestRate" gorm:"type:decimal(7,5)"`
	TermMonths     int             `json:"termMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment" gorm:"type:decimal(12,2)"`
	RateType       string          `json:"rateType" gorm:"size:64"`
}

func (*Mortgage) TableName() string {
	return "mortgages"
}
