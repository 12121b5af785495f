// pkg/core/portfolio.go
package core

import "github.com/shopspring/decimal"

// StormEvent represents a tropical cyclone event that time series can be
// generated against. Track is filled in once the run's track is interpolated;
// it is storage detail, not part of the event's wire form.
type StormEvent struct {
	EventID   string       `json:"event_id"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Track     []TrackPoint `json:"-"`
}

// FloodGauge pairs the schema-shaped gauge document with the pinned values
// the flood simulator needs typed access to. Document marshals as the full
// nested gauge structure.
type FloodGauge struct {
	GaugeID        string
	Latitude       float64
	Longitude      float64
	Elevation      float64
	GaugeType      string
	HistoricalHigh float64
	AlertLevel     float64
	WarningLevel   float64
	SevereLevel    float64
	Document       *Record
}

// Property is a synthetic residential property.
type Property struct {
	PropertyID    string          `json:"propertyId"`
	Address       string          `json:"address"`
	Area          string          `json:"area"`
	PostCode      string          `json:"postCode"`
	Latitude      float64         `json:"latitude"`
	Longitude     float64         `json:"longitude"`
	Elevation     float64         `json:"elevation"`
	PropertyType  string          `json:"propertyType"`
	FloorAreaSqm  float64         `json:"floorAreaSqm"`
	PropertyValue decimal.Decimal `json:"propertyValue"`
}

// Mortgage is a synthetic loan secured against one property.
type Mortgage struct {
	MortgageID     string          `json:"mortgageId"`
	PropertyID     string          `json:"propertyId"`
	LoanAmount     decimal.Decimal `json:"loanAmount"`
	LTVRatio       decimal.Decimal `json:"ltvRatio"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	TermMonths     int             `json:"termMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	RateType       string          `json:"rateType"`
}
