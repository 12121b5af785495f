// pkg/core/series.go
package core

// TrackPoint is one interpolated position on a storm track.
type TrackPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Series is the fully materialized time series for one storm event.
// Timeseries holds one schema-shaped record per time step, in step order.
type Series struct {
	SeriesID    string    `json:"event_id"`
	Description string    `json:"description"`
	Timeseries  []*Record `json:"timeseries"`
}

// Len returns the number of time steps in the series.
func (s *Series) Len() int {
	return len(s.Timeseries)
}
