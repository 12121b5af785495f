package geo

import (
	"math"

	"github.com/synthrisk/perilgen/pkg/core"
)

// Oscillation constants for storm tracks. These are design constants, not
// configuration: regenerated output must match previously published datasets
// byte for byte.
const (
	latAmplitude  = 0.08
	latHalfCycles = 3
	lonAmplitude  = 0.12
	lonHalfCycles = 2
)

// Waypoint is a named geographic endpoint of a storm track.
type Waypoint struct {
	Name string
	Lat  float64
	Lon  float64
}

// Default storm track endpoints.
var (
	DefaultStart = Waypoint{Name: "Clifton Suspension Bridge", Lat: 51.455017, Lon: -2.628114}
	DefaultEnd   = Waypoint{Name: "Margate", Lat: 51.38132, Lon: 1.38617}
)

// Track interpolates numSteps positions between start and end, each perturbed
// by an independent sine oscillation in latitude and longitude. Progress runs
// t = i/(numSteps-1); a single step yields one point at t=0. The endpoints
// are not clamped to the named waypoints: the oscillation term simply
// evaluates at t=0 and t=1, which happens to be zero for whole half-cycles.
func Track(start, end Waypoint, numSteps int) []core.TrackPoint {
	if numSteps < 1 {
		return nil
	}
	points := make([]core.TrackPoint, numSteps)
	for i := 0; i < numSteps; i++ {
		t := 0.0
		if numSteps > 1 {
			t = float64(i) / float64(numSteps-1)
		}
		points[i] = core.TrackPoint{
			Lat: start.Lat + (end.Lat-start.Lat)*t + latAmplitude*math.Sin(latHalfCycles*math.Pi*t),
			Lon: start.Lon + (end.Lon-start.Lon)*t + lonAmplitude*math.Sin(lonHalfCycles*math.Pi*t),
		}
	}
	return points
}
