package geo

import (
	"errors"
	"math"
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/synthrisk/perilgen/pkg/core"
)

func TestParseWaypoint_Valid(t *testing.T) {
	wp, err := ParseWaypoint("51.455017,-2.628114")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wp.Lat != 51.455017 {
		t.Errorf("expected Lat=51.455017, got %f", wp.Lat)
	}
	if wp.Lon != -2.628114 {
		t.Errorf("expected Lon=-2.628114, got %f", wp.Lon)
	}
	if wp.Name != "" {
		t.Errorf("expected empty name, got %q", wp.Name)
	}
}

func TestParseWaypoint_WithName(t *testing.T) {
	wp, err := ParseWaypoint("51.38132,1.38617,Margate")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wp.Name != "Margate" {
		t.Errorf("expected name Margate, got %q", wp.Name)
	}
}

func TestParseWaypoint_NameWithComma(t *testing.T) {
	wp, err := ParseWaypoint("51.455017,-2.628114,Clifton, Bristol")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wp.Name != "Clifton, Bristol" {
		t.Errorf("expected joined name, got %q", wp.Name)
	}
}

func TestParseWaypoint_TooFewComponents(t *testing.T) {
	_, err := ParseWaypoint("51.455017")

	if err == nil {
		t.Fatal("expected error for invalid waypoint")
	}
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestParseWaypoint_InvalidLatitude(t *testing.T) {
	_, err := ParseWaypoint("abc,1.38617")

	if err == nil {
		t.Fatal("expected error for invalid latitude")
	}
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestPoint3857From4326_Origin(t *testing.T) {
	point, err := Point3857From4326(0, 0)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.X != 0 {
		t.Errorf("expected X=0 at origin, got %f", coords.X)
	}
	if coords.Y != 0 {
		t.Errorf("expected Y=0 at origin, got %f", coords.Y)
	}
}

func TestPoint3857From4326_WesternHemisphere(t *testing.T) {
	point, err := Point3857From4326(-2.628114, 51.455017)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.X >= 0 {
		t.Errorf("expected negative X for western hemisphere, got %f", coords.X)
	}
	if coords.Y <= 0 {
		t.Errorf("expected positive Y for northern hemisphere, got %f", coords.Y)
	}
}

func TestPoint3857From4326_NonFinite(t *testing.T) {
	_, err := Point3857From4326(math.NaN(), math.NaN())

	if err == nil {
		t.Fatal("expected error for non-finite coordinates")
	}
}

func TestPoint4326From3857_RoundTrip(t *testing.T) {
	point, err := Point3857From4326(-2.628114, 51.455017)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lon, lat := Point4326From3857(point)

	if math.Abs(lon-(-2.628114)) > 1e-6 {
		t.Errorf("expected lon=-2.628114 after round trip, got %f", lon)
	}
	if math.Abs(lat-51.455017) > 1e-6 {
		t.Errorf("expected lat=51.455017 after round trip, got %f", lat)
	}
}

func TestPoint4326From3857_EmptyPoint(t *testing.T) {
	lon, lat := Point4326From3857(geom.Point{})

	if lon != 0 || lat != 0 {
		t.Errorf("expected origin for empty point, got %f,%f", lon, lat)
	}
}

func TestTrack_SingleStep(t *testing.T) {
	points := Track(DefaultStart, DefaultEnd, 1)

	if len(points) != 1 {
		t.Fatalf("expected exactly one point, got %d", len(points))
	}
	// t=0: lerp contributes the start point, oscillation contributes sin(0)=0.
	if points[0].Lat != DefaultStart.Lat {
		t.Errorf("expected Lat=%f, got %f", DefaultStart.Lat, points[0].Lat)
	}
	if points[0].Lon != DefaultStart.Lon {
		t.Errorf("expected Lon=%f, got %f", DefaultStart.Lon, points[0].Lon)
	}
}

func TestTrack_ZeroSteps(t *testing.T) {
	points := Track(DefaultStart, DefaultEnd, 0)

	if points != nil {
		t.Errorf("expected nil for zero steps, got %d points", len(points))
	}
}

func TestTrack_PointCount(t *testing.T) {
	for _, n := range []int{1, 2, 4, 100} {
		points := Track(DefaultStart, DefaultEnd, n)
		if len(points) != n {
			t.Errorf("numSteps=%d: expected %d points, got %d", n, n, len(points))
		}
	}
}

func TestTrack_MatchesFormula(t *testing.T) {
	const numSteps = 10
	points := Track(DefaultStart, DefaultEnd, numSteps)

	for i, p := range points {
		progress := float64(i) / float64(numSteps-1)
		wantLat := DefaultStart.Lat + (DefaultEnd.Lat-DefaultStart.Lat)*progress +
			0.08*math.Sin(3*math.Pi*progress)
		wantLon := DefaultStart.Lon + (DefaultEnd.Lon-DefaultStart.Lon)*progress +
			0.12*math.Sin(2*math.Pi*progress)
		if p.Lat != wantLat {
			t.Errorf("point %d: expected Lat=%v, got %v", i, wantLat, p.Lat)
		}
		if p.Lon != wantLon {
			t.Errorf("point %d: expected Lon=%v, got %v", i, wantLon, p.Lon)
		}
	}
}

func TestTrack_InteriorPointsDeviateFromLerp(t *testing.T) {
	const numSteps = 9
	points := Track(DefaultStart, DefaultEnd, numSteps)

	deviated := false
	for i := 1; i < numSteps-1; i++ {
		progress := float64(i) / float64(numSteps-1)
		lerpLat := DefaultStart.Lat + (DefaultEnd.Lat-DefaultStart.Lat)*progress
		if math.Abs(points[i].Lat-lerpLat) > 1e-9 {
			deviated = true
		}
	}
	if !deviated {
		t.Error("expected interior points to deviate from the pure lerp")
	}
}

func TestTrack_Deterministic(t *testing.T) {
	a := Track(DefaultStart, DefaultEnd, 25)
	b := Track(DefaultStart, DefaultEnd, 25)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTrackLineString_Valid(t *testing.T) {
	points := Track(DefaultStart, DefaultEnd, 5)
	ls, err := TrackLineString(points)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq := ls.Coordinates()
	if seq.Length() != 5 {
		t.Errorf("expected 5 coordinates, got %d", seq.Length())
	}
	// lon/lat order in the geometry.
	first := seq.GetXY(0)
	if first.X != points[0].Lon {
		t.Errorf("expected X=%f, got %f", points[0].Lon, first.X)
	}
	if first.Y != points[0].Lat {
		t.Errorf("expected Y=%f, got %f", points[0].Lat, first.Y)
	}
}

func TestTrackLineString_TooShort(t *testing.T) {
	points := Track(DefaultStart, DefaultEnd, 1)
	_, err := TrackLineString(points)

	if err == nil {
		t.Fatal("expected error for single-point track")
	}
}

func TestTrackLineString_DegenerateTrack(t *testing.T) {
	// Two identical positions form no valid line; the geometry constructor
	// rejects them rather than producing an invalid WKB payload.
	points := []core.TrackPoint{
		{Lat: 51.4, Lon: -0.3},
		{Lat: 51.4, Lon: -0.3},
	}
	_, err := TrackLineString(points)

	if err == nil {
		t.Fatal("expected error for a track with no distinct positions")
	}
}
