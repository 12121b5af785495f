package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/synthrisk/perilgen/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Positions are stored as 3857, because SQLite has no spatial awareness and we
// need to interpret point data from strings during migrations using the
// inherent Scan function. Geometry data is stored in the WKB format.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseWaypoint parses a "lat,lon" or "lat,lon,name" string into a Waypoint.
// Configured track endpoints arrive in this format.
func ParseWaypoint(coords string) (Waypoint, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 {
		return Waypoint{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Waypoint{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Waypoint{}, ErrInvalidCoordinates
	}
	wp := Waypoint{Lat: lat, Lon: lon}
	if len(parts) > 2 {
		wp.Name = strings.TrimSpace(strings.Join(parts[2:], ","))
	}
	return wp, nil
}

// Point3857From4326 creates a web-mercator point from a longitude and latitude
func Point3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	var x, y float64
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(longitude, latitude, 0)
	point, err = geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: x, Y: y},
			Z:  0,
		},
	)
	if err != nil {
		return geom.Point{}, err
	}
	return point, nil
}

// Point4326From3857 recovers the longitude and latitude from a stored
// web-mercator point. Empty points yield the origin.
func Point4326From3857(point geom.Point) (longitude float64, latitude float64) {
	coord, ok := point.Coordinates()
	if !ok {
		return 0, 0
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(3857, 4326)
	longitude, latitude, _ = f(coord.X, coord.Y, 0)
	return longitude, latitude
}

// TrackLineString builds a geom.LineString from track points, in 4326
// lon/lat order. Used to persist a whole storm track as one geometry.
func TrackLineString(points []core.TrackPoint) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, errors.New("track must have at least 2 points")
	}
	flatCoords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, p.Lon, p.Lat)
	}
	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq)
}
