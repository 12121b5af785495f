package synth

import (
	"math"
	"strings"

	"github.com/synthrisk/perilgen/internal/util"
)

// decimalRule pairs a match predicate with its value formula. The table is
// evaluated top to bottom and the first match wins, so rule order within a
// section carries meaning ("tcwv" must match before the u/v wind rule does,
// for example).
type decimalRule struct {
	match func(ctx Context, section, field string) bool
	value func(ctx Context, field string, p float64) float64
}

// All oscillation amplitudes and phases below are fixed design constants.
// Previously published datasets were generated from exactly these curves;
// changing one breaks golden-file compatibility.
var decimalRules = []decimalRule{
	// Surface and near-surface conditions over the storm lifecycle.
	{in("SurfaceNearSurface", "t2m"), func(ctx Context, _ string, _ float64) float64 {
		return 298 - float64(ctx.Index)*0.2/float64(ctx.NumSteps)
	}},
	{in("SurfaceNearSurface", "sp"), func(_ Context, _ string, p float64) float64 {
		return 95000 + 3000*math.Sin(math.Pi*p)
	}},
	{in("SurfaceNearSurface", "msl"), func(_ Context, _ string, p float64) float64 {
		// Deepens as the storm intensifies, then fills.
		return 95000 - 4000*math.Sin(math.Pi*p)
	}},
	{in("SurfaceNearSurface", "tcwv"), func(_ Context, _ string, p float64) float64 {
		return 40 + 10*math.Sin(2*math.Pi*p)
	}},
	{in("SurfaceNearSurface", "u", "v"), func(_ Context, _ string, p float64) float64 {
		// Wind ramps up then down with a superimposed gust cycle.
		return 15 + 20*math.Sin(math.Pi*p) + 5*math.Sin(4*math.Pi*p)
	}},
	{in("SurfaceNearSurface", "tp"), func(_ Context, _ string, p float64) float64 {
		// Two oscillations layered for precipitation burstiness.
		return 0.05 + 0.1*math.Sin(math.Pi*p)*(1+0.3*math.Sin(4*math.Pi*p))
	}},
	{inSection("SurfaceNearSurface"), func(_ Context, _ string, p float64) float64 {
		return 0.01 + 0.03*math.Sin(2*math.Pi*p)
	}},

	// Pressure-level fields; the field name encodes the level in hPa.
	{atLevel("u", "v"), func(_ Context, _ string, p float64) float64 {
		return 20 + 15*math.Sin(math.Pi*p+0.2)
	}},
	{atLevel("t"), func(_ Context, field string, p float64) float64 {
		return 298 - float64(util.DigitsIn(field))/10 - 2*math.Sin(math.Pi*p)
	}},
	{atLevel("z"), func(_ Context, field string, p float64) float64 {
		return float64(util.DigitsIn(field))*10 + 200*math.Sin(0.5*math.Pi*p)
	}},
	{atLevel("r"), func(_ Context, _ string, p float64) float64 {
		return 70 + 20*math.Sin(3*math.Pi*p)
	}},

	// Spatial dimensions. Coordinates are overridden by the trajectory when
	// one is present; the oscillatory formulas never apply to them then.
	{in("Dimensions", "mrr"), func(_ Context, _ string, p float64) float64 {
		return 30 - 10*math.Sin(math.Pi*p)
	}},
	{hasTrack("Dimensions", "lat"), func(ctx Context, _ string, _ float64) float64 {
		return ctx.Track.Lat
	}},
	{hasTrack("Dimensions", "lon"), func(ctx Context, _ string, _ float64) float64 {
		return ctx.Track.Lon
	}},

	// Storm parameters.
	{in("CycloneParameters", "direction"), func(_ Context, _ string, p float64) float64 {
		return 45 + 30*math.Sin(2*math.Pi*p)
	}},
	{in("CycloneParameters", "storm_size"), func(_ Context, _ string, p float64) float64 {
		return 120 + 20*math.Sin(2*math.Pi*p)
	}},
	{in("CycloneParameters", "intensity_change"), func(_ Context, _ string, p float64) float64 {
		return 5*math.Sin(2*math.Pi*p) + 2*math.Sin(5*math.Pi*p)
	}},
	{in("CycloneParameters", "pressure_change"), func(_ Context, _ string, p float64) float64 {
		return -3*math.Sin(2*math.Pi*p) - math.Sin(4*math.Pi*p)
	}},

	// Anything else.
	{matchAll, func(_ Context, _ string, p float64) float64 {
		return 10.0 + 5.0*math.Sin(2*math.Pi*p)
	}},
}

// decimalValue evaluates the rule table for one field.
func decimalValue(section, field string, ctx Context) float64 {
	p := ctx.progress()
	for _, r := range decimalRules {
		if r.match(ctx, section, field) {
			return r.value(ctx, field, p)
		}
	}
	// Unreachable: the last rule matches everything.
	return 0
}

// in matches a field in the named section whose name contains any of the
// given substrings.
func in(section string, substrings ...string) func(Context, string, string) bool {
	return func(_ Context, s, f string) bool {
		return s == section && containsAny(f, substrings)
	}
}

// inSection matches every field of the named section.
func inSection(section string) func(Context, string, string) bool {
	return func(_ Context, s, _ string) bool { return s == section }
}

// atLevel matches a field on a pressure-level section ("850hPa", "500hPa")
// whose name contains any of the given substrings.
func atLevel(substrings ...string) func(Context, string, string) bool {
	return func(_ Context, s, f string) bool {
		return strings.Contains(s, "hPa") && containsAny(f, substrings)
	}
}

// hasTrack matches a coordinate field only when a trajectory point was
// supplied; otherwise the field falls through to the generic fallback.
func hasTrack(section, substring string) func(Context, string, string) bool {
	return func(ctx Context, s, f string) bool {
		return ctx.Track != nil && s == section && strings.Contains(f, substring)
	}
}

func matchAll(_ Context, _, _ string) bool { return true }

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
