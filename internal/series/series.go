// Package series drives full time-series assembly for one storm event: it
// builds the track, walks the schema once per step and returns the complete,
// fully materialized series. Nothing is streamed; callers get either the
// whole series or an error.
package series

import (
	"errors"
	"fmt"
	"time"

	"github.com/synthrisk/perilgen/internal/geo"
	"github.com/synthrisk/perilgen/internal/schema"
	"github.com/synthrisk/perilgen/internal/synth"
	"github.com/synthrisk/perilgen/pkg/core"
)

// DefaultNumSteps is the step count used when the caller does not choose one.
const DefaultNumSteps = 100

// ErrNoEvents reports that series assembly ran before any storm event
// existed. A time series is defined only relative to an identified event.
var ErrNoEvents = errors.New("storm events must be generated before their time series")

// Options tune one assembly run. The zero value selects the built-in storm
// schema, the default track endpoints and DefaultNumSteps.
type Options struct {
	NumSteps int
	Anchor   time.Time // run reference time; datetime fields count back from it
	Start    geo.Waypoint
	End      geo.Waypoint
	Schema   *schema.Section
}

func (o Options) withDefaults() Options {
	if o.NumSteps < 1 {
		o.NumSteps = DefaultNumSteps
	}
	if o.Schema == nil {
		o.Schema = schema.StormEventTimeseries()
	}
	if o.Start == (geo.Waypoint{}) {
		o.Start = geo.DefaultStart
	}
	if o.End == (geo.Waypoint{}) {
		o.End = geo.DefaultEnd
	}
	return o
}

// BuildAll assembles one series per storm event.
func BuildAll(events []core.StormEvent, opts Options) ([]*core.Series, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("series: %w", ErrNoEvents)
	}
	out := make([]*core.Series, 0, len(events))
	for _, event := range events {
		out = append(out, Build(event.EventID, opts))
	}
	return out, nil
}

// Build assembles the complete series for one event identifier.
func Build(eventID string, opts Options) *core.Series {
	opts = opts.withDefaults()
	track := geo.Track(opts.Start, opts.End, opts.NumSteps)

	records := make([]*core.Record, 0, opts.NumSteps)
	for index := 0; index < opts.NumSteps; index++ {
		point := track[index]
		record := synth.Walk(opts.Schema, synth.Context{
			Index:    index,
			NumSteps: opts.NumSteps,
			SeriesID: eventID,
			Anchor:   opts.Anchor,
			Track:    &point,
		})
		pin(record, eventID, index, point, opts.Anchor)
		records = append(records, record)
	}

	return &core.Series{
		SeriesID: eventID,
		Description: fmt.Sprintf("Time series data for TC Event %s from %s to %s",
			eventID, opts.Start.Name, opts.End.Name),
		Timeseries: records,
	}
}

// pin overwrites the identity and coordinate fields after the walk so they
// hold exact values regardless of what the rule table produced. Overwriting
// keeps each key's original position in the record.
func pin(record *core.Record, eventID string, index int, point core.TrackPoint, anchor time.Time) {
	event := record.Section("EventTimeseries")
	if event == nil {
		return
	}
	if dims := event.Section("Dimensions"); dims != nil {
		dims.Set("lat", point.Lat)
		dims.Set("lon", point.Lon)
	}
	if header := event.Section("Header"); header != nil {
		header.Set("event_id", eventID)
		header.Set("time", synth.Timestamp(anchor, index))
		header.Set("lead_time", index)
	}
}
