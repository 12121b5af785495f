package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/synthrisk/perilgen/internal/config"
	"github.com/synthrisk/perilgen/internal/dispatcher"
	"github.com/synthrisk/perilgen/internal/floodsim"
	"github.com/synthrisk/perilgen/internal/geo"
	"github.com/synthrisk/perilgen/internal/portfolio"
	"github.com/synthrisk/perilgen/internal/series"
	"github.com/synthrisk/perilgen/internal/synth"
)

// drainTimeout caps how long Run waits for the buffered handlers after the
// last stage has dispatched.
const drainTimeout = 30 * time.Second

// Options defines one generation run. Mortgages are derived one per property
// and have no independent count.
type Options struct {
	StormEvents     int
	FloodGauges     int
	Properties      int
	Timesteps       int
	SimulationHours int
	Anchor          time.Time
	Start           geo.Waypoint
	End             geo.Waypoint
}

// OptionsFromConfig resolves the generator config into run options, parsing
// the anchor time and the track endpoints. Empty strings select the current
// time and the built-in Bristol to Margate track.
func OptionsFromConfig(cfg config.GeneratorConfig) (Options, error) {
	opts := Options{
		StormEvents:     cfg.StormEvents,
		FloodGauges:     cfg.FloodGauges,
		Properties:      cfg.Properties,
		Timesteps:       cfg.Timesteps,
		SimulationHours: cfg.SimulationHours,
		Anchor:          time.Now().UTC(),
		Start:           geo.DefaultStart,
		End:             geo.DefaultEnd,
	}

	if cfg.Anchor != "" {
		anchor, err := time.Parse(time.RFC3339, cfg.Anchor)
		if err != nil {
			return Options{}, fmt.Errorf("failed to parse anchor time %q: %w", cfg.Anchor, err)
		}
		opts.Anchor = anchor.UTC()
	}
	if cfg.TrackStart != "" {
		start, err := geo.ParseWaypoint(cfg.TrackStart)
		if err != nil {
			return Options{}, fmt.Errorf("failed to parse track start: %w", err)
		}
		opts.Start = start
	}
	if cfg.TrackEnd != "" {
		end, err := geo.ParseWaypoint(cfg.TrackEnd)
		if err != nil {
			return Options{}, fmt.Errorf("failed to parse track end: %w", err)
		}
		opts.End = end
	}

	return opts, nil
}

// Run executes the generation stages in dependency order: properties, flood
// gauges, mortgages, storm events, event time series, gauge readings. Each
// stage caches its entities and emits sink events through the dispatcher;
// Run returns once every buffered handler has drained, so the caller can end
// the run knowing the backend saw all records.
func (m *Manager) Run(d *dispatcher.Dispatcher, opts Options) error {
	log := m.deps.LogManager.Logger()

	// The series build defaults zero endpoints the same way; normalizing here
	// keeps the track stage on identical coordinates.
	if opts.Start == (geo.Waypoint{}) {
		opts.Start = geo.DefaultStart
	}
	if opts.End == (geo.Waypoint{}) {
		opts.End = geo.DefaultEnd
	}
	if opts.Anchor.IsZero() {
		opts.Anchor = time.Now().UTC()
	}

	properties := portfolio.GenerateProperties(opts.Properties)
	for _, p := range properties {
		m.deps.Portfolio.AddProperty(p)
		_, err := d.Dispatch(dispatcher.Event{Command: CmdPortfolioEntity, Args: []string{KindProperty, p.PropertyID}})
		if err != nil {
			return fmt.Errorf("property stage: %w", err)
		}
	}
	log.Info("Generated properties", "count", len(properties))

	gauges := portfolio.GenerateFloodGauges(opts.FloodGauges, opts.Anchor)
	for _, g := range gauges {
		m.deps.Portfolio.AddGauge(g)
		_, err := d.Dispatch(dispatcher.Event{Command: CmdPortfolioEntity, Args: []string{KindGauge, g.GaugeID}})
		if err != nil {
			return fmt.Errorf("gauge stage: %w", err)
		}
	}
	log.Info("Generated flood gauges", "count", len(gauges))

	mortgages := portfolio.GenerateMortgagesFrom(properties)
	for _, mg := range mortgages {
		m.deps.Portfolio.AddMortgage(mg)
		_, err := d.Dispatch(dispatcher.Event{Command: CmdPortfolioEntity, Args: []string{KindMortgage, mg.MortgageID}})
		if err != nil {
			return fmt.Errorf("mortgage stage: %w", err)
		}
	}
	log.Info("Generated mortgages", "count", len(mortgages))

	// Same endpoints and step count as the series walk, so the coordinates
	// reproduce exactly.
	track := geo.Track(opts.Start, opts.End, opts.Timesteps)

	events := portfolio.GenerateStormEvents(opts.StormEvents, opts.Anchor)
	for i := range events {
		events[i].Track = track
		m.deps.Portfolio.AddEvent(events[i])
		_, err := d.Dispatch(dispatcher.Event{Command: CmdPortfolioEntity, Args: []string{KindStormEvent, events[i].EventID}})
		if err != nil {
			return fmt.Errorf("storm event stage: %w", err)
		}
	}
	log.Info("Generated storm events", "count", len(events))

	built, err := series.BuildAll(events, series.Options{
		NumSteps: opts.Timesteps,
		Anchor:   opts.Anchor,
		Start:    opts.Start,
		End:      opts.End,
	})
	if err != nil {
		return fmt.Errorf("series stage: %w", err)
	}
	for _, s := range built {
		m.deps.Series.Set(s.SeriesID, s)
		_, err := d.Dispatch(dispatcher.Event{Command: CmdRecordSeries, Args: []string{s.SeriesID}})
		if err != nil {
			return fmt.Errorf("series stage: %w", err)
		}
	}
	log.Info("Built event time series", "events", len(built), "steps", opts.Timesteps)

	for _, ev := range events {
		for i, point := range track {
			args := []string{
				ev.EventID,
				strconv.Itoa(i),
				strconv.FormatFloat(point.Lat, 'f', -1, 64),
				strconv.FormatFloat(point.Lon, 'f', -1, 64),
				synth.Timestamp(opts.Anchor, i),
			}
			_, err := d.Dispatch(dispatcher.Event{Command: CmdTrackPoint, Args: args})
			if err != nil {
				return fmt.Errorf("track stage: %w", err)
			}
		}
	}

	readings := 0
	for _, step := range floodsim.Simulate(gauges, opts.SimulationHours, opts.Anchor) {
		for _, r := range step.Readings {
			args := []string{
				r.GaugeID,
				r.Timestamp,
				strconv.FormatFloat(r.WaterLevel, 'f', -1, 64),
				r.AlertStatus,
			}
			_, err := d.Dispatch(dispatcher.Event{Command: CmdRecordReading, Args: args})
			if err != nil {
				return fmt.Errorf("reading stage: %w", err)
			}
			readings++
		}
	}
	log.Info("Simulated gauge readings", "hours", opts.SimulationHours, "readings", readings)

	if err := d.Drain(drainTimeout); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}
