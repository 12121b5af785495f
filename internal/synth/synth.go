// Package synth generates schema-conformant synthetic values. Each value is
// a pure function of its Context: no package state, no clock reads, so any
// record can be regenerated (or generated in parallel) from the same inputs.
package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/synthrisk/perilgen/internal/schema"
	"github.com/synthrisk/perilgen/pkg/core"
)

// Datetime fields are offsets from the run anchor: the series begins a fixed
// lookback before the anchor and advances half an hour per step.
const (
	datetimeLookback = 5 * 24 * time.Hour
	datetimeStep     = 30 * time.Minute
	dateStep         = 24 * time.Hour
)

// Context carries everything a single value generation depends on.
type Context struct {
	Index    int
	NumSteps int
	SeriesID string
	Anchor   time.Time
	Track    *core.TrackPoint // overrides lat/lon fields when present
}

// progress is the normalized position in the storm lifecycle.
func (c Context) progress() float64 {
	return float64(c.Index) / float64(c.NumSteps)
}

// Timestamp formats the datetime value for one step: the anchor minus the
// lookback window, advanced half an hour per index, in UTC.
func Timestamp(anchor time.Time, index int) string {
	ts := anchor.Add(-datetimeLookback + time.Duration(index)*datetimeStep)
	return ts.UTC().Format("2006-01-02T15:04:05Z")
}

// Walk builds a record mirroring the schema's shape exactly: every section
// becomes a nested record, every field a generated leaf value. Fields whose
// generator yields no value are omitted, never written as null.
func Walk(root *schema.Section, ctx Context) *core.Record {
	return walkSection(root, "", ctx)
}

func walkSection(section *schema.Section, sectionName string, ctx Context) *core.Record {
	record := core.NewRecord()
	for _, name := range section.Names() {
		child, _ := section.Get(name)
		switch n := child.(type) {
		case *schema.Section:
			record.Set(name, walkSection(n, name, ctx))
		case *schema.Field:
			if value, ok := Value(n, name, sectionName, ctx); ok {
				record.Set(name, value)
			}
		}
	}
	return record
}

// Value maps a field definition to a single leaf value. The boolean return
// reports whether a value was produced: menus with an empty option list
// yield none. Unrecognized field types degrade to a placeholder rather than
// failing, so schemas can grow fields before the rules learn about them.
func Value(field *schema.Field, name, sectionName string, ctx Context) (any, bool) {
	switch field.Type {
	case schema.TypeMenu, schema.TypeEnum:
		if len(field.Options) == 0 {
			return nil, false
		}
		return field.Options[ctx.Index%len(field.Options)], true

	case schema.TypeBoolean:
		return ctx.Index%3 == 0, true

	case schema.TypeInteger:
		if strings.Contains(name, "lead_time") {
			return ctx.Index, true
		}
		return 10 + (ctx.Index % 20), true

	case schema.TypeDateTime:
		return Timestamp(ctx.Anchor, ctx.Index), true

	case schema.TypeDate:
		ts := ctx.Anchor.Add(-datetimeLookback + time.Duration(ctx.Index)*dateStep)
		return ts.UTC().Format("2006-01-02"), true

	case schema.TypeText:
		if strings.Contains(name, "event_id") {
			return ctx.SeriesID, true
		}
		return fmt.Sprintf("Text-%d", ctx.Index), true

	case schema.TypeDecimal:
		return decimalValue(sectionName, name, ctx), true

	default:
		return fmt.Sprintf("Value-%d", ctx.Index), true
	}
}
