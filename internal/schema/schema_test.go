package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, s *Section)
		wantErr bool
	}{
		{
			name: "flat fields",
			input: `{
				"event_id": {"type": "text"},
				"lead_time": {"type": "integer"}
			}`,
			check: func(t *testing.T, s *Section) {
				assert.Equal(t, []string{"event_id", "lead_time"}, s.Names())
				n, ok := s.Get("event_id")
				require.True(t, ok)
				f, ok := n.(*Field)
				require.True(t, ok)
				assert.Equal(t, TypeText, f.Type)
			},
		},
		{
			name: "nested sections keep declaration order",
			input: `{
				"EventTimeseries": {
					"Header": {
						"event_id": {"type": "text"},
						"time": {"type": "datetime"}
					},
					"Dimensions": {
						"lat": {"type": "decimal"},
						"lon": {"type": "decimal"}
					}
				}
			}`,
			check: func(t *testing.T, s *Section) {
				n, ok := s.Get("EventTimeseries")
				require.True(t, ok)
				event, ok := n.(*Section)
				require.True(t, ok)
				assert.Equal(t, []string{"Header", "Dimensions"}, event.Names())
				header, ok := event.Get("Header")
				require.True(t, ok)
				assert.Equal(t, []string{"event_id", "time"}, header.(*Section).Names())
			},
		},
		{
			name: "options list",
			input: `{
				"status": {"type": "menu", "options": ["on", "off"]}
			}`,
			check: func(t *testing.T, s *Section) {
				n, _ := s.Get("status")
				assert.Equal(t, []string{"on", "off"}, n.(*Field).Options)
			},
		},
		{
			name: "values spelling accepted for options",
			input: `{
				"status": {"type": "enum", "values": ["a", "b", "c"]}
			}`,
			check: func(t *testing.T, s *Section) {
				n, _ := s.Get("status")
				assert.Equal(t, []string{"a", "b", "c"}, n.(*Field).Options)
			},
		},
		{
			name: "bare leaf becomes untyped field",
			input: `{
				"note": "free text"
			}`,
			check: func(t *testing.T, s *Section) {
				n, ok := s.Get("note")
				require.True(t, ok)
				f, ok := n.(*Field)
				require.True(t, ok)
				assert.Equal(t, "", f.Type)
			},
		},
		{
			name: "type plus nested section is ambiguous",
			input: `{
				"broken": {
					"type": "decimal",
					"Nested": {"x": {"type": "text"}}
				}
			}`,
			wantErr: true,
		},
		{
			name:    "document must be an object",
			input:   `[1, 2, 3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseJSON([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestParseJSONAmbiguousReportsPath(t *testing.T) {
	_, err := ParseJSON([]byte(`{
		"Outer": {
			"Inner": {
				"type": "text",
				"Deeper": {"x": {"type": "text"}}
			}
		}
	}`))
	require.Error(t, err)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "$.Outer.Inner", schemaErr.Path)
}

func TestParseMapForm(t *testing.T) {
	raw := map[string]any{
		"Header": map[string]any{
			"event_id": map[string]any{"type": "text"},
		},
		"Dimensions": map[string]any{
			"lat": map[string]any{"type": "decimal"},
		},
	}

	s, err := Parse(raw)
	require.NoError(t, err)
	// Map form has no insertion order; keys come back sorted.
	assert.Equal(t, []string{"Dimensions", "Header"}, s.Names())

	header, ok := s.Get("Header")
	require.True(t, ok)
	_, ok = header.(*Section)
	assert.True(t, ok)
}

func TestParseMapFormAmbiguous(t *testing.T) {
	raw := map[string]any{
		"broken": map[string]any{
			"type":   "decimal",
			"Nested": map[string]any{"x": map[string]any{"type": "text"}},
		},
	}
	_, err := Parse(raw)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestBuiltinStormEventTimeseries(t *testing.T) {
	s := StormEventTimeseries()
	require.Equal(t, []string{"EventTimeseries"}, s.Names())

	n, ok := s.Get("EventTimeseries")
	require.True(t, ok)
	event := n.(*Section)
	assert.Equal(t,
		[]string{"Header", "Dimensions", "SurfaceNearSurface", "PressureLevels", "CycloneParameters"},
		event.Names())

	levels, ok := event.Get("PressureLevels")
	require.True(t, ok)
	assert.Equal(t, []string{"850hPa", "500hPa"}, levels.(*Section).Names())
}

func TestBuiltinFloodGauge(t *testing.T) {
	s := FloodGauge()
	n, ok := s.Get("FloodGauge")
	require.True(t, ok)
	gauge := n.(*Section)
	assert.Equal(t, []string{"Header", "SensorDetails", "SensorStats", "FloodStage"}, gauge.Names())

	stage, ok := gauge.Get("FloodStage")
	require.True(t, ok)
	uk, ok := stage.(*Section).Get("UK")
	require.True(t, ok)
	assert.Equal(t, []string{"FloodAlert", "FloodWarning", "SevereFloodWarning"}, uk.(*Section).Names())
}
