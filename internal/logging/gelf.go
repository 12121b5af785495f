package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
)

// Syslog severities used by the GELF spec.
const (
	gelfLevelError int32 = 3
	gelfLevelWarn  int32 = 4
	gelfLevelInfo  int32 = 6
	gelfLevelDebug int32 = 7
)

const gelfFacility = "perilgen"

// gelfWriter is the part of *gelf.Writer the handler needs. Tests swap in
// a capturing fake.
type gelfWriter interface {
	WriteMessage(*gelf.Message) error
}

// GELFHandler is a slog.Handler that forwards records to a Graylog server
// over UDP. Attribute keys get the underscore prefix GELF requires for
// additional fields; group names become dotted key prefixes.
type GELFHandler struct {
	writer gelfWriter
	level  slog.Level
	host   string
	prefix string
	fields map[string]any
}

// NewGELFHandler connects to a Graylog GELF endpoint, e.g. "localhost:12201".
func NewGELFHandler(address string, level slog.Level) (*GELFHandler, error) {
	writer, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("gelf: connect %s: %w", address, err)
	}
	writer.Facility = gelfFacility

	host, err := os.Hostname()
	if err != nil {
		host = gelfFacility
	}

	return &GELFHandler{
		writer: writer,
		level:  level,
		host:   host,
		fields: map[string]any{},
	}, nil
}

// Enabled reports whether records at the given level are forwarded.
func (h *GELFHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle converts the record to a GELF message and writes it.
func (h *GELFHandler) Handle(_ context.Context, r slog.Record) error {
	if h.writer == nil {
		return nil
	}

	extra := make(map[string]any, len(h.fields)+r.NumAttrs())
	for k, v := range h.fields {
		extra[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(extra, h.prefix, a)
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	return h.writer.WriteMessage(&gelf.Message{
		Version:  "1.1",
		Host:     h.host,
		Short:    r.Message,
		TimeUnix: float64(ts.UnixNano()) / float64(time.Second),
		Level:    gelfLevel(r.Level),
		Facility: gelfFacility,
		Extra:    extra,
	})
}

// WithAttrs returns a handler whose messages carry the given attributes.
func (h *GELFHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(map[string]any, len(h.fields)+len(attrs))
	for k, v := range h.fields {
		fields[k] = v
	}
	for _, a := range attrs {
		addAttr(fields, h.prefix, a)
	}
	clone := *h
	clone.fields = fields
	return &clone
}

// WithGroup returns a handler that prefixes subsequent attribute keys.
func (h *GELFHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// Close releases the UDP socket when the writer exposes one.
func (h *GELFHandler) Close() error {
	if closer, ok := h.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func gelfLevel(level slog.Level) int32 {
	switch {
	case level >= slog.LevelError:
		return gelfLevelError
	case level >= slog.LevelWarn:
		return gelfLevelWarn
	case level >= slog.LevelInfo:
		return gelfLevelInfo
	default:
		return gelfLevelDebug
	}
}

// addAttr flattens one attribute into the extra-field map. Groups recurse
// with a dotted prefix; empty keys are dropped per slog convention.
func addAttr(fields map[string]any, prefix string, a slog.Attr) {
	value := a.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		for _, ga := range value.Group() {
			addAttr(fields, prefix+a.Key+".", ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	fields["_"+prefix+a.Key] = attrValue(value)
}

// attrValue renders a slog value as a JSON-safe primitive.
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	default:
		return v.String()
	}
}
