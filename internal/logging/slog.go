package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// stdout indirection so tests can capture console output.
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// SlogManager manages slog-based logging across console, file and any extra
// handlers such as GELF.
type SlogManager struct {
	logger *slog.Logger
	extra  []slog.Handler
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Records go to the file when one is
// given and to stdout otherwise, plus every extra handler. A non-nil provider
// injects its attributes into each record, so run metadata shows up on every
// line without threading it through call sites.
func (m *SlogManager) Setup(file io.Writer, level string, provider ContextProvider, extra ...slog.Handler) {
	lvl := parseLevel(level)
	m.extra = extra

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}
	handlers = append(handlers, extra...)

	var root slog.Handler = NewMultiHandler(handlers...)
	if provider != nil {
		root = NewContextHandler(root, provider)
	}

	m.logger = slog.New(root)
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Close releases any extra handlers that hold sockets or files.
func (m *SlogManager) Close() error {
	var firstErr error
	for _, h := range m.extra {
		if closer, ok := h.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
