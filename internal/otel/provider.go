package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Config holds OTel configuration
type Config struct {
	Enabled     bool
	ServiceName string
}

// Provider hands out meters for the generator's instruments.
// When disabled, every meter is a no-op and instrument calls cost nothing.
type Provider struct {
	config Config
}

// New creates a provider with the given configuration.
func New(cfg Config) *Provider {
	return &Provider{config: cfg}
}

// Meter returns a meter with the given name for creating metrics.
// The meter comes from the global OTel provider and tags instruments
// with the configured service name.
func (p *Provider) Meter(name string) metric.Meter {
	if !p.config.Enabled {
		return noop.Meter{}
	}
	return otel.Meter(name,
		metric.WithInstrumentationAttributes(
			attribute.String("service.name", p.config.ServiceName),
		),
	)
}

// Enabled returns whether OTel is enabled
func (p *Provider) Enabled() bool {
	return p.config.Enabled
}
