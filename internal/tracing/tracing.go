// Package tracing configures OpenTelemetry for the service.
//
// When tracing is disabled the global tracer provider stays the default
// no-op one, so spans started through otel.Tracer cost nothing.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config configures the tracing subsystem.
type Config struct {
	// Enabled controls whether tracing is active.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the export backend: "none", "stdout", "file" or "otlp".
	Exporter string `mapstructure:"exporter"`

	// FilePath is the JSON output file for the "file" exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector's host:port for the "otlp" exporter
	// (OTLP over HTTP).
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of root traces sampled, 0 < rate <= 1.
	SampleRate float64 `mapstructure:"sample_rate"`

	// ServiceName identifies this service in traces.
	ServiceName string `mapstructure:"service_name"`
}

// DefaultConfig returns tracing disabled with development-friendly
// settings ready for when it is switched on.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		Exporter:     "stdout",
		OTLPEndpoint: "localhost:4318",
		SampleRate:   1.0,
		ServiceName:  "course-registration",
	}
}

// Provider owns the SDK tracer provider and whatever its exporter holds
// open.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	file     *os.File
}

// NewProvider builds a tracer provider from cfg and installs it as the
// global provider. A disabled config yields a no-op Provider.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer("noop")}, nil
	}

	p := &Provider{}
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "file":
		if cfg.FilePath == "" {
			return nil, errors.New("tracing: file_path required for file exporter")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o750); err != nil {
			return nil, fmt.Errorf("tracing: creating trace directory: %w", err)
		}
		p.file, err = os.OpenFile(filepath.Clean(cfg.FilePath), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("tracing: opening trace file: %w", err)
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(p.file))
	case "otlp":
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	case "none", "":
		// spans are recorded for context propagation but not exported
	default:
		return nil, fmt.Errorf("tracing: unsupported exporter %q", cfg.Exporter)
	}
	if err != nil {
		p.closeFile()
		return nil, fmt.Errorf("tracing: creating %s exporter: %w", cfg.Exporter, err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultConfig().ServiceName
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1.0
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	p.provider = sdktrace.NewTracerProvider(opts...)
	p.tracer = p.provider.Tracer(serviceName)
	otel.SetTracerProvider(p.provider)

	return p, nil
}

// Tracer returns the provider's tracer. It is a no-op tracer when tracing
// is disabled.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are being recorded.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// Shutdown flushes pending spans and releases the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	if p.provider != nil {
		err = p.provider.Shutdown(ctx)
	}
	return errors.Join(err, p.closeFile())
}

func (p *Provider) closeFile() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}
