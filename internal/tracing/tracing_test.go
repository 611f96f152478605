package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), DefaultConfig())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Exporter = "zipkin"

	_, err := NewProvider(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Exporter = "file"

	_, err := NewProvider(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	path := filepath.Join(t.TempDir(), "traces", "spans.json")
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Exporter = "file"
	cfg.FilePath = path

	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "test.span")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test.span")
}
