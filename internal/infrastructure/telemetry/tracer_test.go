package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/invoiceflow/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "invoiceflow-test",
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_NilLogger(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{}, nil)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping collector test in short mode")
	}
	ctx := context.Background()

	// the gRPC exporter connects lazily, so no collector is needed to build the pipeline
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     0.5,
		ServiceName:       "invoiceflow-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
}

func TestConfigFromTelemetry(t *testing.T) {
	cfg := config.TelemetryConfig{
		Enabled:               true,
		CollectorEndpoint:     "otel:4317",
		SamplingRatio:         0.25,
		ServiceName:           "invoiceflow",
		Insecure:              true,
		MetricsEnabled:        true,
		MetricsExportInterval: 30 * time.Second,
	}

	tc := telemetry.ConfigFromTelemetry(cfg, "1.4.0")
	assert.Equal(t, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.25,
		ServiceName:       "invoiceflow",
		ServiceVersion:    "1.4.0",
		Insecure:          true,
	}, tc)

	mc := telemetry.MetricsConfigFromTelemetry(cfg, "1.4.0")
	assert.True(t, mc.Enabled)
	assert.Equal(t, 30*time.Second, mc.ExportInterval)
	assert.Equal(t, "otel:4317", mc.CollectorEndpoint)
	assert.Equal(t, "1.4.0", mc.ServiceVersion)
}
