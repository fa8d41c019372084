package telemetry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/invoiceflow/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingProcessor keeps every emitted record
type recordingProcessor struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (p *recordingProcessor) OnEmit(_ context.Context, r *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, r.Clone())
	return nil
}

func (p *recordingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool {
	return true
}

func (p *recordingProcessor) Shutdown(context.Context) error   { return nil }
func (p *recordingProcessor) ForceFlush(context.Context) error { return nil }

func (p *recordingProcessor) bodies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.records))
	for i, r := range p.records {
		out[i] = r.Body().AsString()
	}
	return out
}

func TestLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLoggerProvider_BridgeTeesRecords(t *testing.T) {
	ctx := context.Background()
	processor := &recordingProcessor{}
	lp, err := telemetry.NewLoggerProviderWithProcessor(telemetry.LogsConfig{
		Enabled:     true,
		ServiceName: "invoiceflow-test",
	}, processor, nil)
	require.NoError(t, err)
	require.True(t, lp.IsEnabled())

	localCore, local := observer.New(zapcore.DebugLevel)
	log := lp.Bridge(zap.New(localCore), zapcore.InfoLevel)

	log.Debug("below the export level")
	log.Info("invoice created", zap.Int64("invoice_id", 7))
	log.Error("render failed")
	require.NoError(t, lp.ForceFlush(ctx))

	assert.Equal(t, 3, local.Len(), "local output keeps every level")
	assert.Equal(t, []string{"invoice created", "render failed"}, processor.bodies())

	processor.mu.Lock()
	assert.Equal(t, otellog.SeverityError, processor.records[1].Severity())
	var invoiceID int64
	processor.records[0].WalkAttributes(func(kv otellog.KeyValue) bool {
		if kv.Key == "invoice_id" {
			invoiceID = kv.Value.AsInt64()
		}
		return true
	})
	processor.mu.Unlock()
	assert.Equal(t, int64(7), invoiceID)

	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLogsConfigFromTelemetry(t *testing.T) {
	cfg := telemetry.LogsConfigFromTelemetry(config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "collector:4317",
		ServiceName:       "invoiceflow",
		Insecure:          true,
	}, "1.2.3")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "collector:4317", cfg.CollectorEndpoint)
	assert.Equal(t, "invoiceflow", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.True(t, cfg.Insecure)
}
