package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{ServiceName: "bizledger"}, zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, p.tracer)
	assert.Nil(t, p.meter)
	assert.Nil(t, p.logs)
	assert.NotNil(t, p.Meter("test"))
	p.EnableSpanProfiles()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(1.5).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewResource_DefaultVersion(t *testing.T) {
	res, err := newResource(Config{ServiceName: "bizledger"})
	require.NoError(t, err)

	values := map[string]string{}
	for _, kv := range res.Attributes() {
		values[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "bizledger", values["service.name"])
	assert.Equal(t, "dev", values["service.version"])
}

type recordingExporter struct {
	bodies []string
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func TestBridgeLogger(t *testing.T) {
	exporter := &recordingExporter{}
	p := &Providers{
		cfg:    Config{ServiceName: "bizledger"},
		logger: zap.NewNop(),
		logs:   sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	core, local := observer.New(zapcore.DebugLevel)
	logger := p.BridgeLogger(zap.New(core), zapcore.InfoLevel)

	logger.Debug("local only")
	logger.With(zap.String("tenant_id", "t-1")).Info("sale created")

	assert.Equal(t, 2, local.Len())
	assert.Equal(t, []string{"sale created"}, exporter.bodies)
}

func TestBridgeLogger_Disabled(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, (&Providers{}).BridgeLogger(base, zapcore.InfoLevel))
}
