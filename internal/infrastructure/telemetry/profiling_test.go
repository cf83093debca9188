package telemetry_test

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithProfilingLabels(t *testing.T) {
	long := strings.Repeat("x", 300)
	labels := telemetry.OperationLabels("report.execute", map[string]string{
		"report_type": "SALES_SUMMARY",
		"empty":       "",
		"long":        long,
	})

	called := false
	telemetry.WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		called = true

		v, ok := pprof.Label(ctx, "operation")
		assert.True(t, ok)
		assert.Equal(t, "report.execute", v)

		v, _ = pprof.Label(ctx, "report_type")
		assert.Equal(t, "SALES_SUMMARY", v)

		_, ok = pprof.Label(ctx, "empty")
		assert.False(t, ok)

		v, _ = pprof.Label(ctx, "long")
		assert.Len(t, v, 128)
	})
	assert.True(t, called)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "v")

	telemetry.WithProfilingLabels(parent, nil, func(ctx context.Context) {
		assert.Equal(t, parent, ctx)
	})
}

func TestHTTPRequestLabels(t *testing.T) {
	assert.Equal(t, map[string]string{"route": "/api/v1/sales/:id", "method": "GET"},
		telemetry.HTTPRequestLabels("/api/v1/sales/:id", "GET"))
}

func TestStartProfiler_RequiresAddress(t *testing.T) {
	_, err := telemetry.StartProfiler(telemetry.ProfilerConfig{ApplicationName: "bizledger"}, zap.NewNop())
	assert.Error(t, err)
}
