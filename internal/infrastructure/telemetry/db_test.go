package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/bizledger/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func instrumentedDB(t *testing.T, cfg telemetry.DBConfig, logger *zap.Logger) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	db := testutil.NewSQLiteDB(t)
	require.NoError(t, telemetry.InstrumentDB(db, cfg, mp.Meter("test"), logger))

	var count int64
	require.NoError(t, db.Table("tenants").Count(&count).Error)
	require.NoError(t, db.Exec("UPDATE tenants SET name = name WHERE 1 = 0").Error)
	return reader
}

func TestInstrumentDB_RecordsQueryDuration(t *testing.T) {
	reader := instrumentedDB(t, telemetry.DBConfig{}, zap.NewNop())

	assert.GreaterOrEqual(t, sumOf(t, reader, "bizledger_db_query_duration_seconds"), int64(2))
}

func TestInstrumentDB_PoolGauges(t *testing.T) {
	reader := instrumentedDB(t, telemetry.DBConfig{}, zap.NewNop())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["bizledger_db_pool_connections"])
	assert.True(t, names["bizledger_db_pool_wait_total"])
}

func TestInstrumentDB_SlowQueryLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	instrumentedDB(t, telemetry.DBConfig{SlowQueryThreshold: time.Nanosecond}, zap.New(core))

	slow := logs.FilterMessage("slow query").All()
	require.NotEmpty(t, slow)
	assert.Contains(t, slow[0].ContextMap(), "sql")
}

func TestInstrumentDB_NoSlowLogWhenDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	instrumentedDB(t, telemetry.DBConfig{}, zap.New(core))

	assert.Zero(t, logs.FilterMessage("slow query").Len())
}

func TestInstrumentDB_WithTracing(t *testing.T) {
	reader := instrumentedDB(t, telemetry.DBConfig{TracingEnabled: true}, zap.NewNop())

	assert.Greater(t, sumOf(t, reader, "bizledger_db_query_duration_seconds"), int64(0))
}
