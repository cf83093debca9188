package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func query() (string, int64) { return "SELECT * FROM sales", 3 }

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		message string
	}{
		{"error", gormlogger.Warn, time.Now(), errors.New("deadlock"), "SQL error"},
		{"record not found is quiet", gormlogger.Warn, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"slow", gormlogger.Warn, time.Now().Add(-time.Second), nil, "Slow SQL"},
		{"fast at warn is quiet", gormlogger.Warn, time.Now(), nil, ""},
		{"fast at info", gormlogger.Info, time.Now(), nil, "SQL"},
		{"silent", gormlogger.Silent, time.Now(), errors.New("deadlock"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, WithSlowThreshold(100*time.Millisecond))

			ctx := WithRequestID(context.Background(), "req-7")
			gl.Trace(ctx, tt.begin, query, tt.err)

			if tt.message == "" {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, "req-7", entry.ContextMap()["request_id"])
			assert.Equal(t, "SELECT * FROM sales", entry.ContextMap()["sql"])
		})
	}
}

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	quiet := gl.LogMode(gormlogger.Silent).(*GormLogger)

	assert.Equal(t, gormlogger.Silent, quiet.level)
	assert.Equal(t, gormlogger.Warn, gl.level)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("DEBUG"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
