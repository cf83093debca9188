package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig configures database instrumentation
type DBConfig struct {
	// TracingEnabled registers the otelgorm span plugin
	TracingEnabled bool
	// LogFullSQL keeps bound query variables in spans; development only
	LogFullSQL bool
	// SlowQueryThreshold logs statements slower than this; zero disables
	SlowQueryThreshold time.Duration
}

const startedAtKey = "bizledger:query_started_at"

// InstrumentDB adds query spans, a query duration histogram, connection pool
// gauges and slow query logging to db
func InstrumentDB(db *gorm.DB, cfg DBConfig, meter metric.Meter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.TracingEnabled {
		opts := []otelgorm.Option{}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("failed to register otelgorm: %w", err)
		}
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "bizledger_db_query_duration_seconds",
		Description: "Duration of database statements",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return err
	}
	q := &queryObserver{duration: duration, slow: cfg.SlowQueryThreshold, logger: logger}
	if err := q.register(db); err != nil {
		return err
	}

	return registerPoolGauges(db, meter)
}

type queryObserver struct {
	duration *Histogram
	slow     time.Duration
	logger   *zap.Logger
}

func (q *queryObserver) register(db *gorm.DB) error {
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("bizledger:before_create", q.before),
		cb.Create().After("gorm:create").Register("bizledger:after_create", q.after("create")),
		cb.Query().Before("gorm:query").Register("bizledger:before_query", q.before),
		cb.Query().After("gorm:query").Register("bizledger:after_query", q.after("query")),
		cb.Update().Before("gorm:update").Register("bizledger:before_update", q.before),
		cb.Update().After("gorm:update").Register("bizledger:after_update", q.after("update")),
		cb.Delete().Before("gorm:delete").Register("bizledger:before_delete", q.before),
		cb.Delete().After("gorm:delete").Register("bizledger:after_delete", q.after("delete")),
		cb.Row().Before("gorm:row").Register("bizledger:before_row", q.before),
		cb.Row().After("gorm:row").Register("bizledger:after_row", q.after("row")),
		cb.Raw().Before("gorm:raw").Register("bizledger:before_raw", q.before),
		cb.Raw().After("gorm:raw").Register("bizledger:after_raw", q.after("raw")),
	)
	if err != nil {
		return fmt.Errorf("failed to register query callbacks: %w", err)
	}
	return nil
}

func (q *queryObserver) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (q *queryObserver) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(started)
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		q.duration.RecordDuration(ctx, elapsed,
			AttrDBOperation.String(op),
			AttrDBTable.String(db.Statement.Table),
		)

		if q.slow > 0 && elapsed >= q.slow {
			q.logger.Warn("slow query",
				zap.String("operation", op),
				zap.String("table", db.Statement.Table),
				zap.Duration("duration", elapsed),
				zap.String("sql", strings.TrimSpace(db.Statement.SQL.String())),
				zap.String("trace_id", TraceID(ctx)),
			)
		}
	}
}

// registerPoolGauges observes database/sql pool statistics on every
// collection
func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	conns, err := meter.Int64ObservableGauge("bizledger_db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connections}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("bizledger_db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pool wait counter: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, conns, waits)
	return err
}
