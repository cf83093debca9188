package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics records sales, payments, inventory movements and report
// runs. It satisfies the metrics hooks of the ledger, sale and report
// services.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	saleCreatedTotal      *Counter
	saleAmountTotal       *Counter
	paymentTotal          *Counter
	paymentAmountTotal    *Counter
	movementTotal         *Counter
	movementUnitsTotal    *Counter
	shortfallTotal        *Counter
	reportExecutionTotal  *Counter
	reportExecutionLength *Histogram

	lowStockCount *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	lowStockProvider LowStockProvider
}

// LowStockProvider reports how many products of a tenant are below the
// low stock threshold
type LowStockProvider interface {
	GetLowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// ErrMeterNil is returned by NewBusinessMetrics without a meter
var ErrMeterNil = errors.New("business metrics: meter is required")

// TenantProvider lists the tenants whose gauges are refreshed
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	LowStockProvider LowStockProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		lowStockProvider: cfg.LowStockProvider,
	}

	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&bm.saleCreatedTotal, "bizledger_sale_created_total", "Total number of sales created", "{sales}"},
		{&bm.saleAmountTotal, "bizledger_sale_amount_total", "Total sale amount in cents", "{cents}"},
		{&bm.paymentTotal, "bizledger_payment_total", "Total number of payments recorded", "{payments}"},
		{&bm.paymentAmountTotal, "bizledger_payment_amount_total", "Total payment amount in cents", "{cents}"},
		{&bm.movementTotal, "bizledger_inventory_movement_total", "Total number of inventory movements", "{movements}"},
		{&bm.movementUnitsTotal, "bizledger_inventory_movement_units_total", "Total units moved by inventory movements", "{units}"},
		{&bm.shortfallTotal, "bizledger_inventory_shortfall_total", "Operations rejected for insufficient inventory", "{operations}"},
		{&bm.reportExecutionTotal, "bizledger_report_execution_total", "Total number of report executions", "{executions}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.reportExecutionLength, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "bizledger_report_execution_duration_seconds",
		Description: "Duration of report executions",
		Unit:        "s",
		Boundaries:  ReportDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.lowStockCount, err = NewGauge(
		cfg.Meter,
		"bizledger_inventory_low_stock_count",
		"Number of products below the low stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// toCents converts a money amount to whole cents for integer counters
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// =============================================================================
// Sale Metrics
// =============================================================================

// RecordSaleCreated records a new sale and its total
func (bm *BusinessMetrics) RecordSaleCreated(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal) {
	tenant := AttrTenantID.String(tenantID.String())
	bm.saleCreatedTotal.Inc(ctx, tenant)
	if cents := toCents(total); cents > 0 {
		bm.saleAmountTotal.Add(ctx, cents, tenant)
	}
}

// RecordPayment records a payment against a sale
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
	}
	bm.paymentTotal.Inc(ctx, attrs...)
	if cents := toCents(amount); cents > 0 {
		bm.paymentAmountTotal.Add(ctx, cents, attrs...)
	}
}

// =============================================================================
// Inventory Metrics
// =============================================================================

// RecordInventoryMovement records an adjustment, transfer or sale deduction.
// quantity is the absolute number of units moved.
func (bm *BusinessMetrics) RecordInventoryMovement(ctx context.Context, tenantID uuid.UUID, movement string, quantity int64) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrMovement.String(movement),
	}
	bm.movementTotal.Inc(ctx, attrs...)
	if quantity < 0 {
		quantity = -quantity
	}
	if quantity > 0 {
		bm.movementUnitsTotal.Add(ctx, quantity, attrs...)
	}
}

// RecordInventoryShortfall records an operation rejected for lack of stock
func (bm *BusinessMetrics) RecordInventoryShortfall(ctx context.Context, tenantID uuid.UUID) {
	bm.shortfallTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordLowStockCount records the number of products below the threshold.
// This is a gauge metric that is updated periodically.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.lowStockCount.Record(ctx, count, AttrTenantID.String(tenantID.String()))
}

// =============================================================================
// Report Metrics
// =============================================================================

// RecordReportExecution records a finished report run
func (bm *BusinessMetrics) RecordReportExecution(ctx context.Context, tenantID uuid.UUID, reportType, status string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrReportType.String(reportType),
		AttrReportStatus.String(status),
	}
	bm.reportExecutionTotal.Inc(ctx, attrs...)
	bm.reportExecutionLength.RecordDuration(ctx, duration, attrs...)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics
// every interval (default: 5 minutes). It does not block; use Stop to end it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectInventoryMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			bm.logger.Debug("Low stock collection stopped", zap.Error(ctx.Err()))
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx, tenantProvider)
		}
	}
}

func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.lowStockProvider == nil {
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Low stock collection could not list tenants", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		count, err := bm.lowStockProvider.GetLowStockCount(ctx, tenantID)
		if err != nil {
			bm.logger.Warn("Low stock count failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		bm.RecordLowStockCount(ctx, tenantID, count)
	}
}

// Stop ends periodic collection; calling it twice is safe
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
