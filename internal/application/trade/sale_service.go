package trade

import (
	"context"
	"errors"
	"time"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/inventory"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SaleMetrics receives sale and payment counters
type SaleMetrics interface {
	RecordSaleCreated(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal)
	RecordPayment(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal)
}

type noopSaleMetrics struct{}

func (noopSaleMetrics) RecordSaleCreated(context.Context, uuid.UUID, decimal.Decimal)      {}
func (noopSaleMetrics) RecordPayment(context.Context, uuid.UUID, string, decimal.Decimal) {}

// SaleService records sales and the payments made against them
type SaleService struct {
	saleRepo    trade.SaleRepository
	paymentRepo trade.PaymentRepository
	scope       uow.TransactionScope
	metrics     SaleMetrics
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo trade.SaleRepository,
	paymentRepo trade.PaymentRepository,
	scope uow.TransactionScope,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		scope:       scope,
		metrics:     noopSaleMetrics{},
		logger:      logger,
	}
}

// SetMetrics sets the sale counters
func (s *SaleService) SetMetrics(m SaleMetrics) {
	if m != nil {
		s.metrics = m
	}
}

// CreateSale records a sale, its items and the stock it consumes as one
// unit of work. Items with a location hint draw from the unbatched stock of
// that location: a missing record is skipped and a short record is drained
// rather than overdrawn.
func (s *SaleService) CreateSale(ctx context.Context, tenantID, userID uuid.UUID, in CreateSaleInput) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create",
		telemetry.AttrTenantID.String(tenantID.String()),
		attribute.Int("sale.items", len(in.Items)),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	lines := make([]trade.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		discount := decimal.Zero
		if it.Discount != nil {
			discount = *it.Discount
		}
		lines = append(lines, trade.LineInput{
			ProductID:  it.ProductID,
			LocationID: it.LocationID,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Discount:   discount,
			Notes:      it.Notes,
		})
	}
	sale, err := trade.NewSale(tenantID, userID, trade.SaleDetails{
		CustomerID:    in.CustomerID,
		SaleDate:      in.SaleDate,
		Status:        trade.SaleStatus(in.Status),
		PaymentStatus: trade.PaymentStatus(in.PaymentStatus),
		PaymentDate:   in.PaymentDate,
		Notes:         in.Notes,
	}, lines)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if _, err := repos.Customers().FindByIDForTenant(ctx, tenantID, sale.CustomerID); err != nil {
			return err
		}
		if err := ensureProducts(ctx, repos, tenantID, sale.Items); err != nil {
			return err
		}

		invoice, err := nextInvoiceNumber(ctx, repos, tenantID)
		if err != nil {
			return err
		}
		sale.InvoiceNumber = invoice

		if err := repos.Sales().Create(ctx, tenantID, sale); err != nil {
			return err
		}
		return consumeStock(ctx, repos.Inventory(), tenantID, sale.Items)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSaleCreated(ctx, tenantID, sale.Total)
	s.logger.Info("sale created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	response := ToSaleResponse(sale)
	return &response, nil
}

// ensureProducts checks every referenced product belongs to the tenant
func ensureProducts(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, items []trade.SaleItem) error {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	found, err := repos.Products().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	present := make(map[uuid.UUID]bool, len(found))
	for _, p := range found {
		present[p.ID] = true
	}
	for _, id := range ids {
		if !present[id] {
			return shared.NotFound("Product").WithDetails(map[string]any{"productId": id.String()})
		}
	}
	return nil
}

// nextInvoiceNumber issues the tenant's next invoice number from its locked
// sequence row, seeding the row from the latest sale on first use
func nextInvoiceNumber(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID) (string, error) {
	seq, err := repos.InvoiceSequences().Lock(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		latest, err := repos.Sales().LatestInvoiceNumber(ctx, tenantID)
		if err != nil {
			return "", err
		}
		if err := repos.InvoiceSequences().Init(ctx, trade.SeedSequence(tenantID, latest)); err != nil {
			return "", err
		}
		seq, err = repos.InvoiceSequences().Lock(ctx, tenantID)
		if err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	invoice := seq.Next()
	if err := repos.InvoiceSequences().Save(ctx, seq); err != nil {
		return "", err
	}
	return invoice, nil
}

// consumeStock decrements the unbatched record at each item's location hint
func consumeStock(ctx context.Context, records inventory.RecordRepository, tenantID uuid.UUID, items []trade.SaleItem) error {
	for _, it := range items {
		if it.LocationID == nil {
			continue
		}
		slot := inventory.Slot{ProductID: it.ProductID, LocationID: *it.LocationID}
		record, err := records.FindBySlot(ctx, tenantID, slot)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		if record.Quantity <= it.Quantity {
			if err := records.DeleteForTenant(ctx, tenantID, record.ID); err != nil {
				return err
			}
			continue
		}
		ok, err := records.Decrement(ctx, tenantID, record.ID, it.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			// The record shrank under us; drain what is left.
			if err := records.DeleteForTenant(ctx, tenantID, record.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}
	}
	return nil
}

// GetSale retrieves a sale with its items
func (s *SaleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// ListSales retrieves a page of sales
func (s *SaleService) ListSales(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[SaleResponse], error) {
	page, err := s.saleRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[SaleResponse]{}, err
	}
	return shared.MapPaginated(page, func(sale trade.Sale) SaleResponse {
		return ToSaleResponse(&sale)
	}), nil
}

// UpdateSale changes status, payment status, payment date and notes
func (s *SaleService) UpdateSale(ctx context.Context, tenantID, saleID uuid.UUID, in UpdateSaleInput) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}

	update := trade.SaleUpdate{PaymentDate: in.PaymentDate, Notes: in.Notes}
	if in.Status != nil {
		status := trade.SaleStatus(*in.Status)
		update.Status = &status
	}
	if in.PaymentStatus != nil {
		ps := trade.PaymentStatus(*in.PaymentStatus)
		update.PaymentStatus = &ps
	}
	if err := sale.ApplyUpdate(update); err != nil {
		return nil, err
	}
	if err := s.saleRepo.UpdateHeader(ctx, tenantID, sale); err != nil {
		return nil, err
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// DeleteSale deletes a sale and its items. Sales with payments are kept.
func (s *SaleService) DeleteSale(ctx context.Context, tenantID, saleID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if _, err := repos.Sales().FindByIDForTenant(ctx, tenantID, saleID); err != nil {
			return err
		}
		count, err := repos.Payments().CountBySale(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.InUse("Sale", map[string]any{"paymentsCount": count})
		}
		return repos.Sales().DeleteWithItems(ctx, tenantID, saleID)
	})
}

// RecordPayment stores a payment and re-derives the sale's payment status
// from everything paid so far
func (s *SaleService) RecordPayment(ctx context.Context, tenantID, saleID uuid.UUID, in RecordPaymentInput) (*PaymentReceipt, error) {
	var (
		payment *trade.Payment
		sale    *trade.Sale
		paid    decimal.Decimal
	)
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		sale, err = repos.Sales().FindByIDForTenant(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if sale.Status == trade.SaleStatusCancelled {
			return shared.InvalidInput("Payments cannot be recorded against a cancelled sale")
		}
		payment, err = trade.NewPayment(tenantID, saleID, in.Amount, trade.PaymentMethod(in.Method), in.PaidAt, in.Reference, in.Notes)
		if err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, tenantID, payment); err != nil {
			return err
		}
		paid, err = repos.Payments().SumBySale(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		sale.SettleWith(paid, payment.PaidAt)
		return repos.Sales().UpdateHeader(ctx, tenantID, sale)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(ctx, tenantID, string(payment.Method), payment.Amount)
	outstanding := sale.Total.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return &PaymentReceipt{
		Payment:       ToPaymentResponse(payment),
		TotalPaid:     paid,
		Outstanding:   outstanding,
		PaymentStatus: string(sale.PaymentStatus),
	}, nil
}

// ListPayments lists the payments of a sale, oldest first
func (s *SaleService) ListPayments(ctx context.Context, tenantID, saleID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindBySale(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, ToPaymentResponse(&payments[i]))
	}
	return out, nil
}

// EndOfDay moves a date-only upper bound to the last instant of that day so
// that dateTo filters include the whole day
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
