package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var saleQuery = QuerySpec{
	Resource:      "Sale",
	SearchColumns: []string{"invoice_number", "notes"},
	ExactColumns: map[string]string{
		"customerId":    "customer_id",
		"status":        "status",
		"paymentStatus": "payment_status",
		"createdBy":     "created_by",
	},
	RangeColumns: map[string]string{"total": "total"},
	FromColumns:  map[string]string{"dateFrom": "sale_date"},
	ToColumns:    map[string]string{"dateTo": "sale_date"},
	SortColumns: map[string]string{
		"invoiceNumber": "invoice_number",
		"saleDate":      "sale_date",
		"total":         "total",
		"status":        "status",
		"paymentStatus": "payment_status",
	},
	DefaultSort:  "sale_date",
	Preload:      []string{"Items"},
	PreloadOrder: map[string]string{"Items": "sort_order"},
}

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	*TenantScopedRepository[trade.Sale]
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{NewTenantScopedRepository[trade.Sale](db, saleQuery)}
}

// Create inserts the sale header followed by its items
func (r *GormSaleRepository) Create(ctx context.Context, tenantID uuid.UUID, sale *trade.Sale) error {
	if tenantID == uuid.Nil {
		return ErrTenantRequired
	}
	sale.AssignTenant(tenantID)
	for i := range sale.Items {
		sale.Items[i].AssignTenant(tenantID)
		sale.Items[i].SaleID = sale.ID
	}

	db := r.DB().WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(sale).Error; err != nil {
		return translate(err, "Sale", sale.InvoiceNumber)
	}
	if len(sale.Items) == 0 {
		return nil
	}
	if err := db.Create(&sale.Items).Error; err != nil {
		return translate(err, "Sale item", "")
	}
	return nil
}

// UpdateHeader saves the mutable header fields only
func (r *GormSaleRepository) UpdateHeader(ctx context.Context, tenantID uuid.UUID, sale *trade.Sale) error {
	result := r.DB().WithContext(ctx).
		Model(&trade.Sale{}).
		Scopes(TenantScope(tenantID)).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"status":         sale.Status,
			"payment_status": sale.PaymentStatus,
			"payment_date":   sale.PaymentDate,
			"notes":          sale.Notes,
			"updated_at":     sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Sale")
	}
	return nil
}

// DeleteWithItems removes the sale and its items
func (r *GormSaleRepository) DeleteWithItems(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.DB().WithContext(ctx)
	if err := db.Scopes(TenantScope(tenantID)).Where("sale_id = ?", id).Delete(&trade.SaleItem{}).Error; err != nil {
		return err
	}
	return r.DeleteForTenant(ctx, tenantID, id)
}

// LatestInvoiceNumber returns the invoice number of the most recently
// created sale, or "" when the tenant has none
func (r *GormSaleRepository) LatestInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var sale trade.Sale
	err := r.DB().WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Select("invoice_number").
		Order("created_at DESC").
		Order("invoice_number DESC").
		First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sale.InvoiceNumber, nil
}

// ListInPeriod returns sales with items whose sale date falls in [from, to).
// Zero bounds are open.
func (r *GormSaleRepository) ListInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]trade.Sale, error) {
	q := r.preload(r.DB().WithContext(ctx).Scopes(TenantScope(tenantID)))
	if !from.IsZero() {
		q = q.Where("sale_date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("sale_date < ?", to)
	}
	var sales []trade.Sale
	err := q.Order("sale_date").Order("id").Find(&sales).Error
	return sales, err
}

// GormPaymentRepository implements trade.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindBySale lists the payments of a sale in the order they were made
func (r *GormPaymentRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]trade.Payment, error) {
	var payments []trade.Payment
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("sale_id = ?", saleID).
		Order("paid_at").
		Order("created_at").
		Find(&payments).Error
	return payments, err
}

// CountBySale counts the payments of a sale
func (r *GormPaymentRepository) CountBySale(ctx context.Context, tenantID, saleID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&trade.Payment{}).
		Scopes(TenantScope(tenantID)).
		Where("sale_id = ?", saleID).
		Count(&n).Error
	return n, err
}

// SumBySale totals the payments of a sale. Amounts are summed in decimal
// rather than in SQL so no precision is lost on any dialect.
func (r *GormPaymentRepository) SumBySale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error) {
	payments, err := r.FindBySale(ctx, tenantID, saleID)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

// Create inserts a payment under tenantID
func (r *GormPaymentRepository) Create(ctx context.Context, tenantID uuid.UUID, payment *trade.Payment) error {
	if tenantID == uuid.Nil {
		return ErrTenantRequired
	}
	payment.AssignTenant(tenantID)
	return translate(r.db.WithContext(ctx).Create(payment).Error, "Payment", "")
}

// ListInPeriod returns payments whose paid-at falls in [from, to)
func (r *GormPaymentRepository) ListInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]trade.Payment, error) {
	q := r.db.WithContext(ctx).Scopes(TenantScope(tenantID))
	if !from.IsZero() {
		q = q.Where("paid_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("paid_at < ?", to)
	}
	var payments []trade.Payment
	err := q.Order("paid_at").Find(&payments).Error
	return payments, err
}

// GormInvoiceSequenceRepository implements trade.InvoiceSequenceRepository
type GormInvoiceSequenceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceSequenceRepository creates a new GormInvoiceSequenceRepository
func NewGormInvoiceSequenceRepository(db *gorm.DB) *GormInvoiceSequenceRepository {
	return &GormInvoiceSequenceRepository{db: db}
}

// Lock loads the tenant's sequence row for update
func (r *GormInvoiceSequenceRepository) Lock(ctx context.Context, tenantID uuid.UUID) (*trade.InvoiceSequence, error) {
	var seq trade.InvoiceSequence
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID), ForUpdate).
		First(&seq).Error
	if err != nil {
		return nil, translate(err, "Invoice sequence", "")
	}
	return &seq, nil
}

// Init inserts the row unless another transaction already did
func (r *GormInvoiceSequenceRepository) Init(ctx context.Context, seq *trade.InvoiceSequence) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tenant_id"}}, DoNothing: true}).
		Create(seq).Error
}

// Save stores the last issued number
func (r *GormInvoiceSequenceRepository) Save(ctx context.Context, seq *trade.InvoiceSequence) error {
	return r.db.WithContext(ctx).
		Model(&trade.InvoiceSequence{}).
		Scopes(TenantScope(seq.TenantID)).
		Updates(map[string]any{
			"last_number": seq.LastNumber,
			"updated_at":  seq.UpdatedAt,
		}).Error
}

// Ensure interfaces are implemented
var (
	_ trade.SaleRepository            = (*GormSaleRepository)(nil)
	_ trade.PaymentRepository         = (*GormPaymentRepository)(nil)
	_ trade.InvoiceSequenceRepository = (*GormInvoiceSequenceRepository)(nil)
)
