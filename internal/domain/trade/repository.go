package trade

import (
	"context"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByIDForTenant loads a sale with its items ordered by sort order
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[Sale], error)

	// Create inserts the sale header and its items
	Create(ctx context.Context, tenantID uuid.UUID, sale *Sale) error

	// UpdateHeader saves header fields only
	UpdateHeader(ctx context.Context, tenantID uuid.UUID, sale *Sale) error

	// DeleteWithItems removes the sale and its items
	DeleteWithItems(ctx context.Context, tenantID, id uuid.UUID) error

	// LatestInvoiceNumber returns the invoice number of the most recently
	// created sale, or "" when the tenant has none
	LatestInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// ListInPeriod returns sales with items whose sale date falls in
	// [from, to); zero bounds are open
	ListInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Sale, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]Payment, error)
	CountBySale(ctx context.Context, tenantID, saleID uuid.UUID) (int64, error)
	SumBySale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error)
	Create(ctx context.Context, tenantID uuid.UUID, payment *Payment) error

	// ListInPeriod returns payments whose paid-at falls in [from, to)
	ListInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Payment, error)
}

// InvoiceSequenceRepository issues invoice numbers. Must be used inside the
// transaction that creates the sale.
type InvoiceSequenceRepository interface {
	// Lock loads the tenant's sequence row for update. Returns
	// shared.ErrNotFound when the tenant has no row yet.
	Lock(ctx context.Context, tenantID uuid.UUID) (*InvoiceSequence, error)

	// Init inserts the row unless another transaction already did
	Init(ctx context.Context, seq *InvoiceSequence) error

	Save(ctx context.Context, seq *InvoiceSequence) error
}
