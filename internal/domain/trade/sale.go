package trade

import (
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "DRAFT"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus represents how much of a sale has been paid
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// Sale is a completed or draft sale to a customer
type Sale struct {
	shared.TenantEntity
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"customerId"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null" json:"invoiceNumber"`
	SaleDate      time.Time       `gorm:"not null;index" json:"saleDate"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;default:'COMPLETED';index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"paymentStatus"`
	PaymentDate   *time.Time      `json:"paymentDate,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null;index" json:"createdBy"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a sale. Items are immutable once written.
type SaleItem struct {
	shared.TenantEntity
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"saleId"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	LocationID *uuid.UUID      `gorm:"type:uuid" json:"locationId,omitempty"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	Discount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"lineTotal"`
	Notes      string          `gorm:"type:text" json:"notes"`
	SortOrder  int             `gorm:"not null;default:0" json:"sortOrder"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// LineInput describes one requested sale line
type LineInput struct {
	ProductID  uuid.UUID
	LocationID *uuid.UUID
	Quantity   int64
	Price      decimal.Decimal
	Discount   decimal.Decimal
	Notes      string
}

// Validate checks a single line
func (l LineInput) Validate() error {
	if l.ProductID == uuid.Nil {
		return shared.InvalidInput("Each item requires a productId")
	}
	if l.Quantity <= 0 {
		return shared.InvalidInput("Each item quantity must be greater than zero")
	}
	if l.Price.IsNegative() {
		return shared.InvalidInput("Item price cannot be negative")
	}
	if l.Discount.IsNegative() {
		return shared.InvalidInput("Item discount cannot be negative")
	}
	if l.Discount.GreaterThan(l.gross()) {
		return shared.InvalidInput("Item discount cannot exceed the line amount").
			WithDetails(map[string]any{"productId": l.ProductID.String()})
	}
	return nil
}

func (l LineInput) gross() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// LineTotal returns price times quantity minus the line discount
func (l LineInput) LineTotal() decimal.Decimal {
	return l.gross().Sub(l.Discount)
}

// SaleDetails holds the header fields accepted on create
type SaleDetails struct {
	CustomerID    uuid.UUID
	SaleDate      *time.Time
	Status        SaleStatus
	PaymentStatus PaymentStatus
	PaymentDate   *time.Time
	Notes         string
}

// NewSale builds a sale with its items and computed total. The invoice
// number is assigned separately.
func NewSale(tenantID, createdBy uuid.UUID, details SaleDetails, lines []LineInput) (*Sale, error) {
	if details.CustomerID == uuid.Nil {
		return nil, shared.InvalidInput("customerId is required")
	}
	if len(lines) == 0 {
		return nil, shared.InvalidInput("At least one item is required")
	}
	status := details.Status
	if status == "" {
		status = SaleStatusCompleted
	}
	if !status.IsValid() {
		return nil, shared.InvalidInput("Invalid sale status")
	}
	paymentStatus := details.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentStatusPending
	}
	if !paymentStatus.IsValid() {
		return nil, shared.InvalidInput("Invalid payment status")
	}

	sale := &Sale{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		CustomerID:    details.CustomerID,
		Status:        status,
		PaymentStatus: paymentStatus,
		PaymentDate:   details.PaymentDate,
		Notes:         strings.TrimSpace(details.Notes),
		CreatedBy:     createdBy,
		Total:         decimal.Zero,
	}
	sale.SaleDate = sale.CreatedAt
	if details.SaleDate != nil && !details.SaleDate.IsZero() {
		sale.SaleDate = *details.SaleDate
	}

	sale.Items = make([]SaleItem, 0, len(lines))
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
		lineTotal := line.LineTotal()
		sale.Items = append(sale.Items, SaleItem{
			TenantEntity: shared.NewTenantEntity(tenantID),
			SaleID:       sale.ID,
			ProductID:    line.ProductID,
			LocationID:   line.LocationID,
			Quantity:     line.Quantity,
			Price:        line.Price,
			Discount:     line.Discount,
			LineTotal:    lineTotal,
			Notes:        line.Notes,
			SortOrder:    i,
		})
		sale.Total = sale.Total.Add(lineTotal)
	}
	return sale, nil
}

// SaleUpdate holds the header fields that can change after creation
type SaleUpdate struct {
	Status        *SaleStatus
	PaymentStatus *PaymentStatus
	PaymentDate   *time.Time
	Notes         *string
}

// ApplyUpdate changes header fields. Items are never touched.
func (s *Sale) ApplyUpdate(u SaleUpdate) error {
	if u.Status != nil {
		if !u.Status.IsValid() {
			return shared.InvalidInput("Invalid sale status")
		}
		s.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		if !u.PaymentStatus.IsValid() {
			return shared.InvalidInput("Invalid payment status")
		}
		s.PaymentStatus = *u.PaymentStatus
	}
	if u.PaymentDate != nil {
		s.PaymentDate = u.PaymentDate
	}
	if u.Notes != nil {
		s.Notes = strings.TrimSpace(*u.Notes)
	}
	s.Touch()
	return nil
}

// SettleWith derives payment status from the total amount paid so far
func (s *Sale) SettleWith(paid decimal.Decimal, at time.Time) {
	switch {
	case paid.IsZero() || paid.IsNegative():
		s.PaymentStatus = PaymentStatusPending
	case paid.LessThan(s.Total):
		s.PaymentStatus = PaymentStatusPartial
		s.PaymentDate = &at
	default:
		s.PaymentStatus = PaymentStatusPaid
		s.PaymentDate = &at
	}
	s.Touch()
}
