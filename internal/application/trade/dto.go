package trade

import (
	"time"

	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItemInput is one requested line of a new sale. Quantity, price and
// discount are range-checked by the domain so that violations report
// INVALID_INPUT.
type SaleItemInput struct {
	ProductID  uuid.UUID        `json:"productId" binding:"required"`
	LocationID *uuid.UUID       `json:"locationId"`
	Quantity   int64            `json:"quantity"`
	Price      decimal.Decimal  `json:"price"`
	Discount   *decimal.Decimal `json:"discount"`
	Notes      string           `json:"notes" binding:"max=500"`
}

// CreateSaleInput represents a request to record a sale
type CreateSaleInput struct {
	CustomerID    uuid.UUID       `json:"customerId"`
	SaleDate      *time.Time      `json:"saleDate"`
	Status        string          `json:"status" binding:"omitempty,oneof=DRAFT COMPLETED CANCELLED"`
	PaymentStatus string          `json:"paymentStatus" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	PaymentDate   *time.Time      `json:"paymentDate"`
	Notes         string          `json:"notes" binding:"max=2000"`
	Items         []SaleItemInput `json:"items" binding:"dive"`
}

// UpdateSaleInput changes the header of a sale. Items cannot be edited.
type UpdateSaleInput struct {
	Status        *string    `json:"status" binding:"omitempty,oneof=DRAFT COMPLETED CANCELLED"`
	PaymentStatus *string    `json:"paymentStatus" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	PaymentDate   *time.Time `json:"paymentDate"`
	Notes         *string    `json:"notes" binding:"omitempty,max=2000"`
}

// RecordPaymentInput represents a payment received against a sale
type RecordPaymentInput struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER OTHER"`
	PaidAt    *time.Time      `json:"paidAt"`
	Reference string          `json:"reference" binding:"max=100"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"productId"`
	LocationID *uuid.UUID      `json:"locationId,omitempty"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Discount   decimal.Decimal `json:"discount"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	Notes      string          `json:"notes"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenantId"`
	CustomerID    uuid.UUID          `json:"customerId"`
	InvoiceNumber string             `json:"invoiceNumber"`
	SaleDate      time.Time          `json:"saleDate"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	PaymentDate   *time.Time         `json:"paymentDate,omitempty"`
	Notes         string             `json:"notes"`
	CreatedBy     uuid.UUID          `json:"createdBy"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			LocationID: it.LocationID,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Discount:   it.Discount,
			LineTotal:  it.LineTotal,
			Notes:      it.Notes,
		})
	}
	return SaleResponse{
		ID:            s.ID,
		TenantID:      s.TenantID,
		CustomerID:    s.CustomerID,
		InvoiceNumber: s.InvoiceNumber,
		SaleDate:      s.SaleDate,
		Total:         s.Total,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		PaymentDate:   s.PaymentDate,
		Notes:         s.Notes,
		CreatedBy:     s.CreatedBy,
		Items:         items,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	SaleID    uuid.UUID       `json:"saleId"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	PaidAt    time.Time       `json:"paidAt"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *trade.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		SaleID:    p.SaleID,
		Amount:    p.Amount,
		Method:    string(p.Method),
		PaidAt:    p.PaidAt,
		Reference: p.Reference,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}

// PaymentReceipt is returned after recording a payment
type PaymentReceipt struct {
	Payment       PaymentResponse `json:"payment"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentStatus string          `json:"paymentStatus"`
}
