package trade

import (
	"strings"
	"time"

	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money received against a sale
type Payment struct {
	shared.TenantEntity
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"saleId"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	PaidAt    time.Time       `gorm:"not null" json:"paidAt"`
	Reference string          `gorm:"type:varchar(100)" json:"reference"`
	Notes     string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment against a sale
func NewPayment(tenantID, saleID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt *time.Time, reference, notes string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.InvalidInput("Payment amount must be greater than zero")
	}
	method = PaymentMethod(strings.ToUpper(strings.TrimSpace(string(method))))
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.InvalidInput("Payment method must be one of CASH, CARD, BANK_TRANSFER, OTHER")
	}
	p := &Payment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		SaleID:       saleID,
		Amount:       amount,
		Method:       method,
		Reference:    strings.TrimSpace(reference),
		Notes:        notes,
	}
	p.PaidAt = p.CreatedAt
	if paidAt != nil && !paidAt.IsZero() {
		p.PaidAt = *paidAt
	}
	return p, nil
}
