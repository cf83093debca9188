package trade

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// InvoiceSeed is the number the first invoice of a tenant follows
const InvoiceSeed int64 = 1000

// InvoicePrefix is prepended to every generated invoice number
const InvoicePrefix = "INV-"

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// FormatInvoiceNumber renders an invoice number, e.g. INV-001001
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%s%06d", InvoicePrefix, n)
}

// ParseInvoiceSuffix extracts the trailing integer of an invoice number
func ParseInvoiceSuffix(invoice string) (int64, bool) {
	m := trailingDigits.FindString(invoice)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// InvoiceSequence holds the last issued invoice number of a tenant. Its row is
// locked while a sale is created so numbers are issued one at a time.
type InvoiceSequence struct {
	TenantID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenantId"`
	LastNumber int64     `gorm:"not null" json:"lastNumber"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName returns the table name for GORM
func (InvoiceSequence) TableName() string {
	return "invoice_sequences"
}

// SeedSequence starts a sequence after the trailing number of lastInvoice, or
// after InvoiceSeed when there is none or it cannot be parsed
func SeedSequence(tenantID uuid.UUID, lastInvoice string) *InvoiceSequence {
	last := InvoiceSeed
	if n, ok := ParseInvoiceSuffix(lastInvoice); ok {
		last = n
	}
	return &InvoiceSequence{TenantID: tenantID, LastNumber: last, UpdatedAt: time.Now()}
}

// Next advances the sequence and returns the formatted invoice number
func (s *InvoiceSequence) Next() string {
	s.LastNumber++
	s.UpdatedAt = time.Now()
	return FormatInvoiceNumber(s.LastNumber)
}
