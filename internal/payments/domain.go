// Package payments issues invoices for delivered repair work and records
// customer payments against them.
package payments

import "time"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceOpen    InvoiceStatus = "OPEN"
	InvoicePartial InvoiceStatus = "PARTIAL"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoiceVoid    InvoiceStatus = "VOID"
)

// Method is how a payment was made.
type Method string

const (
	MethodCash     Method = "CASH"
	MethodCard     Method = "CARD"
	MethodTransfer Method = "TRANSFER"
	MethodInsurer  Method = "INSURER"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodInsurer:
		return true
	}
	return false
}

// Invoice bills a customer for one job card.
type Invoice struct {
	ID          int64         `json:"id"`
	TenantID    int64         `json:"tenant_id"`
	DocNumber   string        `json:"doc_number"`
	JobCardID   int64         `json:"job_card_id"`
	CustomerID  int64         `json:"customer_id"`
	TotalAmount float64       `json:"total_amount"`
	PaidAmount  float64       `json:"paid_amount"`
	Status      InvoiceStatus `json:"status"`
	IssuedBy    int64         `json:"issued_by"`
	IssuedAt    time.Time     `json:"issued_at"`
	DueDate     time.Time     `json:"due_date"`
	Notes       *string       `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BalanceDue is the outstanding amount on the invoice.
func (i Invoice) BalanceDue() float64 {
	return i.TotalAmount - i.PaidAmount
}

// Payment is one receipt against an invoice.
type Payment struct {
	ID         int64     `json:"id"`
	InvoiceID  int64     `json:"invoice_id"`
	Amount     float64   `json:"amount"`
	Method     Method    `json:"method"`
	Reference  *string   `json:"reference,omitempty"`
	ReceivedBy int64     `json:"received_by"`
	ReceivedAt time.Time `json:"received_at"`
}
