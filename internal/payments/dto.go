package payments

import "time"

// IssueInvoiceRequest bills a job card.
type IssueInvoiceRequest struct {
	JobCardID   int64     `json:"job_card_id" validate:"required,gt=0"`
	TotalAmount float64   `json:"total_amount" validate:"required,gt=0"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Notes       *string   `json:"notes,omitempty"`
}

// RecordPaymentRequest applies a receipt to an invoice.
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    Method  `json:"method" validate:"required,oneof=CASH CARD TRANSFER INSURER"`
	Reference *string `json:"reference,omitempty" validate:"omitempty,max=120"`
}

// ListFilters narrows the invoice listing.
type ListFilters struct {
	CustomerID *int64
	Status     *InvoiceStatus
	Page       int
	PerPage    int
}
