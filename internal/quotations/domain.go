// Package quotations manages repair quotations from draft through approval
// and conversion into workshop job cards.
package quotations

import "time"

// Status is the lifecycle state of a quotation.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusConverted Status = "CONVERTED"
)

// LineKind distinguishes labor work from replacement parts on a quotation.
type LineKind string

const (
	LineLabor LineKind = "LABOR"
	LinePart  LineKind = "PART"
)

// Quotation is a priced repair estimate for one vehicle.
type Quotation struct {
	ID              int64      `json:"id"`
	TenantID        int64      `json:"tenant_id"`
	DocNumber       string     `json:"doc_number"`
	CustomerID      int64      `json:"customer_id"`
	VehicleID       int64      `json:"vehicle_id"`
	QuoteDate       time.Time  `json:"quote_date"`
	ValidUntil      time.Time  `json:"valid_until"`
	Status          Status     `json:"status"`
	Subtotal        float64    `json:"subtotal"`
	TaxAmount       float64    `json:"tax_amount"`
	TotalAmount     float64    `json:"total_amount"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedBy       int64      `json:"created_by"`
	DecidedBy       *int64     `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Lines           []Line     `json:"lines,omitempty"`
}

// Line is one labor or part item on a quotation.
type Line struct {
	ID              int64    `json:"id"`
	QuotationID     int64    `json:"quotation_id"`
	Kind            LineKind `json:"kind"`
	PartID          *int64   `json:"part_id,omitempty"`
	Description     string   `json:"description"`
	Quantity        float64  `json:"quantity"`
	UnitPrice       float64  `json:"unit_price"`
	DiscountPercent float64  `json:"discount_percent"`
	DiscountAmount  float64  `json:"discount_amount"`
	TaxPercent      float64  `json:"tax_percent"`
	TaxAmount       float64  `json:"tax_amount"`
	LineTotal       float64  `json:"line_total"`
	LineOrder       int      `json:"line_order"`
}

// CalculateLineTotals applies the discount before tax and returns the
// discount amount, tax amount, and final line total.
func CalculateLineTotals(quantity, unitPrice, discountPercent, taxPercent float64) (discountAmount, taxAmount, lineTotal float64) {
	grossAmount := quantity * unitPrice
	discountAmount = grossAmount * (discountPercent / 100)
	netAmount := grossAmount - discountAmount
	taxAmount = netAmount * (taxPercent / 100)
	lineTotal = netAmount + taxAmount
	return
}
