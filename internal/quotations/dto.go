package quotations

import "time"

// CreateQuotationRequest opens a new draft quotation.
type CreateQuotationRequest struct {
	CustomerID int64       `json:"customer_id" validate:"required,gt=0"`
	VehicleID  int64       `json:"vehicle_id" validate:"required,gt=0"`
	QuoteDate  time.Time   `json:"quote_date" validate:"required"`
	ValidUntil time.Time   `json:"valid_until" validate:"required"`
	Notes      *string     `json:"notes,omitempty"`
	Lines      []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// LineInput is one requested labor or part line.
type LineInput struct {
	Kind            LineKind `json:"kind" validate:"required,oneof=LABOR PART"`
	PartID          *int64   `json:"part_id,omitempty" validate:"omitempty,gt=0"`
	Description     string   `json:"description" validate:"required,max=200"`
	Quantity        float64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice       float64  `json:"unit_price" validate:"gte=0"`
	DiscountPercent float64  `json:"discount_percent" validate:"gte=0,lte=100"`
	TaxPercent      float64  `json:"tax_percent" validate:"gte=0,lte=100"`
	LineOrder       int      `json:"line_order" validate:"gte=0"`
}

// UpdateQuotationRequest edits a draft. Supplying lines replaces the full
// line set.
type UpdateQuotationRequest struct {
	QuoteDate  *time.Time   `json:"quote_date,omitempty"`
	ValidUntil *time.Time   `json:"valid_until,omitempty"`
	Notes      *string      `json:"notes,omitempty"`
	Lines      *[]LineInput `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ListFilters narrows the quotation listing.
type ListFilters struct {
	CustomerID *int64
	Status     *Status
	Page       int
	PerPage    int
}
