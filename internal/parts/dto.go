package parts

// CreatePartRequest adds a catalogue entry.
type CreatePartRequest struct {
	SKU          string  `json:"sku" validate:"required,max=40"`
	Name         string  `json:"name" validate:"required,max=120"`
	Description  *string `json:"description,omitempty"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
	ReorderLevel float64 `json:"reorder_level" validate:"gte=0"`
}

// UpdatePartRequest edits catalogue fields. Stock is never edited directly;
// it only moves through the ledger.
type UpdatePartRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=120"`
	Description  *string  `json:"description,omitempty"`
	UnitPrice    *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	ReorderLevel *float64 `json:"reorder_level,omitempty" validate:"omitempty,gte=0"`
}

// MoveStockRequest appends one ledger entry. ADJUSTMENT accepts a negative
// quantity; RECEIPT and ISSUE require a positive one.
type MoveStockRequest struct {
	Type      MovementType `json:"type" validate:"required,oneof=RECEIPT ISSUE ADJUSTMENT"`
	Quantity  float64      `json:"quantity" validate:"required"`
	JobCardID *int64       `json:"job_card_id,omitempty" validate:"omitempty,gt=0"`
	Reference *string      `json:"reference,omitempty" validate:"omitempty,max=120"`
}

// ListFilters narrows the catalogue listing.
type ListFilters struct {
	Search   string
	LowStock bool
	Page     int
	PerPage  int
}
