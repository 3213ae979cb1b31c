package workshop

// OpenJobCardRequest opens a card directly, without a quotation.
type OpenJobCardRequest struct {
	CustomerID int64   `json:"customer_id" validate:"required,gt=0"`
	VehicleID  int64   `json:"vehicle_id" validate:"required,gt=0"`
	AssignedTo *int64  `json:"assigned_to,omitempty" validate:"omitempty,gt=0"`
	Notes      *string `json:"notes,omitempty"`
}

// ConvertRequest opens a card from an approved quotation.
type ConvertRequest struct {
	QuotationID int64  `json:"quotation_id" validate:"required,gt=0"`
	AssignedTo  *int64 `json:"assigned_to,omitempty" validate:"omitempty,gt=0"`
}

// MoveStageRequest advances a card to the next pipeline stage.
type MoveStageRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// AssignRequest hands a card to a technician.
type AssignRequest struct {
	AssignedTo int64 `json:"assigned_to" validate:"required,gt=0"`
}

// QCRequest records an inspection with its scored checklist.
type QCRequest struct {
	Items []QCItemInput `json:"items" validate:"required,min=1,dive"`
	Notes *string       `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// QCItemInput is one checklist entry to score.
type QCItemInput struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Score float64 `json:"score" validate:"gte=0,lte=10"`
}

// ListFilters narrows the job card listing.
type ListFilters struct {
	Stage      *Stage
	AssignedTo *int64
	Page       int
	PerPage    int
}
