package quotations

import (
	"context"
	"fmt"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Service handles quotation business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches a quotation with its lines.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Quotation, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// List returns quotation headers matching the filters.
func (s *Service) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Quotation, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}

// Create opens a draft quotation with its lines and computed totals.
func (s *Service) Create(ctx context.Context, tenantID, createdBy int64, req CreateQuotationRequest) (Quotation, error) {
	if req.ValidUntil.Before(req.QuoteDate) {
		return Quotation{}, fmt.Errorf("%w: valid_until must be on or after quote_date", httpx.ErrValidation)
	}
	for _, line := range req.Lines {
		if line.Kind == LinePart && line.PartID == nil {
			return Quotation{}, fmt.Errorf("%w: part lines require part_id", httpx.ErrValidation)
		}
	}

	docNumber, err := s.repo.NextDocNumber(ctx, tenantID, req.QuoteDate)
	if err != nil {
		return Quotation{}, fmt.Errorf("allocate doc number: %w", err)
	}

	header := Quotation{
		TenantID:   tenantID,
		DocNumber:  docNumber,
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		QuoteDate:  req.QuoteDate,
		ValidUntil: req.ValidUntil,
		Status:     StatusDraft,
		Notes:      req.Notes,
		CreatedBy:  createdBy,
	}
	lines := buildLines(0, req.Lines)
	header.Subtotal, header.TaxAmount, header.TotalAmount = sumLines(lines)

	var quotationID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Insert(ctx, header)
		if err != nil {
			return fmt.Errorf("insert quotation: %w", err)
		}
		quotationID = id
		for _, line := range lines {
			line.QuotationID = quotationID
			if err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Quotation{}, err
	}
	return s.repo.Get(ctx, tenantID, quotationID)
}

// Update edits a draft. Only DRAFT quotations are editable; providing lines
// replaces the full line set and recomputes totals.
func (s *Service) Update(ctx context.Context, tenantID, id int64, req UpdateQuotationRequest) (Quotation, error) {
	existing, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Quotation{}, err
	}
	if existing.Status != StatusDraft {
		return Quotation{}, fmt.Errorf("%w: only DRAFT quotations can be edited", httpx.ErrConflict)
	}

	if req.QuoteDate != nil {
		existing.QuoteDate = *req.QuoteDate
	}
	if req.ValidUntil != nil {
		existing.ValidUntil = *req.ValidUntil
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	if existing.ValidUntil.Before(existing.QuoteDate) {
		return Quotation{}, fmt.Errorf("%w: valid_until must be on or after quote_date", httpx.ErrValidation)
	}

	var lines []Line
	if req.Lines != nil {
		lines = buildLines(id, *req.Lines)
		existing.Subtotal, existing.TaxAmount, existing.TotalAmount = sumLines(lines)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, existing); err != nil {
			return err
		}
		if req.Lines == nil {
			return nil
		}
		if err := repo.DeleteLines(ctx, tenantID, id); err != nil {
			return err
		}
		for _, line := range lines {
			if err := repo.InsertLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Quotation{}, err
	}
	return s.repo.Get(ctx, tenantID, id)
}

// Submit moves a draft to SUBMITTED.
func (s *Service) Submit(ctx context.Context, tenantID, id, userID int64) (Quotation, error) {
	return s.transition(ctx, tenantID, id, userID, StatusDraft, StatusSubmitted, nil)
}

// Approve accepts a submitted quotation.
func (s *Service) Approve(ctx context.Context, tenantID, id, userID int64) (Quotation, error) {
	return s.transition(ctx, tenantID, id, userID, StatusSubmitted, StatusApproved, nil)
}

// Reject declines a submitted quotation with a reason.
func (s *Service) Reject(ctx context.Context, tenantID, id, userID int64, reason string) (Quotation, error) {
	return s.transition(ctx, tenantID, id, userID, StatusSubmitted, StatusRejected, &reason)
}

// MarkConverted stamps an approved quotation once a job card is opened from
// it. Called by the workshop service inside its own transaction scope.
func (s *Service) MarkConverted(ctx context.Context, tenantID, id, userID int64) error {
	existing, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing.Status != StatusApproved {
		return fmt.Errorf("%w: only APPROVED quotations can be converted", httpx.ErrConflict)
	}
	return s.repo.UpdateStatus(ctx, tenantID, id, StatusConverted, userID, nil)
}

func (s *Service) transition(ctx context.Context, tenantID, id, userID int64, from, to Status, reason *string) (Quotation, error) {
	existing, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Quotation{}, err
	}
	if existing.Status != from {
		return Quotation{}, fmt.Errorf("%w: cannot move %s quotation to %s", httpx.ErrConflict, existing.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, tenantID, id, to, userID, reason); err != nil {
		return Quotation{}, err
	}
	return s.repo.Get(ctx, tenantID, id)
}

func buildLines(quotationID int64, inputs []LineInput) []Line {
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		discount, tax, total := CalculateLineTotals(in.Quantity, in.UnitPrice, in.DiscountPercent, in.TaxPercent)
		line := Line{
			QuotationID:     quotationID,
			Kind:            in.Kind,
			PartID:          in.PartID,
			Description:     in.Description,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			DiscountPercent: in.DiscountPercent,
			DiscountAmount:  discount,
			TaxPercent:      in.TaxPercent,
			TaxAmount:       tax,
			LineTotal:       total,
			LineOrder:       in.LineOrder,
		}
		if line.LineOrder == 0 {
			line.LineOrder = i + 1
		}
		lines = append(lines, line)
	}
	return lines
}

func sumLines(lines []Line) (subtotal, taxAmount, totalAmount float64) {
	for _, line := range lines {
		subtotal += (line.Quantity * line.UnitPrice) - line.DiscountAmount
		taxAmount += line.TaxAmount
		totalAmount += line.LineTotal
	}
	return
}
