package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/internal/workshop"
)

// Service handles invoicing business logic.
type Service struct {
	repo     Repository
	workshop *workshop.Service
}

// NewService builds a Service instance.
func NewService(repo Repository, workshopService *workshop.Service) *Service {
	return &Service{repo: repo, workshop: workshopService}
}

// Get fetches one invoice.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Invoice, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// List returns invoices matching the filters.
func (s *Service) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Invoice, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}

// Issue bills a job card. The card must be at READY or DELIVERED, and a
// card carries at most one invoice.
func (s *Service) Issue(ctx context.Context, tenantID, issuedBy int64, req IssueInvoiceRequest) (Invoice, error) {
	card, err := s.workshop.Get(ctx, tenantID, req.JobCardID)
	if err != nil {
		return Invoice{}, fmt.Errorf("load job card: %w", err)
	}
	if card.Stage != workshop.StageReady && card.Stage != workshop.StageDelivered {
		return Invoice{}, fmt.Errorf("%w: job card is in %s, not ready for invoicing", httpx.ErrConflict, card.Stage)
	}

	docNumber, err := s.repo.NextDocNumber(ctx, tenantID, time.Now())
	if err != nil {
		return Invoice{}, fmt.Errorf("allocate doc number: %w", err)
	}
	return s.repo.Insert(ctx, Invoice{
		TenantID:    tenantID,
		DocNumber:   docNumber,
		JobCardID:   req.JobCardID,
		CustomerID:  card.CustomerID,
		TotalAmount: req.TotalAmount,
		Status:      InvoiceOpen,
		IssuedBy:    issuedBy,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
	})
}

// RecordPayment applies a receipt under a row lock. A payment exceeding
// the balance due is rejected outright; overpayments are never stored.
func (s *Service) RecordPayment(ctx context.Context, tenantID, invoiceID, receivedBy int64, req RecordPaymentRequest) (Payment, error) {
	if !ValidMethod(req.Method) {
		return Payment{}, fmt.Errorf("%w: unknown payment method %q", httpx.ErrValidation, req.Method)
	}
	payment := Payment{
		InvoiceID:  invoiceID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		ReceivedBy: receivedBy,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inv, err := repo.GetForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == InvoiceVoid {
			return fmt.Errorf("%w: invoice %s is void", httpx.ErrConflict, inv.DocNumber)
		}
		balance := inv.BalanceDue()
		if req.Amount > balance {
			return fmt.Errorf("%w: payment of %.2f exceeds balance due %.2f", httpx.ErrConflict, req.Amount, balance)
		}
		stored, err := repo.InsertPayment(ctx, payment)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		payment = stored

		paid := inv.PaidAmount + req.Amount
		status := InvoicePartial
		if paid >= inv.TotalAmount {
			status = InvoicePaid
		}
		return repo.SetPaid(ctx, tenantID, invoiceID, paid, status)
	})
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// Payments returns an invoice's receipts.
func (s *Service) Payments(ctx context.Context, tenantID, invoiceID int64) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.Payments(ctx, tenantID, invoiceID)
}
