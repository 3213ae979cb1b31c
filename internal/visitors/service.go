package visitors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Service handles visitor business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CheckIn registers a walk-in and issues a fresh badge UUID.
func (s *Service) CheckIn(ctx context.Context, tenantID int64, req CheckInRequest) (Visit, error) {
	return s.repo.InsertVisit(ctx, Visit{
		TenantID:   tenantID,
		Badge:      uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Company:    req.Company,
		Purpose:    strings.TrimSpace(req.Purpose),
		HostUserID: req.HostUserID,
	})
}

// CheckOut closes the visit for a badge.
func (s *Service) CheckOut(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error) {
	return s.repo.CheckOut(ctx, tenantID, badge)
}

// FindByBadge resolves a badge to its visit.
func (s *Service) FindByBadge(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error) {
	return s.repo.FindByBadge(ctx, tenantID, badge)
}

// OpenVisits lists visitors currently on site.
func (s *Service) OpenVisits(ctx context.Context, tenantID int64) ([]Visit, error) {
	return s.repo.OpenVisits(ctx, tenantID)
}

// SubmitRequest stores a wizard submission as PENDING. The wizard collects
// its steps client side and submits once.
func (s *Service) SubmitRequest(ctx context.Context, tenantID int64, req SubmitRequestRequest) (VisitRequest, error) {
	return s.repo.InsertRequest(ctx, VisitRequest{
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       req.Email,
		Plate:       req.Plate,
		Description: strings.TrimSpace(req.Description),
		PreferredAt: req.PreferredAt,
		Status:      RequestPending,
	})
}

// ListRequests returns visit requests, optionally filtered by status.
func (s *Service) ListRequests(ctx context.Context, tenantID int64, status *RequestStatus) ([]VisitRequest, error) {
	return s.repo.ListRequests(ctx, tenantID, status)
}

// Review decides a pending request. Approval books an appointment at the
// given slot, or the requested one when none is supplied.
func (s *Service) Review(ctx context.Context, tenantID, requestID, reviewerID int64, req ReviewRequest) (VisitRequest, *Appointment, error) {
	var (
		request     VisitRequest
		appointment *Appointment
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		vr, err := repo.GetRequestForUpdate(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		if vr.Status != RequestPending {
			return fmt.Errorf("%w: request already %s", httpx.ErrConflict, vr.Status)
		}

		status := RequestDeclined
		if req.Approve {
			status = RequestApproved
		}
		if err := repo.SetRequestStatus(ctx, tenantID, requestID, status, reviewerID); err != nil {
			return err
		}
		vr.Status = status
		vr.ReviewedBy = &reviewerID
		request = vr

		if !req.Approve {
			return nil
		}
		scheduledAt := vr.PreferredAt
		if req.ScheduledAt != nil {
			scheduledAt = *req.ScheduledAt
		}
		booked, err := repo.InsertAppointment(ctx, Appointment{
			TenantID:       tenantID,
			VisitRequestID: requestID,
			ScheduledAt:    scheduledAt,
			CreatedBy:      reviewerID,
		})
		if err != nil {
			return fmt.Errorf("book appointment: %w", err)
		}
		appointment = &booked
		return nil
	})
	if err != nil {
		return VisitRequest{}, nil, err
	}
	return request, appointment, nil
}
