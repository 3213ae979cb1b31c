package workshop

import (
	"context"
	"fmt"
	"time"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/internal/quotations"
)

// Service handles job card business logic.
type Service struct {
	repo       Repository
	quotations *quotations.Service
}

// NewService builds a Service instance.
func NewService(repo Repository, quotationsService *quotations.Service) *Service {
	return &Service{repo: repo, quotations: quotationsService}
}

// Get fetches one job card.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (JobCard, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// List returns job cards matching the filters.
func (s *Service) List(ctx context.Context, tenantID int64, filters ListFilters) ([]JobCard, int, error) {
	return s.repo.List(ctx, tenantID, filters)
}

// Open starts a job card at INTAKE without a quotation.
func (s *Service) Open(ctx context.Context, tenantID, openedBy int64, req OpenJobCardRequest) (JobCard, error) {
	return s.open(ctx, tenantID, openedBy, JobCard{
		TenantID:   tenantID,
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		AssignedTo: req.AssignedTo,
		Notes:      req.Notes,
		OpenedBy:   openedBy,
	})
}

// Convert opens a job card from an approved quotation and stamps the
// quotation CONVERTED.
func (s *Service) Convert(ctx context.Context, tenantID, openedBy int64, req ConvertRequest) (JobCard, error) {
	quotation, err := s.quotations.Get(ctx, tenantID, req.QuotationID)
	if err != nil {
		return JobCard{}, fmt.Errorf("load quotation: %w", err)
	}
	if quotation.Status != quotations.StatusApproved {
		return JobCard{}, fmt.Errorf("%w: only APPROVED quotations can be converted", httpx.ErrConflict)
	}
	card, err := s.open(ctx, tenantID, openedBy, JobCard{
		TenantID:    tenantID,
		QuotationID: &req.QuotationID,
		CustomerID:  quotation.CustomerID,
		VehicleID:   quotation.VehicleID,
		AssignedTo:  req.AssignedTo,
		OpenedBy:    openedBy,
	})
	if err != nil {
		return JobCard{}, err
	}
	if err := s.quotations.MarkConverted(ctx, tenantID, req.QuotationID, openedBy); err != nil {
		return JobCard{}, fmt.Errorf("mark quotation converted: %w", err)
	}
	return card, nil
}

func (s *Service) open(ctx context.Context, tenantID, openedBy int64, card JobCard) (JobCard, error) {
	docNumber, err := s.repo.NextDocNumber(ctx, tenantID, time.Now())
	if err != nil {
		return JobCard{}, fmt.Errorf("allocate doc number: %w", err)
	}
	card.DocNumber = docNumber
	card.Stage = StageIntake

	var cardID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Insert(ctx, card)
		if err != nil {
			return fmt.Errorf("insert job card: %w", err)
		}
		cardID = id
		return repo.InsertStageEvent(ctx, StageEvent{
			JobCardID: cardID,
			ToStage:   StageIntake,
			MovedBy:   openedBy,
		})
	})
	if err != nil {
		return JobCard{}, err
	}
	return s.repo.Get(ctx, tenantID, cardID)
}

// MoveStage advances a card one stage forward. Cards in QC only move
// through a recorded inspection, and DELIVERED is terminal.
func (s *Service) MoveStage(ctx context.Context, tenantID, id, userID int64, note *string) (JobCard, error) {
	card, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return JobCard{}, err
	}
	if card.Stage == StageQC {
		return JobCard{}, fmt.Errorf("%w: QC cards move through an inspection", httpx.ErrConflict)
	}
	next := NextStage(card.Stage)
	if next == "" {
		return JobCard{}, fmt.Errorf("%w: card is already %s", httpx.ErrConflict, card.Stage)
	}
	if err := s.applyStage(ctx, tenantID, card, next, userID, note); err != nil {
		return JobCard{}, err
	}
	return s.repo.Get(ctx, tenantID, id)
}

// Assign hands the card to a technician.
func (s *Service) Assign(ctx context.Context, tenantID, id, userID, assignee int64) (JobCard, error) {
	if err := s.repo.SetAssignee(ctx, tenantID, id, assignee); err != nil {
		return JobCard{}, err
	}
	return s.repo.Get(ctx, tenantID, id)
}

// RecordInspection scores a QC checklist. A pass advances the card to
// READY; a fail returns it to REASSEMBLY for rework.
func (s *Service) RecordInspection(ctx context.Context, tenantID, id, inspectorID int64, req QCRequest) (QCInspection, error) {
	card, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return QCInspection{}, err
	}
	if card.Stage != StageQC {
		return QCInspection{}, fmt.Errorf("%w: card is in %s, not QC", httpx.ErrConflict, card.Stage)
	}

	items := make([]QCItem, len(req.Items))
	for i, in := range req.Items {
		items[i] = QCItem{Name: in.Name, Score: in.Score}
	}
	score, passed := ScoreInspection(items)
	qc := QCInspection{
		JobCardID:   id,
		InspectorID: inspectorID,
		Items:       items,
		Score:       score,
		Passed:      passed,
		Notes:       req.Notes,
	}

	target := StageReady
	if !passed {
		target = StageReassembly
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		stored, err := repo.InsertInspection(ctx, tenantID, qc)
		if err != nil {
			return fmt.Errorf("insert inspection: %w", err)
		}
		qc = stored
		from := card.Stage
		if err := repo.SetStage(ctx, tenantID, id, target, false); err != nil {
			return err
		}
		return repo.InsertStageEvent(ctx, StageEvent{
			JobCardID: id,
			FromStage: &from,
			ToStage:   target,
			MovedBy:   inspectorID,
			Note:      qc.Notes,
		})
	})
	if err != nil {
		return QCInspection{}, err
	}
	return qc, nil
}

// StageHistory returns the card's transitions in order.
func (s *Service) StageHistory(ctx context.Context, tenantID, id int64) ([]StageEvent, error) {
	if _, err := s.repo.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.repo.StageHistory(ctx, tenantID, id)
}

// Inspections lists a card's QC inspections.
func (s *Service) Inspections(ctx context.Context, tenantID, id int64) ([]QCInspection, error) {
	if _, err := s.repo.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.repo.Inspections(ctx, tenantID, id)
}

// AgingCards returns cards stuck in a stage past the threshold.
func (s *Service) AgingCards(ctx context.Context, threshold time.Duration) ([]AgingCard, error) {
	return s.repo.AgingCards(ctx, threshold)
}

func (s *Service) applyStage(ctx context.Context, tenantID int64, card JobCard, to Stage, userID int64, note *string) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.SetStage(ctx, tenantID, card.ID, to, to == StageDelivered); err != nil {
			return err
		}
		from := card.Stage
		return repo.InsertStageEvent(ctx, StageEvent{
			JobCardID: card.ID,
			FromStage: &from,
			ToStage:   to,
			MovedBy:   userID,
			Note:      note,
		})
	})
}
