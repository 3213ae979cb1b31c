package workshop

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

type stubRepo struct {
	nextID      int64
	cards       map[int64]JobCard
	events      map[int64][]StageEvent
	inspections map[int64][]QCInspection
	seq         int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		cards:       make(map[int64]JobCard),
		events:      make(map[int64][]StageEvent),
		inspections: make(map[int64][]QCInspection),
	}
}

func (s *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func (s *stubRepo) Get(ctx context.Context, tenantID, id int64) (JobCard, error) {
	c, ok := s.cards[id]
	if !ok || c.TenantID != tenantID {
		return JobCard{}, httpx.ErrNotFound
	}
	return c, nil
}

func (s *stubRepo) List(ctx context.Context, tenantID int64, filters ListFilters) ([]JobCard, int, error) {
	var list []JobCard
	for _, c := range s.cards {
		if c.TenantID == tenantID {
			list = append(list, c)
		}
	}
	return list, len(list), nil
}

func (s *stubRepo) Insert(ctx context.Context, card JobCard) (int64, error) {
	s.nextID++
	card.ID = s.nextID
	card.OpenedAt = time.Now()
	card.StageEnteredAt = card.OpenedAt
	s.cards[card.ID] = card
	return card.ID, nil
}

func (s *stubRepo) SetStage(ctx context.Context, tenantID, id int64, stage Stage, delivered bool) error {
	c, ok := s.cards[id]
	if !ok || c.TenantID != tenantID {
		return httpx.ErrNotFound
	}
	c.Stage = stage
	c.StageEnteredAt = time.Now()
	if delivered {
		now := time.Now()
		c.DeliveredAt = &now
	}
	s.cards[id] = c
	return nil
}

func (s *stubRepo) SetAssignee(ctx context.Context, tenantID, id, userID int64) error {
	c, ok := s.cards[id]
	if !ok || c.TenantID != tenantID {
		return httpx.ErrNotFound
	}
	c.AssignedTo = &userID
	s.cards[id] = c
	return nil
}

func (s *stubRepo) InsertStageEvent(ctx context.Context, event StageEvent) error {
	s.events[event.JobCardID] = append(s.events[event.JobCardID], event)
	return nil
}

func (s *stubRepo) StageHistory(ctx context.Context, tenantID, jobCardID int64) ([]StageEvent, error) {
	return s.events[jobCardID], nil
}

func (s *stubRepo) InsertInspection(ctx context.Context, tenantID int64, qc QCInspection) (QCInspection, error) {
	qc.ID = int64(len(s.inspections[qc.JobCardID]) + 1)
	qc.InspectedAt = time.Now()
	s.inspections[qc.JobCardID] = append(s.inspections[qc.JobCardID], qc)
	return qc, nil
}

func (s *stubRepo) Inspections(ctx context.Context, tenantID, jobCardID int64) ([]QCInspection, error) {
	return s.inspections[jobCardID], nil
}

func (s *stubRepo) NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	s.seq++
	return fmt.Sprintf("JC-%s-%04d", date.Format("0601"), s.seq), nil
}

func (s *stubRepo) AgingCards(ctx context.Context, threshold time.Duration) ([]AgingCard, error) {
	var aging []AgingCard
	for _, c := range s.cards {
		if c.Stage == StageReady || c.Stage == StageDelivered {
			continue
		}
		inStage := time.Since(c.StageEnteredAt)
		if inStage > threshold {
			aging = append(aging, AgingCard{JobCardID: c.ID, DocNumber: c.DocNumber, TenantID: c.TenantID, Stage: c.Stage, InStage: inStage})
		}
	}
	return aging, nil
}

func newService(repo *stubRepo) *Service {
	return NewService(repo, nil)
}

func openCard(t *testing.T, service *Service) JobCard {
	t.Helper()
	card, err := service.Open(context.Background(), 1, 42, OpenJobCardRequest{CustomerID: 7, VehicleID: 12})
	require.NoError(t, err)
	return card
}

func moveTo(t *testing.T, service *Service, cardID int64, target Stage) JobCard {
	t.Helper()
	ctx := context.Background()
	for {
		card, err := service.Get(ctx, 1, cardID)
		require.NoError(t, err)
		if card.Stage == target {
			return card
		}
		card, err = service.MoveStage(ctx, 1, cardID, 42, nil)
		require.NoError(t, err)
	}
}

func TestNextStageSequence(t *testing.T) {
	require.Equal(t, StageDisassembly, NextStage(StageIntake))
	require.Equal(t, StageQC, NextStage(StageReassembly))
	require.Equal(t, Stage(""), NextStage(StageDelivered))
	require.Equal(t, Stage(""), NextStage(Stage("UNKNOWN")))
}

func TestOpenStartsAtIntakeWithHistory(t *testing.T) {
	repo := newStubRepo()
	service := newService(repo)

	card := openCard(t, service)

	require.Equal(t, StageIntake, card.Stage)
	require.Contains(t, card.DocNumber, "JC-")
	events, err := service.StageHistory(context.Background(), 1, card.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, StageIntake, events[0].ToStage)
	require.Nil(t, events[0].FromStage)
}

func TestMoveStageAdvancesOneStep(t *testing.T) {
	repo := newStubRepo()
	service := newService(repo)
	card := openCard(t, service)

	moved, err := service.MoveStage(context.Background(), 1, card.ID, 42, nil)
	require.NoError(t, err)
	require.Equal(t, StageDisassembly, moved.Stage)

	events, err := service.StageHistory(context.Background(), 1, card.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, StageIntake, *events[1].FromStage)
	require.Equal(t, StageDisassembly, events[1].ToStage)
}

func TestMoveStageBlockedInQC(t *testing.T) {
	repo := newStubRepo()
	service := newService(repo)
	card := openCard(t, service)
	moveTo(t, service, card.ID, StageQC)

	_, err := service.MoveStage(context.Background(), 1, card.ID, 42, nil)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDeliveredIsTerminal(t *testing.T) {
	repo := newStubRepo()
	service := newService(repo)
	card := openCard(t, service)
	moveTo(t, service, card.ID, StageQC)

	// Pass QC, then run out the rest of the pipeline.
	_, err := service.RecordInspection(context.Background(), 1, card.ID, 9, QCRequest{
		Items: []QCItemInput{{Name: "paint match", Score: 9}},
	})
	require.NoError(t, err)
	delivered := moveTo(t, service, card.ID, StageDelivered)
	require.NotNil(t, delivered.DeliveredAt)

	_, err = service.MoveStage(context.Background(), 1, card.ID, 42, nil)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestScoreInspection(t *testing.T) {
	score, passed := ScoreInspection([]QCItem{{Name: "a", Score: 8}, {Name: "b", Score: 10}})
	require.InDelta(t, 9, score, 1e-9)
	require.True(t, passed)

	// One item below the pass mark fails the whole inspection even with a
	// high average.
	score, passed = ScoreInspection([]QCItem{{Name: "a", Score: 10}, {Name: "b", Score: 6.5}})
	require.InDelta(t, 8.25, score, 1e-9)
	require.False(t, passed)

	_, passed = ScoreInspection(nil)
	require.False(t, passed)
}

func TestPassingInspectionMovesToReady(t *testing.T) {
	repo := newStubRepo()
	service := newService(repo)
	card := openCard(t, service)
	moveTo(t, service, card.ID, StageQC)

	qc, err := service.RecordInspection(context.Background(), 1, card.ID, 9, QCRequest{
		Items: []QCItemInput{{Name: "panel gaps", Score: 8}, {Name: "paint match", Score: 9}},
	})
	require.NoError(t, err)
	require.True(t, qc.Passed)

	current, err := service.Get(context.Background(), 1, card.ID)
	require.NoError(t, err)
	require.Equal(t, StageReady, current.Stage)
}

func TestFailingInspectionReturnsToReassembly(t *testing.T) {
	repo := newStubRepo()
	service := newService(repo)
	card := openCard(t, service)
	moveTo(t, service, card.ID, StageQC)

	qc, err := service.RecordInspection(context.Background(), 1, card.ID, 9, QCRequest{
		Items: []QCItemInput{{Name: "panel gaps", Score: 4}},
	})
	require.NoError(t, err)
	require.False(t, qc.Passed)

	current, err := service.Get(context.Background(), 1, card.ID)
	require.NoError(t, err)
	require.Equal(t, StageReassembly, current.Stage)
}

func TestInspectionOutsideQCRejected(t *testing.T) {
	repo := newStubRepo()
	service := newService(repo)
	card := openCard(t, service)

	_, err := service.RecordInspection(context.Background(), 1, card.ID, 9, QCRequest{
		Items: []QCItemInput{{Name: "panel gaps", Score: 9}},
	})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

var _ Repository = (*stubRepo)(nil)
