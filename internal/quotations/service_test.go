package quotations

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

type stubRepo struct {
	nextID     int64
	quotations map[int64]Quotation
	lines      map[int64][]Line
	seq        int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		quotations: make(map[int64]Quotation),
		lines:      make(map[int64][]Line),
	}
}

func (s *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func (s *stubRepo) Get(ctx context.Context, tenantID, id int64) (Quotation, error) {
	q, ok := s.quotations[id]
	if !ok || q.TenantID != tenantID {
		return Quotation{}, httpx.ErrNotFound
	}
	q.Lines = s.lines[id]
	return q, nil
}

func (s *stubRepo) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Quotation, int, error) {
	var list []Quotation
	for _, q := range s.quotations {
		if q.TenantID == tenantID {
			list = append(list, q)
		}
	}
	return list, len(list), nil
}

func (s *stubRepo) Insert(ctx context.Context, q Quotation) (int64, error) {
	s.nextID++
	q.ID = s.nextID
	s.quotations[q.ID] = q
	return q.ID, nil
}

func (s *stubRepo) UpdateHeader(ctx context.Context, q Quotation) error {
	stored, ok := s.quotations[q.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	stored.QuoteDate = q.QuoteDate
	stored.ValidUntil = q.ValidUntil
	stored.Notes = q.Notes
	stored.Subtotal = q.Subtotal
	stored.TaxAmount = q.TaxAmount
	stored.TotalAmount = q.TotalAmount
	s.quotations[q.ID] = stored
	return nil
}

func (s *stubRepo) InsertLine(ctx context.Context, line Line) error {
	s.lines[line.QuotationID] = append(s.lines[line.QuotationID], line)
	return nil
}

func (s *stubRepo) DeleteLines(ctx context.Context, tenantID, quotationID int64) error {
	delete(s.lines, quotationID)
	return nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, tenantID, id int64, status Status, userID int64, reason *string) error {
	q, ok := s.quotations[id]
	if !ok || q.TenantID != tenantID {
		return httpx.ErrNotFound
	}
	q.Status = status
	q.DecidedBy = &userID
	q.RejectionReason = reason
	s.quotations[id] = q
	return nil
}

func (s *stubRepo) NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	s.seq++
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), s.seq), nil
}

func validCreateRequest() CreateQuotationRequest {
	quoteDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return CreateQuotationRequest{
		CustomerID: 7,
		VehicleID:  12,
		QuoteDate:  quoteDate,
		ValidUntil: quoteDate.AddDate(0, 0, 14),
		Lines: []LineInput{
			{Kind: LineLabor, Description: "Panel beating, rear quarter", Quantity: 6, UnitPrice: 85},
			{Kind: LinePart, PartID: ptr(int64(3)), Description: "Rear bumper cover", Quantity: 1, UnitPrice: 420, TaxPercent: 15},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestCalculateLineTotals(t *testing.T) {
	discount, tax, total := CalculateLineTotals(2, 100, 10, 15)

	require.InDelta(t, 20, discount, 1e-9)
	require.InDelta(t, 27, tax, 1e-9)
	require.InDelta(t, 207, total, 1e-9)
}

func TestCreateComputesTotals(t *testing.T) {
	service := NewService(newStubRepo())

	q, err := service.Create(context.Background(), 1, 42, validCreateRequest())
	require.NoError(t, err)

	require.Equal(t, StatusDraft, q.Status)
	require.Len(t, q.Lines, 2)
	require.InDelta(t, 930, q.Subtotal, 1e-9)      // 6*85 + 420
	require.InDelta(t, 63, q.TaxAmount, 1e-9)      // 15% of 420
	require.InDelta(t, 993, q.TotalAmount, 1e-9)
	require.Equal(t, 1, q.Lines[0].LineOrder)
	require.Equal(t, 2, q.Lines[1].LineOrder)
	require.Contains(t, q.DocNumber, "QT-2603-")
}

func TestCreateRejectsPartLineWithoutPartID(t *testing.T) {
	service := NewService(newStubRepo())
	req := validCreateRequest()
	req.Lines[1].PartID = nil

	_, err := service.Create(context.Background(), 1, 42, req)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsExpiryBeforeQuoteDate(t *testing.T) {
	service := NewService(newStubRepo())
	req := validCreateRequest()
	req.ValidUntil = req.QuoteDate.AddDate(0, 0, -1)

	_, err := service.Create(context.Background(), 1, 42, req)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestStatusFlow(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	q, err := service.Create(ctx, 1, 42, validCreateRequest())
	require.NoError(t, err)

	// Approving a draft skips SUBMITTED and must fail.
	_, err = service.Approve(ctx, 1, q.ID, 9)
	require.ErrorIs(t, err, httpx.ErrConflict)

	q, err = service.Submit(ctx, 1, q.ID, 42)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, q.Status)

	q, err = service.Approve(ctx, 1, q.ID, 9)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, q.Status)

	// Terminal for the approval flow: no second decision.
	_, err = service.Reject(ctx, 1, q.ID, 9, "changed my mind")
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestRejectRecordsReason(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	q, err := service.Create(ctx, 1, 42, validCreateRequest())
	require.NoError(t, err)
	_, err = service.Submit(ctx, 1, q.ID, 42)
	require.NoError(t, err)

	q, err = service.Reject(ctx, 1, q.ID, 9, "insurer declined")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, q.Status)
	require.NotNil(t, q.RejectionReason)
	require.Equal(t, "insurer declined", *q.RejectionReason)
}

func TestUpdateOnlyDraft(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	q, err := service.Create(ctx, 1, 42, validCreateRequest())
	require.NoError(t, err)
	_, err = service.Submit(ctx, 1, q.ID, 42)
	require.NoError(t, err)

	_, err = service.Update(ctx, 1, q.ID, UpdateQuotationRequest{Notes: ptr("late edit")})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateReplacesLinesAndTotals(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	q, err := service.Create(ctx, 1, 42, validCreateRequest())
	require.NoError(t, err)

	newLines := []LineInput{{Kind: LineLabor, Description: "Respray only", Quantity: 4, UnitPrice: 90}}
	q, err = service.Update(ctx, 1, q.ID, UpdateQuotationRequest{Lines: &newLines})
	require.NoError(t, err)

	require.Len(t, q.Lines, 1)
	require.InDelta(t, 360, q.TotalAmount, 1e-9)
}

func TestMarkConvertedRequiresApproved(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	q, err := service.Create(ctx, 1, 42, validCreateRequest())
	require.NoError(t, err)

	err = service.MarkConverted(ctx, 1, q.ID, 42)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = service.Submit(ctx, 1, q.ID, 42)
	require.NoError(t, err)
	_, err = service.Approve(ctx, 1, q.ID, 9)
	require.NoError(t, err)

	require.NoError(t, service.MarkConverted(ctx, 1, q.ID, 42))
	q, err = service.Get(ctx, 1, q.ID)
	require.NoError(t, err)
	require.Equal(t, StatusConverted, q.Status)
}

func TestGetScopedToTenant(t *testing.T) {
	service := NewService(newStubRepo())
	ctx := context.Background()

	q, err := service.Create(ctx, 1, 42, validCreateRequest())
	require.NoError(t, err)

	_, err = service.Get(ctx, 2, q.ID)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

var _ Repository = (*stubRepo)(nil)
