package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/internal/workshop"
)

type stubRepo struct {
	nextID   int64
	invoices map[int64]Invoice
	payments map[int64][]Payment
	seq      int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{invoices: make(map[int64]Invoice), payments: make(map[int64][]Payment)}
}

func (s *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func (s *stubRepo) Get(ctx context.Context, tenantID, id int64) (Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return Invoice{}, httpx.ErrNotFound
	}
	return inv, nil
}

func (s *stubRepo) GetForUpdate(ctx context.Context, tenantID, id int64) (Invoice, error) {
	return s.Get(ctx, tenantID, id)
}

func (s *stubRepo) List(ctx context.Context, tenantID int64, filters ListFilters) ([]Invoice, int, error) {
	var list []Invoice
	for _, inv := range s.invoices {
		if inv.TenantID == tenantID {
			list = append(list, inv)
		}
	}
	return list, len(list), nil
}

func (s *stubRepo) Insert(ctx context.Context, inv Invoice) (Invoice, error) {
	for _, existing := range s.invoices {
		if existing.TenantID == inv.TenantID && existing.JobCardID == inv.JobCardID {
			return Invoice{}, httpx.ErrDuplicate
		}
	}
	s.nextID++
	inv.ID = s.nextID
	inv.IssuedAt = time.Now()
	s.invoices[inv.ID] = inv
	return inv, nil
}

func (s *stubRepo) SetPaid(ctx context.Context, tenantID, id int64, paid float64, status InvoiceStatus) error {
	inv, ok := s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return httpx.ErrNotFound
	}
	inv.PaidAmount = paid
	inv.Status = status
	s.invoices[id] = inv
	return nil
}

func (s *stubRepo) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	p.ID = int64(len(s.payments[p.InvoiceID]) + 1)
	p.ReceivedAt = time.Now()
	s.payments[p.InvoiceID] = append(s.payments[p.InvoiceID], p)
	return p, nil
}

func (s *stubRepo) Payments(ctx context.Context, tenantID, invoiceID int64) ([]Payment, error) {
	return s.payments[invoiceID], nil
}

func (s *stubRepo) NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	s.seq++
	return "INV-2603-0001", nil
}

// workshopStub backs a workshop.Service with a single card per ID.
type workshopStub struct {
	cards map[int64]workshop.JobCard
}

func (w *workshopStub) WithTx(ctx context.Context, fn func(context.Context, workshop.Repository) error) error {
	return fn(ctx, w)
}

func (w *workshopStub) Get(ctx context.Context, tenantID, id int64) (workshop.JobCard, error) {
	c, ok := w.cards[id]
	if !ok || c.TenantID != tenantID {
		return workshop.JobCard{}, httpx.ErrNotFound
	}
	return c, nil
}

func (w *workshopStub) List(ctx context.Context, tenantID int64, filters workshop.ListFilters) ([]workshop.JobCard, int, error) {
	return nil, 0, nil
}

func (w *workshopStub) Insert(ctx context.Context, card workshop.JobCard) (int64, error) {
	return 0, nil
}

func (w *workshopStub) SetStage(ctx context.Context, tenantID, id int64, stage workshop.Stage, delivered bool) error {
	return nil
}

func (w *workshopStub) SetAssignee(ctx context.Context, tenantID, id, userID int64) error {
	return nil
}

func (w *workshopStub) InsertStageEvent(ctx context.Context, event workshop.StageEvent) error {
	return nil
}

func (w *workshopStub) StageHistory(ctx context.Context, tenantID, jobCardID int64) ([]workshop.StageEvent, error) {
	return nil, nil
}

func (w *workshopStub) InsertInspection(ctx context.Context, tenantID int64, qc workshop.QCInspection) (workshop.QCInspection, error) {
	return workshop.QCInspection{}, nil
}

func (w *workshopStub) Inspections(ctx context.Context, tenantID, jobCardID int64) ([]workshop.QCInspection, error) {
	return nil, nil
}

func (w *workshopStub) NextDocNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	return "JC-2603-0001", nil
}

func (w *workshopStub) AgingCards(ctx context.Context, threshold time.Duration) ([]workshop.AgingCard, error) {
	return nil, nil
}

func newTestService(stage workshop.Stage) *Service {
	ws := &workshopStub{cards: map[int64]workshop.JobCard{
		5: {ID: 5, TenantID: 1, CustomerID: 7, Stage: stage},
	}}
	return NewService(newStubRepo(), workshop.NewService(ws, nil))
}

func issueInvoice(t *testing.T, service *Service, total float64) Invoice {
	t.Helper()
	inv, err := service.Issue(context.Background(), 1, 42, IssueInvoiceRequest{
		JobCardID:   5,
		TotalAmount: total,
		DueDate:     time.Now().AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	return inv
}

func TestIssueRequiresReadyCard(t *testing.T) {
	service := newTestService(workshop.StagePaint)

	_, err := service.Issue(context.Background(), 1, 42, IssueInvoiceRequest{
		JobCardID: 5, TotalAmount: 993, DueDate: time.Now(),
	})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestIssueOpensInvoice(t *testing.T) {
	service := newTestService(workshop.StageReady)

	inv := issueInvoice(t, service, 993)

	require.Equal(t, InvoiceOpen, inv.Status)
	require.Equal(t, int64(7), inv.CustomerID)
	require.Contains(t, inv.DocNumber, "INV-")
	require.InDelta(t, 993, inv.BalanceDue(), 1e-9)
}

func TestSecondInvoiceForCardRejected(t *testing.T) {
	service := newTestService(workshop.StageDelivered)
	issueInvoice(t, service, 993)

	_, err := service.Issue(context.Background(), 1, 42, IssueInvoiceRequest{
		JobCardID: 5, TotalAmount: 100, DueDate: time.Now(),
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestPartialThenFullPayment(t *testing.T) {
	service := newTestService(workshop.StageReady)
	inv := issueInvoice(t, service, 1000)
	ctx := context.Background()

	_, err := service.RecordPayment(ctx, 1, inv.ID, 42, RecordPaymentRequest{Amount: 400, Method: MethodCash})
	require.NoError(t, err)

	current, err := service.Get(ctx, 1, inv.ID)
	require.NoError(t, err)
	require.Equal(t, InvoicePartial, current.Status)
	require.InDelta(t, 600, current.BalanceDue(), 1e-9)

	_, err = service.RecordPayment(ctx, 1, inv.ID, 42, RecordPaymentRequest{Amount: 600, Method: MethodTransfer})
	require.NoError(t, err)

	current, err = service.Get(ctx, 1, inv.ID)
	require.NoError(t, err)
	require.Equal(t, InvoicePaid, current.Status)
	require.Zero(t, current.BalanceDue())
}

func TestOverpaymentRejected(t *testing.T) {
	service := newTestService(workshop.StageReady)
	inv := issueInvoice(t, service, 1000)
	ctx := context.Background()

	_, err := service.RecordPayment(ctx, 1, inv.ID, 42, RecordPaymentRequest{Amount: 400, Method: MethodCard})
	require.NoError(t, err)

	// 700 against a 600 balance must be rejected whole, not clipped.
	_, err = service.RecordPayment(ctx, 1, inv.ID, 42, RecordPaymentRequest{Amount: 700, Method: MethodCard})
	require.ErrorIs(t, err, httpx.ErrConflict)

	current, err := service.Get(ctx, 1, inv.ID)
	require.NoError(t, err)
	require.InDelta(t, 400, current.PaidAmount, 1e-9)
}

func TestPaymentAgainstVoidRejected(t *testing.T) {
	repo := newStubRepo()
	ws := &workshopStub{cards: map[int64]workshop.JobCard{}}
	service := NewService(repo, workshop.NewService(ws, nil))

	repo.nextID++
	repo.invoices[repo.nextID] = Invoice{ID: repo.nextID, TenantID: 1, DocNumber: "INV-2603-0009", TotalAmount: 500, Status: InvoiceVoid}

	_, err := service.RecordPayment(context.Background(), 1, repo.nextID, 42, RecordPaymentRequest{Amount: 100, Method: MethodCash})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUnknownMethodRejected(t *testing.T) {
	service := newTestService(workshop.StageReady)
	inv := issueInvoice(t, service, 100)

	_, err := service.RecordPayment(context.Background(), 1, inv.ID, 42, RecordPaymentRequest{Amount: 50, Method: Method("IOU")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

var (
	_ Repository          = (*stubRepo)(nil)
	_ workshop.Repository = (*workshopStub)(nil)
)
