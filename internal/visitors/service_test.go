package visitors

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

type stubRepo struct {
	nextVisitID   int64
	nextRequestID int64
	visits        map[uuid.UUID]Visit
	requests      map[int64]VisitRequest
	appointments  []Appointment
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		visits:   make(map[uuid.UUID]Visit),
		requests: make(map[int64]VisitRequest),
	}
}

func (s *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, s)
}

func (s *stubRepo) InsertVisit(ctx context.Context, v Visit) (Visit, error) {
	s.nextVisitID++
	v.ID = s.nextVisitID
	v.CheckedInAt = time.Now()
	s.visits[v.Badge] = v
	return v, nil
}

func (s *stubRepo) FindByBadge(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error) {
	v, ok := s.visits[badge]
	if !ok || v.TenantID != tenantID {
		return Visit{}, httpx.ErrNotFound
	}
	return v, nil
}

func (s *stubRepo) CheckOut(ctx context.Context, tenantID int64, badge uuid.UUID) (Visit, error) {
	v, err := s.FindByBadge(ctx, tenantID, badge)
	if err != nil {
		return Visit{}, err
	}
	if v.CheckedOutAt != nil {
		return Visit{}, httpx.ErrConflict
	}
	now := time.Now()
	v.CheckedOutAt = &now
	s.visits[badge] = v
	return v, nil
}

func (s *stubRepo) OpenVisits(ctx context.Context, tenantID int64) ([]Visit, error) {
	var open []Visit
	for _, v := range s.visits {
		if v.TenantID == tenantID && v.CheckedOutAt == nil {
			open = append(open, v)
		}
	}
	return open, nil
}

func (s *stubRepo) InsertRequest(ctx context.Context, req VisitRequest) (VisitRequest, error) {
	s.nextRequestID++
	req.ID = s.nextRequestID
	req.CreatedAt = time.Now()
	s.requests[req.ID] = req
	return req, nil
}

func (s *stubRepo) GetRequest(ctx context.Context, tenantID, id int64) (VisitRequest, error) {
	vr, ok := s.requests[id]
	if !ok || vr.TenantID != tenantID {
		return VisitRequest{}, httpx.ErrNotFound
	}
	return vr, nil
}

func (s *stubRepo) GetRequestForUpdate(ctx context.Context, tenantID, id int64) (VisitRequest, error) {
	return s.GetRequest(ctx, tenantID, id)
}

func (s *stubRepo) ListRequests(ctx context.Context, tenantID int64, status *RequestStatus) ([]VisitRequest, error) {
	var list []VisitRequest
	for _, vr := range s.requests {
		if vr.TenantID != tenantID {
			continue
		}
		if status != nil && vr.Status != *status {
			continue
		}
		list = append(list, vr)
	}
	return list, nil
}

func (s *stubRepo) SetRequestStatus(ctx context.Context, tenantID, id int64, status RequestStatus, reviewedBy int64) error {
	vr, ok := s.requests[id]
	if !ok || vr.TenantID != tenantID {
		return httpx.ErrNotFound
	}
	now := time.Now()
	vr.Status = status
	vr.ReviewedBy = &reviewedBy
	vr.ReviewedAt = &now
	s.requests[id] = vr
	return nil
}

func (s *stubRepo) InsertAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	a.ID = int64(len(s.appointments) + 1)
	a.CreatedAt = time.Now()
	s.appointments = append(s.appointments, a)
	return a, nil
}

func checkIn(t *testing.T, service *Service) Visit {
	t.Helper()
	visit, err := service.CheckIn(context.Background(), 1, CheckInRequest{
		Name:    "Thandi Mokoena",
		Phone:   "+27 82 555 0101",
		Purpose: "Collect vehicle",
	})
	require.NoError(t, err)
	return visit
}

func submitRequest(t *testing.T, service *Service, preferredAt time.Time) VisitRequest {
	t.Helper()
	request, err := service.SubmitRequest(context.Background(), 1, SubmitRequestRequest{
		Name:        "Pieter van Wyk",
		Phone:       "+27 83 555 0202",
		Plate:       ptr("CA 123-456"),
		Description: "Hail damage assessment",
		PreferredAt: preferredAt,
	})
	require.NoError(t, err)
	return request
}

func ptr[T any](v T) *T { return &v }

func TestCheckInIssuesBadge(t *testing.T) {
	service := NewService(newStubRepo())

	visit := checkIn(t, service)

	require.NotEqual(t, uuid.Nil, visit.Badge)
	require.Nil(t, visit.CheckedOutAt)

	open, err := service.OpenVisits(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, open, 1)
}

func TestBadgesAreUnique(t *testing.T) {
	service := NewService(newStubRepo())

	first := checkIn(t, service)
	second := checkIn(t, service)

	require.NotEqual(t, first.Badge, second.Badge)
}

func TestCheckOutClosesVisit(t *testing.T) {
	service := NewService(newStubRepo())
	visit := checkIn(t, service)

	closed, err := service.CheckOut(context.Background(), 1, visit.Badge)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckedOutAt)

	open, err := service.OpenVisits(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestDoubleCheckOutRejected(t *testing.T) {
	service := NewService(newStubRepo())
	visit := checkIn(t, service)
	ctx := context.Background()

	_, err := service.CheckOut(ctx, 1, visit.Badge)
	require.NoError(t, err)

	_, err = service.CheckOut(ctx, 1, visit.Badge)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCheckOutUnknownBadge(t *testing.T) {
	service := NewService(newStubRepo())

	_, err := service.CheckOut(context.Background(), 1, uuid.New())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestSubmitRequestStartsPending(t *testing.T) {
	service := NewService(newStubRepo())

	request := submitRequest(t, service, time.Now().AddDate(0, 0, 3))

	require.Equal(t, RequestPending, request.Status)
	require.Nil(t, request.ReviewedBy)
}

func TestApproveBooksAppointmentAtPreferredSlot(t *testing.T) {
	service := NewService(newStubRepo())
	preferredAt := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	request := submitRequest(t, service, preferredAt)

	reviewed, appointment, err := service.Review(context.Background(), 1, request.ID, 9, ReviewRequest{Approve: true})
	require.NoError(t, err)

	require.Equal(t, RequestApproved, reviewed.Status)
	require.NotNil(t, appointment)
	require.Equal(t, preferredAt, appointment.ScheduledAt)
	require.Equal(t, request.ID, appointment.VisitRequestID)
}

func TestApproveHonoursOverrideSlot(t *testing.T) {
	service := NewService(newStubRepo())
	request := submitRequest(t, service, time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC))
	override := time.Date(2026, 9, 11, 14, 30, 0, 0, time.UTC)

	_, appointment, err := service.Review(context.Background(), 1, request.ID, 9, ReviewRequest{
		Approve: true, ScheduledAt: &override,
	})
	require.NoError(t, err)
	require.Equal(t, override, appointment.ScheduledAt)
}

func TestDeclineBooksNothing(t *testing.T) {
	service := NewService(newStubRepo())
	request := submitRequest(t, service, time.Now().AddDate(0, 0, 3))

	reviewed, appointment, err := service.Review(context.Background(), 1, request.ID, 9, ReviewRequest{Approve: false})
	require.NoError(t, err)
	require.Equal(t, RequestDeclined, reviewed.Status)
	require.Nil(t, appointment)
}

func TestSecondReviewRejected(t *testing.T) {
	service := NewService(newStubRepo())
	request := submitRequest(t, service, time.Now().AddDate(0, 0, 3))
	ctx := context.Background()

	_, _, err := service.Review(ctx, 1, request.ID, 9, ReviewRequest{Approve: false})
	require.NoError(t, err)

	_, _, err = service.Review(ctx, 1, request.ID, 9, ReviewRequest{Approve: true})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

var _ Repository = (*stubRepo)(nil)
