package visitors

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/jobs"
)

// Handler exposes visitor endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	mw       authz.Middleware
	jobs     *jobs.Client
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware, jobsClient *jobs.Client) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), mw: mw, jobs: jobsClient}
}

// MountRoutes registers visitor routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Get("/", h.openVisits)
		r.Post("/check-in", h.checkIn)
		r.Get("/badge/{badge}", h.byBadge)
		r.Post("/badge/{badge}/check-out", h.checkOut)
		r.Get("/requests", h.listRequests)
		r.Post("/requests", h.submitRequest)
		r.Post("/requests/{id}/review", h.review)
	})
}

func (h *Handler) openVisits(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	visits, err := h.service.OpenVisits(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("list open visits", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"visits": visits})
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	visit, err := h.service.CheckIn(r.Context(), tenantID, req)
	if err != nil {
		h.logger.Error("check in visitor", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, visit)
}

func (h *Handler) byBadge(w http.ResponseWriter, r *http.Request) {
	badge, ok := h.pathBadge(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	visit, err := h.service.FindByBadge(r.Context(), tenantID, badge)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, visit)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	badge, ok := h.pathBadge(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	visit, err := h.service.CheckOut(r.Context(), tenantID, badge)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, visit)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	var status *RequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := RequestStatus(raw)
		status = &s
	}
	requests, err := h.service.ListRequests(r.Context(), tenantID, status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) submitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	request, err := h.service.SubmitRequest(r.Context(), tenantID, req)
	if err != nil {
		h.logger.Error("submit visit request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, request)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request ID")
		return
	}
	var req ReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	request, appointment, err := h.service.Review(r.Context(), tenantID, id, userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if appointment != nil && request.Email != nil && h.jobs != nil {
		_, err := h.jobs.EnqueueSendEmail(r.Context(), jobs.SendEmailPayload{
			To:      *request.Email,
			Subject: "Your appointment is confirmed",
			Body: fmt.Sprintf("Hi %s, your visit is booked for %s.",
				request.Name, appointment.ScheduledAt.Format("Mon 2 Jan 2006 15:04")),
		})
		if err != nil {
			h.logger.Warn("enqueue confirmation email", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"request":     request,
		"appointment": appointment,
	})
}

func pathInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) pathBadge(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	badge, err := uuid.Parse(chi.URLParam(r, "badge"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid badge")
		return uuid.UUID{}, false
	}
	return badge, true
}
