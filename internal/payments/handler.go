package payments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/internal/shared"
)

// Handler exposes invoice and payment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	audit    *shared.AuditLogger
	validate *validator.Validate
	mw       authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, audit: audit, validate: validator.New(), mw: mw}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Get("/", h.list)
		r.Post("/", h.issue)
		r.Get("/{id}", h.show)
		r.Get("/{id}/payments", h.payments)
		r.Post("/{id}/payments", h.pay)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	filters := ListFilters{Page: page, PerPage: perPage}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer_id")
			return
		}
		filters.CustomerID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := InvoiceStatus(raw)
		filters.Status = &status
	}
	invoices, total, err := h.service.List(r.Context(), tenantID, filters)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":   invoices,
		"pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	invoice, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoice":     invoice,
		"balance_due": invoice.BalanceDue(),
	})
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req IssueInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	invoice, err := h.service.Issue(r.Context(), tenantID, userID, req)
	if err != nil {
		h.logger.Error("issue invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "invoice.issue", invoice.DocNumber)
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	payment, err := h.service.RecordPayment(r.Context(), tenantID, id, userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "invoice.payment", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	list, err := h.service.Payments(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": list})
}

func (h *Handler) recordAudit(r *http.Request, tenantID, actorID int64, action, entityID string) {
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "invoices",
		EntityID: entityID,
	}); err != nil {
		h.logger.Warn("audit invoice action", slog.Any("error", err))
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice ID")
		return 0, false
	}
	return id, true
}
