package quotations

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/internal/shared"
)

// Handler exposes quotation endpoints.
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

// MountRoutes registers quotation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Patch("/{id}", h.update)
		r.Post("/{id}/submit", h.submit)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
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
		status := Status(raw)
		filters.Status = &status
	}
	list, total, err := h.service.List(r.Context(), tenantID, filters)
	if err != nil {
		h.logger.Error("list quotations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotations": list,
		"pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	quotation, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	quotation, err := h.service.Create(r.Context(), tenantID, userID, req)
	if err != nil {
		h.logger.Error("create quotation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "quotation.create", quotation.DocNumber)
	httpx.JSON(w, http.StatusCreated, quotation)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	quotation, err := h.service.Update(r.Context(), tenantID, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, "quotation.submit", h.service.Submit)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, "quotation.approve", h.service.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req RejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	quotation, err := h.service.Reject(r.Context(), tenantID, id, userID, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "quotation.reject", quotation.DocNumber)
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) statusAction(w http.ResponseWriter, r *http.Request, action string,
	fn func(ctx context.Context, tenantID, id, userID int64) (Quotation, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	quotation, err := fn(r.Context(), tenantID, id, userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, action, quotation.DocNumber)
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) recordAudit(r *http.Request, tenantID, actorID int64, action, docNumber string) {
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "quotations",
		EntityID: docNumber,
	}); err != nil {
		h.logger.Warn("audit quotation action", slog.Any("error", err))
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation ID")
		return 0, false
	}
	return id, true
}
