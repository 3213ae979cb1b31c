package workshop

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

// Handler exposes workshop endpoints.
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

// MountRoutes registers workshop routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Get("/", h.list)
		r.Post("/", h.open)
		r.Post("/convert", h.convert)
		r.Get("/{id}", h.show)
		r.Post("/{id}/move", h.move)
		r.Post("/{id}/assign", h.assign)
		r.Get("/{id}/history", h.history)
		r.Get("/{id}/inspections", h.inspections)
		r.Post("/{id}/inspections", h.inspect)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	filters := ListFilters{Page: page, PerPage: perPage}
	if raw := r.URL.Query().Get("stage"); raw != "" {
		stage := Stage(raw)
		if !ValidStage(stage) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown stage")
			return
		}
		filters.Stage = &stage
	}
	if raw := r.URL.Query().Get("assigned_to"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid assigned_to")
			return
		}
		filters.AssignedTo = &id
	}
	cards, total, err := h.service.List(r.Context(), tenantID, filters)
	if err != nil {
		h.logger.Error("list job cards", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"job_cards":  cards,
		"pagination": shared.NewPagination(filters.Page, filters.PerPage, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	card, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, card)
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req OpenJobCardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	card, err := h.service.Open(r.Context(), tenantID, userID, req)
	if err != nil {
		h.logger.Error("open job card", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "job_card.open", card.DocNumber)
	httpx.JSON(w, http.StatusCreated, card)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	card, err := h.service.Convert(r.Context(), tenantID, userID, req)
	if err != nil {
		h.logger.Error("convert quotation", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "job_card.convert", card.DocNumber)
	httpx.JSON(w, http.StatusCreated, card)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req MoveStageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	card, err := h.service.MoveStage(r.Context(), tenantID, id, userID, req.Note)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "job_card.move", card.DocNumber)
	httpx.JSON(w, http.StatusOK, card)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req AssignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	card, err := h.service.Assign(r.Context(), tenantID, id, userID, req.AssignedTo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, card)
}

func (h *Handler) inspect(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req QCRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, tenantID, _ := h.mw.CurrentPrincipal(r)
	qc, err := h.service.RecordInspection(r.Context(), tenantID, id, userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.recordAudit(r, tenantID, userID, "job_card.qc", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusCreated, qc)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	events, err := h.service.StageHistory(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) inspections(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	list, err := h.service.Inspections(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"inspections": list})
}

func (h *Handler) recordAudit(r *http.Request, tenantID, actorID int64, action, entityID string) {
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "job_cards",
		EntityID: entityID,
	}); err != nil {
		h.logger.Warn("audit job card action", slog.Any("error", err))
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid job card ID")
		return 0, false
	}
	return id, true
}
