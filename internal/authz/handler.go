package authz

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodyworks/bodyworks/internal/modules"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/internal/shared"
)

// Handler exposes access resolution and the permission editor.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	audit    *shared.AuditLogger
	validate *validator.Validate
	mw       Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, audit *shared.AuditLogger, mw Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		audit:    audit,
		validate: validator.New(),
		mw:       mw,
	}
}

// MountRoutes registers authz routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Get("/access", h.access)
		r.Get("/permissions", h.ownPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAdmin)
		r.Get("/templates", h.templates)
		r.Get("/permissions/{userID}", h.userPermissions)
		r.Put("/permissions/{userID}", h.saveGrid)
		r.Post("/permissions/{userID}/toggle", h.toggle)
		r.Post("/permissions/{userID}/preset", h.preset)
		r.Post("/permissions/{userID}/template", h.applyTemplate)
		r.Post("/permissions/{userID}/column", h.toggleColumn)
	})
}

func (h *Handler) access(w http.ResponseWriter, r *http.Request) {
	principalID, _, _ := h.mw.CurrentPrincipal(r)
	access, err := h.service.Resolve(r.Context(), principalID)
	if err != nil {
		h.logger.Error("resolve access", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, access)
}

type permissionsResponse struct {
	Policy      string             `json:"policy"`
	Permissions []ModulePermission `json:"permissions"`
}

func (h *Handler) ownPermissions(w http.ResponseWriter, r *http.Request) {
	principalID, tenantID, _ := h.mw.CurrentPrincipal(r)
	policy, err := h.service.LoadPolicy(r.Context(), tenantID, principalID)
	if err != nil {
		// Fail open: the degraded policy is still served.
		h.logger.Warn("load own policy", slog.Any("error", err))
	}
	rows, err := h.service.Permissions(r.Context(), tenantID, principalID)
	if err != nil {
		h.logger.Warn("list own permissions", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, permissionsResponse{
		Policy:      policyLabel(policy),
		Permissions: rows,
	})
}

func policyLabel(p Policy) string {
	if p.Kind() == PolicyUnrestricted {
		return "unrestricted"
	}
	return "enforced"
}

func (h *Handler) templates(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"templates": TemplateNames()})
}

func (h *Handler) userPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	rows, err := h.service.Permissions(r.Context(), tenantID, userID)
	if err != nil {
		h.logger.Error("list user permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, permissionsResponse{
		Policy:      policyLabel(NewPolicy(rows)),
		Permissions: rows,
	})
}

type gridEntry struct {
	Module    modules.ID `json:"module" validate:"required"`
	CanView   bool       `json:"can_view"`
	CanCreate bool       `json:"can_create"`
	CanEdit   bool       `json:"can_edit"`
	CanDelete bool       `json:"can_delete"`
}

type saveGridRequest struct {
	Entries []gridEntry `json:"entries" validate:"required,dive"`
}

func (h *Handler) saveGrid(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	var req saveGridRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	grid := make(Grid, len(req.Entries))
	for _, e := range req.Entries {
		grid[e.Module] = Grant{CanView: e.CanView, CanCreate: e.CanCreate, CanEdit: e.CanEdit, CanDelete: e.CanDelete}
	}
	h.persist(w, r, userID, grid, "permissions.save")
}

type toggleRequest struct {
	Module  modules.ID `json:"module" validate:"required"`
	Action  Action     `json:"action" validate:"required"`
	Enabled bool       `json:"enabled"`
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if !modules.Valid(req.Module) || !ValidAction(req.Action) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown module or action")
		return
	}
	grid, ok := h.loadGrid(w, r, userID)
	if !ok {
		return
	}
	grid.Toggle(req.Module, req.Action, req.Enabled)
	h.persist(w, r, userID, grid, "permissions.toggle")
}

type presetRequest struct {
	CanView   bool `json:"can_view"`
	CanCreate bool `json:"can_create"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

func (h *Handler) preset(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	var req presetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	grid, ok := h.loadGrid(w, r, userID)
	if !ok {
		return
	}
	grid.ApplyPreset(Grant{CanView: req.CanView, CanCreate: req.CanCreate, CanEdit: req.CanEdit, CanDelete: req.CanDelete})
	h.persist(w, r, userID, grid, "permissions.preset")
}

type templateRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) applyTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	var req templateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	grid, err := ApplyTemplate(req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.persist(w, r, userID, grid, "permissions.template")
}

type columnRequest struct {
	Action  Action `json:"action" validate:"required"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) toggleColumn(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUserID(w, r)
	if !ok {
		return
	}
	var req columnRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if !ValidAction(req.Action) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown action")
		return
	}
	grid, ok := h.loadGrid(w, r, userID)
	if !ok {
		return
	}
	grid.ToggleColumn(req.Action, req.Enabled)
	h.persist(w, r, userID, grid, "permissions.column")
}

func (h *Handler) loadGrid(w http.ResponseWriter, r *http.Request, userID int64) (Grid, bool) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	rows, err := h.service.Permissions(r.Context(), tenantID, userID)
	if err != nil {
		h.logger.Error("load permission grid", slog.Any("error", err))
		httpx.RespondError(w, err)
		return nil, false
	}
	return NewGrid(rows), true
}

func (h *Handler) persist(w http.ResponseWriter, r *http.Request, userID int64, grid Grid, action string) {
	actorID, tenantID, _ := h.mw.CurrentPrincipal(r)
	if err := h.service.SavePermissions(r.Context(), tenantID, userID, grid); err != nil {
		h.logger.Error("save permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.audit != nil {
		if err := h.audit.Record(r.Context(), shared.AuditLog{
			TenantID: tenantID,
			ActorID:  actorID,
			Action:   action,
			Entity:   "module_permissions",
			EntityID: strconv.FormatInt(userID, 10),
			Meta:     map[string]any{"modules": len(grid)},
		}); err != nil {
			h.logger.Warn("audit permission edit", slog.Any("error", err))
		}
	}
	rows, err := h.service.Permissions(r.Context(), tenantID, userID)
	if err != nil {
		h.logger.Warn("reload permissions", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, permissionsResponse{
		Policy:      policyLabel(NewPolicy(rows)),
		Permissions: rows,
	})
}

func (h *Handler) pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user ID")
		return 0, false
	}
	return id, true
}

func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
