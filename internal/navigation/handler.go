package navigation

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Handler serves the filtered navigation menu.
type Handler struct {
	logger  *slog.Logger
	service *authz.Service
	mw      authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *authz.Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers navigation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Get("/", h.menu)
	})
}

type menuResponse struct {
	Access authz.Access `json:"access"`
	Groups []Group      `json:"groups"`
}

// menu fetches access flags and the permission policy concurrently and
// returns the filtered menu. Either lookup failing degrades to its zero
// value (no elevation, unrestricted policy) so the menu still renders.
func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	principalID, tenantID, _ := h.mw.CurrentPrincipal(r)

	var (
		access authz.Access
		policy = authz.Unrestricted()
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resolved, err := h.service.Resolve(ctx, principalID)
		if err != nil {
			h.logger.Warn("navigation resolve access", slog.Any("error", err))
			return nil
		}
		access = resolved
		return nil
	})
	g.Go(func() error {
		loaded, err := h.service.LoadPolicy(ctx, tenantID, principalID)
		if err != nil {
			h.logger.Warn("navigation load policy", slog.Any("error", err))
			return nil
		}
		policy = loaded
		return nil
	})
	_ = g.Wait()

	httpx.JSON(w, http.StatusOK, menuResponse{
		Access: access,
		Groups: Menu(access, policy),
	})
}
