package authz

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bodyworks/bodyworks/internal/platform/httpx"
	"github.com/bodyworks/bodyworks/internal/shared"
)

// Middleware wires authorization guards for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

/// RequireSession is the route guard: it rejects unauthenticated requests
// and passes authenticated ones through unconditionally. It performs no
// per-module permission check; module permissions shape the navigation
// menu only, and a principal who knows a path can reach the screen behind
// it. Changing that would break tenants relying on the menu-only model.
func (m Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := m.CurrentPrincipal(r); !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits super admins and tenant admins only.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.requireAccess(next, func(a Access) bool { return a.HasAdminAccess() })
}

// RequireSuperAdmin admits super admins only.
func (m Middleware) RequireSuperAdmin(next http.Handler) http.Handler {
	return m.requireAccess(next, func(a Access) bool { return a.IsSuperAdmin })
}

func (m Middleware) requireAccess(next http.Handler, allowed func(Access) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principalID, _, ok := m.CurrentPrincipal(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		access, err := m.Service.Resolve(r.Context(), principalID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("authz resolve access", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		if !allowed(access) {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentPrincipal extracts the authenticated principal and tenant from the
// request session.
func (m Middleware) CurrentPrincipal(r *http.Request) (principalID, tenantID int64, ok bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, 0, false
	}
	principalID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse principal id", slog.String("value", raw))
		}
		return 0, 0, false
	}
	if rawTenant := strings.TrimSpace(sess.Tenant()); rawTenant != "" {
		tenantID, _ = strconv.ParseInt(rawTenant, 10, 64)
	}
	return principalID, tenantID, true
}
