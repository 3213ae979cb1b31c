package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bodyworks/bodyworks/internal/auth"
	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/customers"
	"github.com/bodyworks/bodyworks/internal/navigation"
	"github.com/bodyworks/bodyworks/internal/observability"
	"github.com/bodyworks/bodyworks/internal/parts"
	"github.com/bodyworks/bodyworks/internal/payments"
	"github.com/bodyworks/bodyworks/internal/quotations"
	"github.com/bodyworks/bodyworks/internal/reports"
	"github.com/bodyworks/bodyworks/internal/shared"
	"github.com/bodyworks/bodyworks/internal/tenants"
	"github.com/bodyworks/bodyworks/internal/users"
	"github.com/bodyworks/bodyworks/internal/vehicles"
	"github.com/bodyworks/bodyworks/internal/visitors"
	"github.com/bodyworks/bodyworks/internal/workshop"
	"github.com/bodyworks/bodyworks/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	AuthHandler       *auth.Handler
	AuthzHandler      *authz.Handler
	NavigationHandler *navigation.Handler
	TenantsHandler    *tenants.Handler
	UsersHandler      *users.Handler
	CustomersHandler  *customers.Handler
	VehiclesHandler   *vehicles.Handler
	QuotationsHandler *quotations.Handler
	WorkshopHandler   *workshop.Handler
	PartsHandler      *parts.Handler
	PaymentsHandler   *payments.Handler
	VisitorsHandler   *visitors.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/authz", params.AuthzHandler.MountRoutes)
	r.Route("/navigation", params.NavigationHandler.MountRoutes)
	r.Route("/admin/tenants", params.TenantsHandler.MountRoutes)
	r.Route("/admin/users", params.UsersHandler.MountRoutes)
	r.Route("/customers", params.CustomersHandler.MountRoutes)
	r.Route("/vehicles", params.VehiclesHandler.MountRoutes)
	r.Route("/quotations", params.QuotationsHandler.MountRoutes)
	r.Route("/workshop", params.WorkshopHandler.MountRoutes)
	r.Route("/parts", params.PartsHandler.MountRoutes)
	r.Route("/invoices", params.PaymentsHandler.MountRoutes)
	r.Route("/visitors", params.VisitorsHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
