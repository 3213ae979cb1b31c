package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bodyworks/bodyworks/internal/app"
	"github.com/bodyworks/bodyworks/internal/auth"
	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/customers"
	"github.com/bodyworks/bodyworks/internal/navigation"
	"github.com/bodyworks/bodyworks/internal/observability"
	"github.com/bodyworks/bodyworks/internal/parts"
	"github.com/bodyworks/bodyworks/internal/payments"
	"github.com/bodyworks/bodyworks/internal/platform/cache"
	"github.com/bodyworks/bodyworks/internal/platform/db"
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

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "bodyworks_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	authzRepo := authz.NewRepository(dbpool)
	authzService := authz.NewService(authzRepo, redisClient, logger)
	mw := authz.Middleware{Service: authzService, Logger: logger}
	authzHandler := authz.NewHandler(logger, authzService, auditLogger, mw)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	navigationHandler := navigation.NewHandler(logger, authzService, mw)

	tenantsHandler := tenants.NewHandler(logger, tenants.NewService(tenants.NewRepository(dbpool)), mw)

	usersService := users.NewService(users.NewRepository(dbpool), authzService)
	usersHandler := users.NewHandler(logger, usersService, auditLogger, mw)

	customersHandler := customers.NewHandler(logger, customers.NewService(customers.NewRepository(dbpool)), mw)
	vehiclesHandler := vehicles.NewHandler(logger, vehicles.NewService(vehicles.NewRepository(dbpool)), mw)

	quotationsService := quotations.NewService(quotations.NewRepository(dbpool))
	quotationsHandler := quotations.NewHandler(logger, quotationsService, auditLogger, mw)

	workshopService := workshop.NewService(workshop.NewRepository(dbpool), quotationsService)
	workshopHandler := workshop.NewHandler(logger, workshopService, auditLogger, mw)

	partsHandler := parts.NewHandler(logger, parts.NewService(parts.NewRepository(dbpool)), mw)

	paymentsService := payments.NewService(payments.NewRepository(dbpool), workshopService)
	paymentsHandler := payments.NewHandler(logger, paymentsService, auditLogger, mw)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("build jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	visitorsHandler := visitors.NewHandler(logger, visitors.NewService(visitors.NewRepository(dbpool)), mw, jobsClient)

	reportsService := reports.NewService(reports.NewRepository(dbpool), redisClient, logger)
	reportsHandler := reports.NewHandler(logger, reportsService, mw)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthHandler:       authHandler,
		AuthzHandler:      authzHandler,
		NavigationHandler: navigationHandler,
		TenantsHandler:    tenantsHandler,
		UsersHandler:      usersHandler,
		CustomersHandler:  customersHandler,
		VehiclesHandler:   vehiclesHandler,
		QuotationsHandler: quotationsHandler,
		WorkshopHandler:   workshopHandler,
		PartsHandler:      partsHandler,
		PaymentsHandler:   paymentsHandler,
		VisitorsHandler:   visitorsHandler,
		ReportsHandler:    reportsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
