package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/bodyworks/bodyworks/internal/app"
	"github.com/bodyworks/bodyworks/internal/platform/cache"
	"github.com/bodyworks/bodyworks/internal/platform/db"
	"github.com/bodyworks/bodyworks/internal/quotations"
	"github.com/bodyworks/bodyworks/internal/reports"
	"github.com/bodyworks/bodyworks/internal/workshop"
	"github.com/bodyworks/bodyworks/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	quotationsService := quotations.NewService(quotations.NewRepository(dbpool))
	workshopService := workshop.NewService(workshop.NewRepository(dbpool), quotationsService)
	reportsService := reports.NewService(reports.NewRepository(dbpool), redisClient, logger)

	stageAging := jobs.NewStageAgingJob(workshopService, logger, cfg.StageAgingThreshold)
	warmup := jobs.NewReportsWarmupJob(reportsService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		SMTP: jobs.SMTPConfig{
			Addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
			From: cfg.SMTPFrom,
		},
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStageAging, Handler: stageAging.Handle},
			{Type: jobs.TaskReportsWarmup, Handler: warmup.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: jobs.NewStageAgingTask()},
			{Spec: "30 5 * * *", Task: jobs.NewReportsWarmupTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
