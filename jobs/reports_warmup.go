package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/bodyworks/bodyworks/internal/reports"
)

// ReportsWarmupJob rebuilds every active tenant's dashboard cache so the
// first morning request is served warm.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
}

// NewReportsWarmupJob initialises the warmup handler.
func NewReportsWarmupJob(reportsService *reports.Service, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: reportsService, Logger: logger}
}

// NewReportsWarmupTask constructs the cron task.
func NewReportsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportsWarmup, nil)
}

// Handle refreshes the dashboard of each active tenant. A failing tenant
// is logged and skipped so one bad tenant does not starve the rest.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	tenantIDs, err := j.Reports.TenantIDs(ctx)
	if err != nil {
		return err
	}
	warmed := 0
	for _, tenantID := range tenantIDs {
		if _, err := j.Reports.Refresh(ctx, tenantID); err != nil {
			j.Logger.Warn("warm dashboard", slog.Int64("tenant_id", tenantID), slog.Any("error", err))
			continue
		}
		warmed++
	}
	j.Logger.Info("reports warmup complete", slog.Int("tenants", warmed))
	return nil
}
