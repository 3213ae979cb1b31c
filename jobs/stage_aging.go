package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bodyworks/bodyworks/internal/workshop"
)

// StageAgingJob flags job cards that have sat in one stage past the
// configured threshold so the floor manager can chase them.
type StageAgingJob struct {
	Workshop  *workshop.Service
	Logger    *slog.Logger
	Threshold time.Duration
}

// NewStageAgingJob initialises the stage aging handler.
func NewStageAgingJob(workshopService *workshop.Service, logger *slog.Logger, threshold time.Duration) *StageAgingJob {
	return &StageAgingJob{Workshop: workshopService, Logger: logger, Threshold: threshold}
}

// NewStageAgingTask constructs the cron task.
func NewStageAgingTask() *asynq.Task {
	return asynq.NewTask(TaskStageAging, nil)
}

// Handle scans for aging cards and logs one warning per card.
func (j *StageAgingJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Workshop == nil {
		return errors.New("stage aging: handler not configured")
	}
	cards, err := j.Workshop.AgingCards(ctx, j.Threshold)
	if err != nil {
		return err
	}
	for _, card := range cards {
		j.Logger.Warn("job card aging in stage",
			slog.String("doc_number", card.DocNumber),
			slog.Int64("tenant_id", card.TenantID),
			slog.String("stage", string(card.Stage)),
			slog.Duration("in_stage", card.InStage),
		)
	}
	j.Logger.Info("stage aging scan complete", slog.Int("flagged", len(cards)))
	return nil
}
