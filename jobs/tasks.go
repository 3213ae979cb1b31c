package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskStageAging flags job cards stuck in a workshop stage.
	TaskStageAging = "workshop:stage_aging"
	// TaskReportsWarmup precomputes dashboard caches per tenant.
	TaskReportsWarmup = "reports:warmup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// SMTPConfig carries the relay settings for outbound mail.
type SMTPConfig struct {
	Addr string
	From string
}

// SendEmailHandler returns the handler for TaskTypeSendEmail tasks.
func SendEmailHandler(cfg SMTPConfig) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		msg := strings.Join([]string{
			"From: " + cfg.From,
			"To: " + payload.To,
			"Subject: " + payload.Subject,
			"",
			payload.Body,
		}, "\r\n")
		if err := smtp.SendMail(cfg.Addr, nil, cfg.From, []string{payload.To}, []byte(msg)); err != nil {
			return fmt.Errorf("send mail to %s: %w", payload.To, err)
		}
		return nil
	}
}
