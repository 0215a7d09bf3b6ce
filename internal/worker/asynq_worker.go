package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/provider"
	"github.com/whistledesk/internal/queue"
	"github.com/whistledesk/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer async task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers task handlers on mux
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPasswordResetEmail, c.handlePasswordResetEmail)
	mux.HandleFunc(queue.TaskIssueStatusEmail, c.handleIssueStatusEmail)
}

func (c *Consumer) handlePasswordResetEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_password_reset_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PasswordResetEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_password_reset_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.AdminID == 0 || payload.ResetURL == "" {
		logger.Debugw("worker_password_reset_email_skip_invalid_payload", "admin_id", payload.AdminID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_password_reset_email_skip_service_nil", "admin_id", payload.AdminID)
		return nil
	}
	if err := c.NotificationService.DeliverPasswordReset(payload); err != nil {
		return handleDeliveryError("worker_password_reset_email_send_failed", err, "admin_id", payload.AdminID)
	}
	return nil
}

func (c *Consumer) handleIssueStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_issue_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.IssueStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_issue_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.IssueRef == "" {
		logger.Debugw("worker_issue_status_email_skip_invalid_payload")
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_issue_status_email_skip_service_nil", "issue_ref", payload.IssueRef)
		return nil
	}
	if err := c.NotificationService.DeliverIssueStatus(payload); err != nil {
		return handleDeliveryError("worker_issue_status_email_send_failed", err, "issue_ref", payload.IssueRef)
	}
	return nil
}

// handleDeliveryError drops tasks that can never succeed and returns the rest for retry.
func handleDeliveryError(event string, err error, kv ...interface{}) error {
	fields := append(kv, "error", err)
	switch {
	case errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured),
		errors.Is(err, service.ErrEmailRecipientRejected),
		errors.Is(err, service.ErrInvalidEmail):
		logger.Warnw(event+"_skip", fields...)
		return nil
	default:
		logger.Warnw(event, fields...)
		return err
	}
}
