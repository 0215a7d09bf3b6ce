package queue

import (
	"encoding/json"

	"github.com/whistledesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPasswordResetEmail delivers a password reset link
	TaskPasswordResetEmail = constants.TaskPasswordResetEmail
	// TaskIssueStatusEmail tells a reporter their issue moved
	TaskIssueStatusEmail = constants.TaskIssueStatusEmail
)

// PasswordResetEmailPayload reset link task payload.
// ResetURL carries the raw token; it only lives in the queue until delivery.
type PasswordResetEmailPayload struct {
	AdminID       uint   `json:"admin_id"`
	ResetURL      string `json:"reset_url"`
	ExpireMinutes int    `json:"expire_minutes"`
	Locale        string `json:"locale"`
}

// IssueStatusEmailPayload issue status task payload
type IssueStatusEmailPayload struct {
	IssueRef   string `json:"issue_ref"`
	Status     string `json:"status"`
	ResponseID uint   `json:"response_id"`
	Locale     string `json:"locale"`
}

// NewPasswordResetEmailTask builds the reset email task
func NewPasswordResetEmailTask(payload PasswordResetEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPasswordResetEmail, body), nil
}

// NewIssueStatusEmailTask builds the issue status email task
func NewIssueStatusEmailTask(payload IssueStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIssueStatusEmail, body), nil
}
