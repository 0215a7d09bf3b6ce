package service

import (
	"fmt"
	"strings"

	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/queue"
	"github.com/whistledesk/internal/repository"
)

// Notifier sends the emails the portal owes its users
type Notifier interface {
	NotifyPasswordReset(admin *models.Admin, resetURL string, expireMinutes int, locale string) error
	NotifyIssueStatus(issueRef, status string, responseID uint, locale string) error
}

// NotificationService queues notifications when the worker queue is enabled and
// delivers them inline otherwise. The worker calls the Deliver methods.
type NotificationService struct {
	emailService *EmailService
	queueClient  *queue.Client
	adminRepo    repository.AdminRepository
	issueRepo    repository.IssueRepository
}

// NewNotificationService creates the notification service
func NewNotificationService(emailService *EmailService, queueClient *queue.Client, adminRepo repository.AdminRepository, issueRepo repository.IssueRepository) *NotificationService {
	return &NotificationService{
		emailService: emailService,
		queueClient:  queueClient,
		adminRepo:    adminRepo,
		issueRepo:    issueRepo,
	}
}

var _ Notifier = (*NotificationService)(nil)

// NotifyPasswordReset dispatches a reset link to admin
func (s *NotificationService) NotifyPasswordReset(admin *models.Admin, resetURL string, expireMinutes int, locale string) error {
	if admin == nil {
		return ErrNotFound
	}
	payload := queue.PasswordResetEmailPayload{
		AdminID:       admin.ID,
		ResetURL:      resetURL,
		ExpireMinutes: expireMinutes,
		Locale:        locale,
	}
	if s.queueClient.Enabled() {
		return s.queueClient.EnqueuePasswordResetEmail(payload)
	}
	return s.emailService.SendPasswordReset(admin.Email, resetURL, expireMinutes, locale)
}

// NotifyIssueStatus dispatches an issue update to its reporter, if one can be reached
func (s *NotificationService) NotifyIssueStatus(issueRef, status string, responseID uint, locale string) error {
	payload := queue.IssueStatusEmailPayload{
		IssueRef:   strings.TrimSpace(issueRef),
		Status:     strings.TrimSpace(status),
		ResponseID: responseID,
		Locale:     locale,
	}
	if s.queueClient.Enabled() {
		return s.queueClient.EnqueueIssueStatusEmail(payload)
	}
	return s.DeliverIssueStatus(payload)
}

// DeliverPasswordReset sends a queued reset email
func (s *NotificationService) DeliverPasswordReset(payload queue.PasswordResetEmailPayload) error {
	admin, err := s.adminRepo.GetByID(payload.AdminID)
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	if admin == nil {
		logger.Warnw("notify_password_reset_admin_missing", "admin_id", payload.AdminID)
		return nil
	}
	return s.emailService.SendPasswordReset(admin.Email, payload.ResetURL, payload.ExpireMinutes, payload.Locale)
}

// DeliverIssueStatus sends an issue update. Anonymous reporters and reporters
// without an email are skipped without error.
func (s *NotificationService) DeliverIssueStatus(payload queue.IssueStatusEmailPayload) error {
	issue, err := s.issueRepo.GetByRefWithDetails(payload.IssueRef)
	if err != nil {
		return fmt.Errorf("load issue: %w", err)
	}
	if issue == nil {
		logger.Warnw("notify_issue_status_issue_missing", "issue_ref", payload.IssueRef)
		return nil
	}
	to := reporterEmail(issue.Reporter)
	if to == "" {
		return nil
	}
	status := payload.Status
	if status == "" {
		status = issue.Status
	}
	return s.emailService.SendIssueStatus(to, IssueStatusEmailInput{
		Ref:     issue.Ref,
		Status:  status,
		Message: responseMessage(issue.Responses, payload.ResponseID),
	}, payload.Locale)
}

func reporterEmail(reporter *models.Reporter) string {
	if reporter == nil || reporter.Anonymous {
		return ""
	}
	return strings.TrimSpace(reporter.Email)
}

func responseMessage(responses []models.IssueResponse, responseID uint) string {
	if responseID == 0 {
		return ""
	}
	for _, response := range responses {
		if response.ID == responseID {
			return response.Message
		}
	}
	return ""
}
