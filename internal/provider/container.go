package provider

import (
	"context"
	"fmt"

	"github.com/whistledesk/internal/authz"
	"github.com/whistledesk/internal/cache"
	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/queue"
	"github.com/whistledesk/internal/repository"
	"github.com/whistledesk/internal/service"

	"gorm.io/gorm"
)

// Container dependency container shared by the HTTP server, the worker and the CLI
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	AdminSessionRepo repository.AdminSessionRepository
	AuditTrailRepo   repository.AuditTrailRepository
	IssueRepo        repository.IssueRepository

	// Services
	AuthzService         *authz.Service
	AuditService         *service.AuditService
	AuthService          *service.AuthService
	EmailService         *service.EmailService
	NotificationService  *service.NotificationService
	PasswordResetService *service.PasswordResetService
	CaptchaService       *service.CaptchaService
	UploadService        *service.UploadService
	IssueService         *service.IssueService
	USSDService          *service.USSDService
}

// NewContainer initializes the container on db
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	// 1. repositories
	c.initRepositories()

	// 2. services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	c.AdminRepo = repository.NewAdminRepository(c.DB)
	c.AdminSessionRepo = repository.NewAdminSessionRepository(c.DB)
	c.AuditTrailRepo = repository.NewAuditTrailRepository(c.DB)
	c.IssueRepo = repository.NewIssueRepository(c.DB)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}
	c.AuthzService = authzService

	c.AuditService = service.NewAuditService(c.AuditTrailRepo, c.Config.Audit)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.NotificationService = service.NewNotificationService(c.EmailService, c.QueueClient, c.AdminRepo, c.IssueRepo)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.AdminSessionRepo, c.AuditService)
	c.PasswordResetService = service.NewPasswordResetService(c.Config, c.AdminRepo, c.AdminSessionRepo, c.NotificationService, c.AuditService)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UploadService = service.NewUploadService(c.Config.Upload)
	c.IssueService = service.NewIssueService(c.IssueRepo, c.NotificationService, c.AuditService)
	c.USSDService = service.NewUSSDService(c.IssueService)
	return nil
}

// Close flushes pending audit entries and releases clients
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.AuditService != nil {
		if err := c.AuditService.Close(ctx); err != nil {
			logger.Warnw("provider_close_audit_failed", "error", err)
			firstErr = err
		}
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
