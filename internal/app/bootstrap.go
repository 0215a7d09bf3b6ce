package app

import (
	"errors"
	"os"
	"strings"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/provider"
	"github.com/whistledesk/internal/router"
	"github.com/whistledesk/internal/service"
	"github.com/whistledesk/internal/worker"

	"gorm.io/gorm"
)

const (
	envDefaultAdminEmail    = "WD_DEFAULT_ADMIN_EMAIL"
	envDefaultAdminName     = "WD_DEFAULT_ADMIN_NAME"
	envDefaultAdminPassword = "WD_DEFAULT_ADMIN_PASSWORD"
)

// BuildRunner wires the services for mode on db
func BuildRunner(cfg *config.Config, mode string, db *gorm.DB) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
	default:
		return nil, errors.New("unknown run mode: " + mode)
	}

	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		return nil, err
	}

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		ensureDefaultAdmin(container.AuthService)
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		// the queue consumer only runs when asynq is configured; notifications are sent inline otherwise
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			logger.Warnw("app_queue_disabled", "mode", mode)
		}

		sweepService, err := worker.NewSweepService(cfg.Session, container.AuthService)
		if err != nil {
			return nil, err
		}
		services = append(services, sweepService)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnShutdown(container.Close)
	return runner, nil
}

// Run opens the database and runs the configured services until a signal arrives
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	cfg := opts.Config

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return err
	}
	if err := models.AutoMigrate(); err != nil {
		return err
	}

	runner, err := BuildRunner(cfg, opts.Mode, models.DB)
	if err != nil {
		return err
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

// ensureDefaultAdmin creates the single admin from the environment on first start.
// An existing admin is left untouched.
func ensureDefaultAdmin(auth *service.AuthService) {
	email := strings.TrimSpace(os.Getenv(envDefaultAdminEmail))
	password := os.Getenv(envDefaultAdminPassword)
	if auth == nil || email == "" || password == "" {
		return
	}
	fullName := strings.TrimSpace(os.Getenv(envDefaultAdminName))
	if fullName == "" {
		fullName = "Administrator"
	}
	_, err := auth.Signup(service.SignupInput{
		Email:    email,
		FullName: fullName,
		Password: password,
	}, service.RequestMeta{Endpoint: "bootstrap", Browser: "server", IPAddress: "local"})
	switch {
	case err == nil:
		logger.Infow("app_default_admin_created", "email", email)
	case errors.Is(err, service.ErrAdminExists):
	default:
		logger.Warnw("app_default_admin_failed", "email", email, "error", err)
	}
}
