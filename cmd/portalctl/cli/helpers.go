package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/provider"
	"github.com/whistledesk/internal/service"
)

const closeTimeout = 5 * time.Second

// openContainer loads config, opens and migrates the database and wires the services.
// Callers must closeContainer so queued audit entries are flushed.
func openContainer() (*provider.Container, error) {
	cfg := config.LoadFrom(cfgFile)
	// command output goes to stdout; logs stay quiet unless something fails
	logger.Init("release", cfg.Log.ToLoggerOptions())

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return provider.NewContainer(cfg, models.DB)
}

func closeContainer(c *provider.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_ = c.Close(ctx)
	logger.Sync()
}

func cliMeta(command string) service.RequestMeta {
	return service.RequestMeta{
		Browser:   "portalctl",
		IPAddress: "local",
		Endpoint:  "portalctl " + command,
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
