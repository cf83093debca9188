// Command migrate manages the postgres schema of BizLedger.
//
// Migrations are embedded in the binary; --dir points at a checkout of the
// migrations directory instead, which is what create writes into.
package main

import (
	"fmt"
	"os"

	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/bizledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the console logger shared by every subcommand
func newLogger(level string) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// loadDatabaseConfig reads the server configuration and rejects drivers the
// SQL migrations are not written for
func loadDatabaseConfig() (*config.DatabaseConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("migrations target postgres; database.driver is %q (set database.auto_migrate for other drivers)", cfg.Database.Driver)
	}
	return &cfg.Database, nil
}
