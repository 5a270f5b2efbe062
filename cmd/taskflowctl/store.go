package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/config"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/sqlite"
)

type adminStore interface {
	task.Repository
	auth.AccountRepository
	io.Closer
}

// openStore connects without migrating; run "taskflowctl migrate" first.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (adminStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
			SkipMigrations:  true,
		})
	case config.DriverSQLite:
		return sqlite.NewStoreWithConfig(ctx, sqlite.DBConfig{DSN: cfg.DSN, SkipMigrations: true})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// withStore loads configuration, opens the store and closes it after fn.
func withStore(ctx context.Context, fn func(cfg *config.CLIConfig, s adminStore) error) (err error) {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
	}()

	return fn(cfg, s)
}
