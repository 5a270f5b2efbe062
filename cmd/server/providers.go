package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/rezkam/taskflow/internal/application/analytics"
	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/config"
	"github.com/rezkam/taskflow/internal/infrastructure/clock"
	"github.com/rezkam/taskflow/internal/infrastructure/genai"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/sqlite"
	"github.com/rezkam/taskflow/internal/infrastructure/recording/fs"
	"github.com/rezkam/taskflow/internal/infrastructure/recording/gcs"
)

// store is what both persistence backends provide.
type store interface {
	task.Repository
	auth.AccountRepository
	meeting.Repository
	analytics.Repository
	io.Closer
}

var (
	_ store = (*postgres.Store)(nil)
	_ store = (*sqlite.Store)(nil)
)

// provideStore opens the configured database backend.
func provideStore(ctx context.Context, cfg config.DatabaseConfig) (store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
			SkipMigrations:  !cfg.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "driver", cfg.Driver, "dsn", maskPassword(cfg.DSN))
		return s, nil

	case config.DriverSQLite:
		s, err := sqlite.NewStoreWithConfig(ctx, sqlite.DBConfig{
			DSN:            cfg.DSN,
			SkipMigrations: !cfg.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "driver", cfg.Driver, "dsn", cfg.DSN)
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// provideRecordingStore opens the configured audio store. The returned
// closer is nil when the backend holds nothing to release.
func provideRecordingStore(ctx context.Context, cfg config.RecordingConfig) (meeting.RecordingStore, io.Closer, error) {
	switch cfg.Backend {
	case config.RecordingBackendGCS:
		s, err := gcs.NewStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, nil, err
		}
		slog.InfoContext(ctx, "recording storage initialized", "backend", cfg.Backend, "bucket", cfg.GCSBucket)
		return s, s, nil

	case config.RecordingBackendFS:
		s, err := fs.NewStore(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		slog.InfoContext(ctx, "recording storage initialized", "backend", cfg.Backend, "dir", cfg.Dir)
		return s, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported recording backend %q", cfg.Backend)
	}
}

// provideExtractor builds the Gemini extractor, or returns nil when no API
// key is configured. Meeting analysis then fails with ErrExtractionFailed.
func provideExtractor(ctx context.Context, cfg config.GenAIConfig) (meeting.Extractor, error) {
	if !cfg.Enabled() {
		slog.WarnContext(ctx, "TASKFLOW_GENAI_API_KEY not set, meeting analysis disabled")
		return nil, nil
	}

	g, err := genai.New(ctx, genai.Config{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting extractor: %w", err)
	}
	slog.InfoContext(ctx, "meeting extractor enabled", "model", cfg.Model)
	return g, nil
}

// provideClock builds the network clock.
func provideClock(cfg config.ClockConfig) (*clock.Network, error) {
	return clock.NewNetwork(clock.NetworkConfig{
		URL:      cfg.TimeURL,
		Timeout:  cfg.Timeout,
		CacheTTL: cfg.CacheTTL,
	})
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
