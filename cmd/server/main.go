package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/taskflow/internal/application/analytics"
	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/config"
	taskhttp "github.com/rezkam/taskflow/internal/http"
	"github.com/rezkam/taskflow/internal/http/handler"
	"github.com/rezkam/taskflow/internal/infrastructure/observability"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		// slog may not be configured yet if config loading failed
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	providers, err := observability.Setup(ctx, observability.Config{
		Enabled:        cfg.Observability.OTelEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		// Bounded so an unreachable collector cannot hang exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown telemetry providers", "error", err)
		}
	}()

	loc := cfg.Clock.Location()

	db, err := provideStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	authenticator := auth.NewAuthenticator(ctx, db, auth.Config{
		OperationTimeout: cfg.Auth.OperationTimeout,
		UpdateQueueSize:  cfg.Auth.UpdateQueueSize,
		SessionTTL:       cfg.Auth.SessionTTL,
	})

	// Shutdown uses a fresh context: ctx is already cancelled by then.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	recordings, recordingsCloser, err := provideRecordingStore(ctx, cfg.Recording)
	if err != nil {
		newCleanup(shutdownCtx, authenticator, db)()
		return fmt.Errorf("failed to initialize recording storage: %w", err)
	}
	cleanup := newCleanup(shutdownCtx, authenticator, db, recordingsCloser)

	api, err := buildAPI(ctx, cfg, loc, db, authenticator, recordings)
	if err != nil {
		cleanup()
		return err
	}

	server := taskhttp.NewAPIServer(api, authenticator, httpServerConfig(cfg.HTTP))

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening",
			"addr", cfg.HTTP.Host+":"+cfg.HTTP.Port,
			"tls", cfg.HTTP.TLSEnabled,
			"reference_timezone", loc.String())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.InfoContext(shutdownCtx, "shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "HTTP server shutdown failed", "error", err)
	}
	cleanup()
	slog.InfoContext(shutdownCtx, "server stopped")

	return runErr
}

// buildAPI wires the application services into the validated API handler.
func buildAPI(ctx context.Context, cfg *config.ServerConfig, loc *time.Location, db store, authenticator *auth.Authenticator, recordings meeting.RecordingStore) (http.Handler, error) {
	accounts, err := auth.NewAccounts(db, authenticator, 0)
	if err != nil {
		return nil, err
	}

	networkClock, err := provideClock(cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize clock: %w", err)
	}

	extractor, err := provideExtractor(ctx, cfg.GenAI)
	if err != nil {
		return nil, err
	}

	tasks := task.NewService(db, networkClock, task.Config{Location: loc})

	api, err := handler.NewOpenAPIRouter(handler.Services{
		Tasks:     tasks,
		Accounts:  accounts,
		Analytics: analytics.NewService(db, networkClock, loc),
		Meetings:  meeting.NewService(db, extractor, recordings, tasks, networkClock, meeting.Config{Location: loc}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build API router: %w", err)
	}
	return api, nil
}

// httpServerConfig maps environment configuration onto the HTTP server.
func httpServerConfig(cfg config.HTTPConfig) taskhttp.ServerConfig {
	out := taskhttp.ServerConfig{
		Host:              cfg.Host,
		Port:              cfg.Port,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		MaxBodyBytes:      cfg.MaxBodyBytes,
	}
	if cfg.TLSEnabled {
		out.TLSCertFile = cfg.TLSCertFile
		out.TLSKeyFile = cfg.TLSKeyFile
	}
	return out
}
