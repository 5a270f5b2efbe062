// Package sqlite implements the repositories on an embedded SQLite database
// (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/rezkam/taskflow/internal/application/analytics"
	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/application/task"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides the SQLite implementation of all repository interfaces.
type Store struct {
	db *sql.DB
	q  dbtx
}

// Compile-time verification that Store implements all repository interfaces.
var (
	_ task.Repository        = (*Store)(nil)
	_ auth.AccountRepository = (*Store)(nil)
	_ meeting.Repository     = (*Store)(nil)
	_ analytics.Repository   = (*Store)(nil)
)

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// executeInTransaction executes fn within a transaction with logging and panic recovery.
func (s *Store) executeInTransaction(ctx context.Context, operationName string, fn func(txStore *Store) error) (err error) {
	start := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction",
			"operation", operationName,
			"error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "transaction panic, rolling back",
				"operation", operationName,
				"panic", p)
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "rollback after panic failed",
					"operation", operationName,
					"panic", p,
					"rollback_error", rbErr)
			}
			panic(p)
		}

		if err != nil {
			slog.ErrorContext(ctx, "transaction failed, rolling back",
				"operation", operationName,
				"error", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction failed: %w (rollback error: %v)", err, rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			slog.ErrorContext(ctx, "transaction commit failed",
				"operation", operationName,
				"error", err)
			return
		}
		slog.DebugContext(ctx, "transaction completed",
			"operation", operationName,
			"duration_ms", time.Since(start).Milliseconds())
	}()

	err = fn(&Store{db: s.db, q: tx})
	return
}

// Atomic executes fn within a database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(repo task.Repository) error) error {
	return s.executeInTransaction(ctx, "atomic", func(txStore *Store) error {
		return fn(txStore)
	})
}

// AtomicAccounts executes fn with account operations in a transaction.
func (s *Store) AtomicAccounts(ctx context.Context, fn func(repo auth.AccountRepository) error) error {
	return s.executeInTransaction(ctx, "atomic_accounts", func(txStore *Store) error {
		return fn(txStore)
	})
}
