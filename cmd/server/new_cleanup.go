package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner is the part of the authenticator cleanup needs.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup returns the shutdown hook run after the HTTP server stops:
// drain the authenticator's pending last_used_at writes, then close the
// store, then release any other closers (recording storage clients).
// Nil entries are skipped.
func newCleanup(ctx context.Context, authenticator shutdowner, store io.Closer, others ...io.Closer) func() {
	return func() {
		if authenticator != nil {
			if err := authenticator.Shutdown(ctx); err != nil {
				slog.WarnContext(ctx, "authenticator shutdown incomplete", "error", err)
			} else {
				slog.InfoContext(ctx, "authenticator shutdown complete")
			}
		}

		if store != nil {
			if err := store.Close(); err != nil {
				slog.ErrorContext(ctx, "failed to close store", "error", err)
			}
		}

		for _, c := range others {
			if c == nil {
				continue
			}
			if err := c.Close(); err != nil {
				slog.ErrorContext(ctx, "failed to close resource", "error", err)
			}
		}
	}
}
