package postgres_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/config"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/compliance"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/postgres"
)

// truncateAll empties every table between subtests.
func truncateAll(t *testing.T, store *postgres.Store) {
	t.Helper()
	_, err := store.Pool().Exec(context.Background(),
		`TRUNCATE users, sessions, tasks, task_status_changes, meetings CASCADE`)
	require.NoError(t, err)
}

func TestPostgresStore_Compliance(t *testing.T) {
	cfg, err := config.LoadTestConfig()
	if err != nil || cfg.Validate() != nil || !strings.HasPrefix(cfg.PostgresDSN, "postgres") {
		t.Skip("TASKFLOW_DB_DSN not set to a PostgreSQL URL, skipping PostgreSQL tests")
	}

	store, err := postgres.NewPostgresStore(context.Background(), cfg.PostgresDSN)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	compliance.RunStoreComplianceTest(t, func() (compliance.Store, func()) {
		truncateAll(t, store)
		return store, func() {}
	})
}
