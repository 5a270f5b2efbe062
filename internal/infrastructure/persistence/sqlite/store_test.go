package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/infrastructure/persistence/compliance"
)

func TestSQLiteStore_Compliance(t *testing.T) {
	compliance.RunStoreComplianceTest(t, func() (compliance.Store, func()) {
		store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "taskflow.db"))
		require.NoError(t, err)
		return store, func() { store.Close() }
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "taskflow.db")

	version, err := Migrate(context.Background(), dsn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	version, err = Migrate(context.Background(), dsn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestWithPragmas(t *testing.T) {
	assert.Equal(t,
		"a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		withPragmas("a.db"))
	assert.Equal(t,
		"file:a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		withPragmas("file:a.db?mode=rwc"))
}
