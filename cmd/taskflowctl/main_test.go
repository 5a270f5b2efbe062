package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/infrastructure/persistence/sqlite"
)

func setupDB(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "taskflow.db")
	t.Setenv("TASKFLOW_DB_DRIVER", "sqlite")
	t.Setenv("TASKFLOW_DB_DSN", dsn)
	t.Setenv("TASKFLOW_REFERENCE_TIMEZONE", "")
	return dsn
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, dsn string) (*domain.User, *domain.User) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.NewStoreWithConfig(ctx, sqlite.DBConfig{DSN: dsn, SkipMigrations: true})
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	admin := &domain.User{ID: "u-admin", Name: "alice", Role: domain.UserRoleAdmin, PasswordHash: "x", CreatedAt: created}
	worker := &domain.User{ID: "u-worker", Name: "bob", Title: "Engineer", Role: domain.UserRoleUser, PasswordHash: "x", CreatedAt: created.Add(time.Minute)}
	require.NoError(t, store.CreateUser(ctx, admin))
	require.NoError(t, store.CreateUser(ctx, worker))

	tasks := []*domain.Task{
		{ID: "t-late", Title: "Write report", CreatorID: admin.ID, AssigneeID: &worker.ID, Status: domain.TaskStatusNotStarted, DueDate: domain.NewDate(2024, time.January, 8)},
		{ID: "t-busy", Title: "Review design", CreatorID: admin.ID, Status: domain.TaskStatusInProgress, Progress: 40, DueDate: domain.NewDate(2024, time.January, 12)},
	}
	for _, tk := range tasks {
		tk.CreatedAt, tk.UpdatedAt = created, created
		_, err := store.CreateTask(ctx, tk)
		require.NoError(t, err)
	}
	return admin, worker
}

func TestMigrate(t *testing.T) {
	setupDB(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema at version")

	// Idempotent
	_, err = execute(t, "migrate")
	require.NoError(t, err)
}

func TestUsers(t *testing.T) {
	dsn := setupDB(t)
	_, err := execute(t, "migrate")
	require.NoError(t, err)
	_, worker := seed(t, dsn)

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "users", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "alice")
		assert.Contains(t, out, "bob")
		assert.Contains(t, out, "Engineer")
	})

	t.Run("set role by name", func(t *testing.T) {
		out, err := execute(t, "users", "set-role", "bob", "operator")
		require.NoError(t, err)
		assert.Contains(t, out, "bob is now OPERATOR")
	})

	t.Run("set role by id", func(t *testing.T) {
		out, err := execute(t, "users", "set-role", worker.ID, "USER")
		require.NoError(t, err)
		assert.Contains(t, out, "bob is now USER")
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := execute(t, "users", "set-role", "bob", "OWNER")
		assert.ErrorIs(t, err, domain.ErrInvalidUserRole)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := execute(t, "users", "set-role", "carol", "USER")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestTasksBoard_At(t *testing.T) {
	dsn := setupDB(t)
	_, err := execute(t, "migrate")
	require.NoError(t, err)
	seed(t, dsn)

	out, err := execute(t, "tasks", "board", "--at", "2024-01-10T09:00:00+08:00")
	require.NoError(t, err)

	assert.Contains(t, out, "today 2024-01-10")
	assert.Contains(t, out, "OVERDUE (2d)")
	assert.Contains(t, out, "IN_PROGRESS (40%)")
	assert.Contains(t, out, "Write report")
}

func TestTasksBoard_InvalidAt(t *testing.T) {
	setupDB(t)
	_, err := execute(t, "migrate")
	require.NoError(t, err)

	_, err = execute(t, "tasks", "board", "--at", "tomorrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")
}
