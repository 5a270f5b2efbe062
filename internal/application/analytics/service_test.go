package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/infrastructure/clock"
	"github.com/rezkam/taskflow/internal/ptr"
)

type stubRepo struct {
	users    []*domain.User
	tasks    []*domain.Task
	tasksErr error
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users, nil
}

func (s *stubRepo) ListTasks(ctx context.Context, params domain.ListTasksParams) ([]*domain.Task, error) {
	return s.tasks, s.tasksErr
}

func TestEfficiency(t *testing.T) {
	ref := time.Date(2024, time.January, 10, 12, 0, 0, 0, domain.DefaultReferenceLocation)
	repo := &stubRepo{
		users: []*domain.User{
			{ID: "admin", Role: domain.UserRoleAdmin},
			{ID: "ana", Role: domain.UserRoleUser},
			{ID: "bo", Role: domain.UserRoleOperator},
		},
		tasks: []*domain.Task{
			{AssigneeID: ptr.To("ana"), Status: domain.TaskStatusCompleted, DueDate: domain.NewDate(2024, time.January, 5)},
			{AssigneeID: ptr.To("ana"), Status: domain.TaskStatusCompleted, DueDate: domain.NewDate(2024, time.January, 8)},
			{AssigneeID: ptr.To("ana"), Status: domain.TaskStatusCompletedLate, DueDate: domain.NewDate(2024, time.January, 2)},
			{AssigneeID: ptr.To("ana"), Status: domain.TaskStatusInProgress, Progress: 50, DueDate: domain.NewDate(2024, time.January, 3)},
			{AssigneeID: ptr.To("admin"), Status: domain.TaskStatusCompleted, DueDate: domain.NewDate(2024, time.January, 3)},
			{Status: domain.TaskStatusNotStarted, DueDate: domain.NewDate(2024, time.January, 3)},
		},
	}

	report, err := NewService(repo, clock.Fixed(ref), nil).Efficiency(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Users, 2)
	assert.Equal(t, "ana", report.Users[0].User.ID)
	assert.Equal(t, 30, report.Users[0].Stats.Score)
	assert.Equal(t, 4, report.Users[0].Stats.Total)
	assert.Equal(t, "bo", report.Users[1].User.ID)
	assert.Equal(t, domain.UserStats{}, report.Users[1].Stats)
	assert.True(t, report.ReferenceTime.Equal(ref))
}

func TestEfficiency_RepositoryError(t *testing.T) {
	boom := errors.New("boom")
	repo := &stubRepo{tasksErr: boom}

	_, err := NewService(repo, clock.Fixed(time.Now().UTC()), nil).Efficiency(context.Background())

	assert.ErrorIs(t, err, boom)
}
