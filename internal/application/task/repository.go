package task

import (
	"context"

	"github.com/rezkam/taskflow/internal/domain"
)

// Repository defines storage operations for task management.
// All create/update operations return the entity as persisted.
type Repository interface {
	// CreateTask stores a new task.
	// Returns domain.ErrAssigneeNotFound if the assignee does not exist.
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// FindTaskByID retrieves a single task.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	FindTaskByID(ctx context.Context, id string) (*domain.Task, error)

	// ListTasks returns tasks ordered by due date ascending, then creation time.
	ListTasks(ctx context.Context, params domain.ListTasksParams) ([]*domain.Task, error)

	// UpdateTask overwrites the mutable fields of a task.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// DeleteTask removes a task and its status history.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id string) error

	// AppendStatusChange records a status transition.
	AppendStatusChange(ctx context.Context, change *domain.StatusChange) error

	// ListStatusChanges returns the status history of a task, oldest first.
	ListStatusChanges(ctx context.Context, taskID string) ([]*domain.StatusChange, error)

	// FindUserByID retrieves a user.
	// Returns domain.ErrUserNotFound if the user doesn't exist.
	FindUserByID(ctx context.Context, id string) (*domain.User, error)

	// Atomic runs fn in a transaction. fn's repository operates inside it.
	Atomic(ctx context.Context, fn func(repo Repository) error) error
}
