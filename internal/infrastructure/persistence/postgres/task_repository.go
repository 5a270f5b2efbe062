package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/taskflow/internal/domain"
)

// === Task Repository Implementation ===
// Implements application/task.Repository

// CreateTask stores a new task.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	id, ok := parseUUID(t.ID)
	if !ok {
		return nil, fmt.Errorf("%w: task id %q", domain.ErrInvalidInput, t.ID)
	}
	creatorID, ok := parseUUID(t.CreatorID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, t.CreatorID)
	}
	assigneeID, ok := optionalUUID(t.AssigneeID)
	if !ok {
		return nil, domain.ErrAssigneeNotFound
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+taskColumns,
		id, t.Title, t.Content, creatorID, assigneeID, string(t.Status), int32(t.Progress),
		dateToPgtype(t.DueDate), timePtrToPgtype(t.CompletedAt), timeToPgtype(t.CreatedAt), timeToPgtype(t.UpdatedAt),
	)

	created, err := scanTask(row)
	if err != nil {
		if isForeignKeyViolation(err, "assignee_id") {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// FindTaskByID retrieves a single task.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	taskID, ok := parseUUID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}

	t, err := scanTask(s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns tasks ordered by due date, then creation time.
func (s *Store) ListTasks(ctx context.Context, params domain.ListTasksParams) ([]*domain.Task, error) {
	var assignee pgtype.UUID
	if params.AssigneeID != nil {
		id, ok := parseUUID(*params.AssigneeID)
		if !ok {
			return []*domain.Task{}, nil
		}
		assignee = id
	}

	statuses := make([]string, 0, len(params.Statuses))
	for _, st := range params.Statuses {
		statuses = append(statuses, string(st))
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE ($1::uuid IS NULL OR assignee_id = $1)
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY due_date ASC, created_at ASC, id ASC`,
		assignee, statuses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks, err := collect(rows, scanTask)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask overwrites the mutable fields of a task.
func (s *Store) UpdateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	id, ok := parseUUID(t.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, t.ID)
	}
	assigneeID, ok := optionalUUID(t.AssigneeID)
	if !ok {
		return nil, domain.ErrAssigneeNotFound
	}

	row := s.db.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, content = $3, assignee_id = $4, status = $5, progress = $6,
		    due_date = $7, completed_at = $8, updated_at = $9
		WHERE id = $1
		RETURNING `+taskColumns,
		id, t.Title, t.Content, assigneeID, string(t.Status), int32(t.Progress),
		dateToPgtype(t.DueDate), timePtrToPgtype(t.CompletedAt), timeToPgtype(t.UpdatedAt),
	)

	updated, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, t.ID)
		}
		if isForeignKeyViolation(err, "assignee_id") {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

// DeleteTask removes a task; its status history goes with it (ON DELETE CASCADE).
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	taskID, ok := parseUUID(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	return nil
}

// AppendStatusChange records a status transition.
func (s *Store) AppendStatusChange(ctx context.Context, c *domain.StatusChange) error {
	id, ok := parseUUID(c.ID)
	if !ok {
		return fmt.Errorf("%w: status change id %q", domain.ErrInvalidInput, c.ID)
	}
	taskID, ok := parseUUID(c.TaskID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, c.TaskID)
	}
	changedBy, ok := parseUUID(c.ChangedBy)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, c.ChangedBy)
	}

	var from pgtype.Text
	if c.FromStatus != nil {
		from = pgtype.Text{String: string(*c.FromStatus), Valid: true}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO task_status_changes (`+statusChangeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, taskID, from, string(c.ToStatus), int32(c.Progress), changedBy, timeToPgtype(c.ChangedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err, "task_id") {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, c.TaskID)
		}
		return fmt.Errorf("failed to append status change: %w", err)
	}
	return nil
}

// ListStatusChanges returns the status history of a task, oldest first.
func (s *Store) ListStatusChanges(ctx context.Context, taskID string) ([]*domain.StatusChange, error) {
	id, ok := parseUUID(taskID)
	if !ok {
		return []*domain.StatusChange{}, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+statusChangeColumns+`
		FROM task_status_changes
		WHERE task_id = $1
		ORDER BY changed_at ASC, id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}

	changes, err := collect(rows, scanStatusChange)
	if err != nil {
		return nil, fmt.Errorf("failed to scan status changes: %w", err)
	}
	return changes, nil
}

// optionalUUID converts a weak reference. ok is false for a malformed ID.
func optionalUUID(id *string) (pgtype.UUID, bool) {
	if id == nil {
		return pgtype.UUID{}, true
	}
	return parseUUID(*id)
}
