package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rezkam/taskflow/internal/domain"
)

// CreateTask stores a new task.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Content, t.CreatorID, stringPtrToNull(t.AssigneeID), string(t.Status), t.Progress,
		t.DueDate.String(), timePtrToNull(t.CompletedAt), timeToInt(t.CreatedAt), timeToInt(t.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return s.FindTaskByID(ctx, t.ID)
}

// FindTaskByID retrieves a single task.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(s.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns tasks ordered by due date, then creation time.
func (s *Store) ListTasks(ctx context.Context, params domain.ListTasksParams) ([]*domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if params.AssigneeID != nil {
		where = append(where, "assignee_id = ?")
		args = append(args, *params.AssigneeID)
	}
	if len(params.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params.Statuses)), ", ")
		where = append(where, "status IN ("+placeholders+")")
		for _, st := range params.Statuses {
			args = append(args, string(st))
		}
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY due_date ASC, created_at ASC, id ASC`

	rows, err := s.q.QueryContext(ctx, query, args...)
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
	res, err := s.q.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, content = ?, assignee_id = ?, status = ?, progress = ?,
		    due_date = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Content, stringPtrToNull(t.AssigneeID), string(t.Status), t.Progress,
		t.DueDate.String(), timePtrToNull(t.CompletedAt), timeToInt(t.UpdatedAt), t.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if err := checkRowsAffected(res, domain.ErrTaskNotFound, t.ID); err != nil {
		return nil, err
	}
	return s.FindTaskByID(ctx, t.ID)
}

// DeleteTask removes a task; its status history goes with it (ON DELETE CASCADE).
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return checkRowsAffected(res, domain.ErrTaskNotFound, id)
}

// AppendStatusChange records a status transition.
func (s *Store) AppendStatusChange(ctx context.Context, c *domain.StatusChange) error {
	var from sql.NullString
	if c.FromStatus != nil {
		from = sql.NullString{String: string(*c.FromStatus), Valid: true}
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO task_status_changes (`+statusChangeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, from, string(c.ToStatus), c.Progress, c.ChangedBy, timeToInt(c.ChangedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, c.TaskID)
		}
		return fmt.Errorf("failed to append status change: %w", err)
	}
	return nil
}

// ListStatusChanges returns the status history of a task, oldest first.
func (s *Store) ListStatusChanges(ctx context.Context, taskID string) ([]*domain.StatusChange, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+statusChangeColumns+`
		FROM task_status_changes
		WHERE task_id = ?
		ORDER BY changed_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status changes: %w", err)
	}

	changes, err := collect(rows, scanStatusChange)
	if err != nil {
		return nil, fmt.Errorf("failed to scan status changes: %w", err)
	}
	return changes, nil
}

// checkRowsAffected returns notFound when an UPDATE/DELETE matched no row.
func checkRowsAffected(res sql.Result, notFound error, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
