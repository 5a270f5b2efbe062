package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/rezkam/taskflow/internal/domain"
)

const meterName = "github.com/rezkam/taskflow/internal/application/task"

// Clock supplies the reference instant for status evaluation.
type Clock interface {
	Now(ctx context.Context) time.Time
}

// Config holds configuration for the Service.
type Config struct {
	// Location is the reference timezone for day boundaries
	// (nil = domain.DefaultReferenceLocation).
	Location *time.Location
}

// View is a task together with its status derived at a reference instant.
type View struct {
	Task    *domain.Task
	Display domain.DisplayStatus
}

// Board is the task board evaluated at one reference instant.
type Board struct {
	ReferenceTime time.Time
	Tasks         []View
}

// StatusResult is the outcome of a status edit.
type StatusResult struct {
	View
	// Redirected is set when COMPLETED was requested but the task was
	// recorded as COMPLETED_LATE because it was overdue.
	Redirected bool
}

// CreateInput holds the fields of a new task.
type CreateInput struct {
	Title      string
	Content    string
	AssigneeID *string
	DueDate    string // YYYY-MM-DD or RFC 3339
}

// Service provides business logic for task management.
// Status rules live in the domain package; the service loads snapshots,
// evaluates them against the clock and persists the results.
type Service struct {
	repo        Repository
	clock       Clock
	loc         *time.Location
	transitions metric.Int64Counter
}

// NewService creates a new task service.
func NewService(repo Repository, clock Clock, config Config) *Service {
	if config.Location == nil {
		config.Location = domain.DefaultReferenceLocation
	}

	transitions, err := otel.Meter(meterName).Int64Counter(
		"taskflow.task.transitions",
		metric.WithDescription("Task status edits by requested and resulting status"),
	)
	if err != nil {
		slog.Warn("task transition counter unavailable", "error", err)
		transitions = noop.Int64Counter{}
	}

	return &Service{
		repo:        repo,
		clock:       clock,
		loc:         config.Location,
		transitions: transitions,
	}
}

// Location returns the reference timezone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the current reference instant.
func (s *Service) Now(ctx context.Context) time.Time {
	return s.clock.Now(ctx)
}

func (s *Service) view(t *domain.Task, ref time.Time) View {
	return View{Task: t, Display: domain.DisplayStatusOf(*t, ref, s.loc)}
}

// Board lists tasks for actor with their derived display status.
// The "mine" filter shows only tasks assigned to actor.
func (s *Service) Board(ctx context.Context, actor *domain.User, filter domain.BoardFilter) (*Board, error) {
	params := domain.ListTasksParams{}
	if filter == domain.BoardFilterMine {
		params.AssigneeID = &actor.ID
	}

	tasks, err := s.repo.ListTasks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	ref := s.clock.Now(ctx)
	board := &Board{ReferenceTime: ref, Tasks: make([]View, 0, len(tasks))}
	for _, t := range tasks {
		board.Tasks = append(board.Tasks, s.view(t, ref))
	}
	return board, nil
}

// GetTask retrieves one task with its display status.
func (s *Service) GetTask(ctx context.Context, id string) (*View, error) {
	if id == "" {
		return nil, domain.ErrTaskNotFound
	}

	t, err := s.repo.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := s.view(t, s.clock.Now(ctx))
	return &v, nil
}

// CreateTask creates a NOT_STARTED task. Only admins and operators may create tasks.
func (s *Service) CreateTask(ctx context.Context, actor *domain.User, input CreateInput) (*View, error) {
	views, err := s.CreateTasks(ctx, actor, []CreateInput{input})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreateTasks creates several tasks in one transaction: either all are
// created or none is.
func (s *Service) CreateTasks(ctx context.Context, actor *domain.User, inputs []CreateInput) ([]View, error) {
	if !actor.CanManageTasks() {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	tasks := make([]*domain.Task, 0, len(inputs))
	for _, input := range inputs {
		t, err := s.newTask(actor, input, now)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	created := make([]*domain.Task, 0, len(tasks))
	err := s.repo.Atomic(ctx, func(repo Repository) error {
		for _, t := range tasks {
			if t.AssigneeID != nil {
				if _, err := repo.FindUserByID(ctx, *t.AssigneeID); err != nil {
					if errors.Is(err, domain.ErrUserNotFound) {
						return domain.ErrAssigneeNotFound
					}
					return err
				}
			}

			stored, err := repo.CreateTask(ctx, t)
			if err != nil {
				return err
			}
			if err := repo.AppendStatusChange(ctx, newStatusChange(stored, nil, actor.ID, now)); err != nil {
				return err
			}
			created = append(created, stored)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks: %w", err)
	}

	ref := s.clock.Now(ctx)
	views := make([]View, 0, len(created))
	for _, t := range created {
		views = append(views, s.view(t, ref))
	}
	return views, nil
}

func (s *Service) newTask(actor *domain.User, input CreateInput, now time.Time) (*domain.Task, error) {
	title, err := domain.NewTitle(input.Title)
	if err != nil {
		return nil, err
	}

	due, err := domain.ParseDate(input.DueDate, s.loc)
	if err != nil {
		return nil, err
	}

	assignee := input.AssigneeID
	if assignee != nil && *assignee == "" {
		assignee = nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	return &domain.Task{
		ID:         id.String(),
		Title:      title.String(),
		Content:    input.Content,
		CreatorID:  actor.ID,
		AssigneeID: assignee,
		Status:     domain.TaskStatusNotStarted,
		Progress:   0,
		DueDate:    due,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UpdateStatus applies a status edit. Admins may edit any task; everyone
// else only the tasks assigned to them.
func (s *Service) UpdateStatus(ctx context.Context, actor *domain.User, id string, edit domain.StatusEdit) (*StatusResult, error) {
	ref := s.clock.Now(ctx)

	var updated *domain.Task
	var previous domain.TaskStatus
	err := s.repo.Atomic(ctx, func(repo Repository) error {
		current, err := repo.FindTaskByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanEditStatus(current) {
			return domain.ErrForbidden
		}
		previous = current.Status

		next, err := domain.ApplyStatusEdit(*current, edit, ref, s.loc)
		if err != nil {
			return err
		}
		next.UpdatedAt = time.Now().UTC()

		updated, err = repo.UpdateTask(ctx, &next)
		if err != nil {
			return err
		}
		return repo.AppendStatusChange(ctx, newStatusChange(updated, &previous, actor.ID, next.UpdatedAt))
	})

	result := "rejected"
	if err == nil {
		result = string(updated.Status)
	}
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("requested", string(edit.Status)),
		attribute.String("result", result),
	))

	if err != nil {
		return nil, err
	}

	redirected := edit.Status == domain.TaskStatusCompleted && updated.Status == domain.TaskStatusCompletedLate
	if redirected {
		slog.InfoContext(ctx, "completion recorded as late",
			"task_id", updated.ID,
			"due_date", updated.DueDate.String(),
			"overdue_days", domain.OverdueDays(updated.DueDate, ref, s.loc))
	}

	return &StatusResult{View: s.view(updated, ref), Redirected: redirected}, nil
}

// UpdateDueDate reschedules a task. Only admins and operators may change due dates.
// The stored status is not reclassified.
func (s *Service) UpdateDueDate(ctx context.Context, actor *domain.User, id string, dueDate string) (*View, error) {
	if !actor.CanEditDueDate() {
		return nil, domain.ErrForbidden
	}

	var updated *domain.Task
	err := s.repo.Atomic(ctx, func(repo Repository) error {
		current, err := repo.FindTaskByID(ctx, id)
		if err != nil {
			return err
		}

		next, err := domain.ApplyDueDateEdit(*current, dueDate, s.loc)
		if err != nil {
			return err
		}
		next.UpdatedAt = time.Now().UTC()

		updated, err = repo.UpdateTask(ctx, &next)
		return err
	})
	if err != nil {
		return nil, err
	}

	v := s.view(updated, s.clock.Now(ctx))
	return &v, nil
}

// DeleteTask removes a task. Only admins and operators may delete tasks.
func (s *Service) DeleteTask(ctx context.Context, actor *domain.User, id string) error {
	if !actor.CanManageTasks() {
		return domain.ErrForbidden
	}
	return s.repo.DeleteTask(ctx, id)
}

// History returns the status changes of a task, oldest first.
func (s *Service) History(ctx context.Context, id string) ([]*domain.StatusChange, error) {
	if _, err := s.repo.FindTaskByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListStatusChanges(ctx, id)
}

func newStatusChange(t *domain.Task, from *domain.TaskStatus, actorID string, at time.Time) *domain.StatusChange {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source fails.
		id = uuid.New()
	}
	return &domain.StatusChange{
		ID:         id.String(),
		TaskID:     t.ID,
		FromStatus: from,
		ToStatus:   t.Status,
		Progress:   t.Progress,
		ChangedBy:  actorID,
		ChangedAt:  at,
	}
}
