// Package analytics computes per-user delivery statistics for the performance dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rezkam/taskflow/internal/domain"
)

// Repository defines the reads analytics needs.
type Repository interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListTasks(ctx context.Context, params domain.ListTasksParams) ([]*domain.Task, error)
}

// Clock supplies the reference instant.
type Clock interface {
	Now(ctx context.Context) time.Time
}

// UserEfficiency pairs a user with their statistics.
type UserEfficiency struct {
	User  *domain.User
	Stats domain.UserStats
}

// Report is the dashboard evaluated at one reference instant.
type Report struct {
	ReferenceTime time.Time
	Users         []UserEfficiency
}

// Service builds efficiency reports.
type Service struct {
	repo  Repository
	clock Clock
	loc   *time.Location
}

// NewService creates an analytics service. A nil loc selects domain.DefaultReferenceLocation.
func NewService(repo Repository, clock Clock, loc *time.Location) *Service {
	if loc == nil {
		loc = domain.DefaultReferenceLocation
	}
	return &Service{repo: repo, clock: clock, loc: loc}
}

// Efficiency scores every non-admin user on the tasks assigned to them.
// Admins are excluded.
func (s *Service) Efficiency(ctx context.Context) (*Report, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	tasks, err := s.repo.ListTasks(ctx, domain.ListTasksParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	byAssignee := make(map[string][]domain.Task)
	for _, t := range tasks {
		if t.AssigneeID != nil {
			byAssignee[*t.AssigneeID] = append(byAssignee[*t.AssigneeID], *t)
		}
	}

	ref := s.clock.Now(ctx)
	report := &Report{ReferenceTime: ref}
	for _, u := range users {
		if u.Role == domain.UserRoleAdmin {
			continue
		}
		report.Users = append(report.Users, UserEfficiency{
			User:  u,
			Stats: domain.ComputeUserStats(byAssignee[u.ID], ref, s.loc),
		})
	}
	return report, nil
}
