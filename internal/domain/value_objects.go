package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest accepted task title, in characters.
const MaxTitleLength = 255

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if utf8.RuneCountInString(s) > MaxTitleLength {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// NewTaskStatus validates and creates a TaskStatus.
// Input is matched case-insensitively.
func NewTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))

	switch status {
	case TaskStatusNotStarted, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusCompletedLate:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskStatus, s)
	}
}

// NewUserRole validates and creates a UserRole.
func NewUserRole(s string) (UserRole, error) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(s)))

	switch role {
	case UserRoleAdmin, UserRoleOperator, UserRoleUser:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidUserRole, s)
	}
}

// NewBoardFilter validates and creates a BoardFilter.
// Empty input selects every task.
func NewBoardFilter(s string) (BoardFilter, error) {
	if s == "" {
		return BoardFilterAll, nil
	}

	filter := BoardFilter(strings.ToLower(strings.TrimSpace(s)))

	switch filter {
	case BoardFilterAll, BoardFilterMine:
		return filter, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidBoardFilter, s)
	}
}

// ClampProgress bounds a progress percentage to [0, 100].
func ClampProgress(p int) int {
	return max(0, min(100, p))
}
