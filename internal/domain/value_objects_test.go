package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTitle(t *testing.T) {
	title, err := NewTitle("  Write release notes  ")
	require.NoError(t, err)
	assert.Equal(t, "Write release notes", title.String())
}

func TestNewTitle_Empty(t *testing.T) {
	_, err := NewTitle("   ")
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewTitle_TooLong(t *testing.T) {
	_, err := NewTitle(strings.Repeat("a", MaxTitleLength+1))
	assert.ErrorIs(t, err, ErrTitleTooLong)

	// Characters, not bytes.
	_, err = NewTitle(strings.Repeat("任", MaxTitleLength))
	assert.NoError(t, err)
}

func TestNewTaskStatus(t *testing.T) {
	status, err := NewTaskStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusInProgress, status)

	_, err = NewTaskStatus("OVERDUE")
	assert.True(t, errors.Is(err, ErrInvalidTaskStatus))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNewUserRole(t *testing.T) {
	role, err := NewUserRole("operator")
	require.NoError(t, err)
	assert.Equal(t, UserRoleOperator, role)

	_, err = NewUserRole("root")
	assert.ErrorIs(t, err, ErrInvalidUserRole)
}

func TestNewBoardFilter(t *testing.T) {
	filter, err := NewBoardFilter("")
	require.NoError(t, err)
	assert.Equal(t, BoardFilterAll, filter)

	filter, err = NewBoardFilter("MINE")
	require.NoError(t, err)
	assert.Equal(t, BoardFilterMine, filter)

	_, err = NewBoardFilter("team")
	assert.ErrorIs(t, err, ErrInvalidBoardFilter)
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	assert.False(t, TaskStatusNotStarted.IsTerminal())
	assert.False(t, TaskStatusInProgress.IsTerminal())
	assert.True(t, TaskStatusCompleted.IsTerminal())
	assert.True(t, TaskStatusCompletedLate.IsTerminal())
}
