package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEfficiencyScore(t *testing.T) {
	tests := []struct {
		name                         string
		total, onTime, late, overdue int
		want                         int
	}{
		{"no tasks", 0, 0, 0, 0, 0},
		{"all on time", 4, 4, 0, 0, 100},
		{"mixed", 4, 2, 1, 1, 30},
		{"rounds to nearest percent", 3, 2, 0, 0, 67},
		{"clamped at zero", 2, 0, 0, 2, 0},
		{"only active work", 5, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EfficiencyScore(tt.total, tt.onTime, tt.late, tt.overdue))
		})
	}
}

func TestComputeUserStats(t *testing.T) {
	ref := time.Date(2024, time.January, 10, 12, 0, 0, 0, DefaultReferenceLocation)
	tasks := []Task{
		{Status: TaskStatusCompleted, DueDate: NewDate(2024, time.January, 5)},
		{Status: TaskStatusCompleted, DueDate: NewDate(2024, time.January, 8)},
		{Status: TaskStatusCompletedLate, DueDate: NewDate(2024, time.January, 2)},
		{Status: TaskStatusInProgress, Progress: 50, DueDate: NewDate(2024, time.January, 3)},
	}

	stats := ComputeUserStats(tasks, ref, DefaultReferenceLocation)

	assert.Equal(t, UserStats{
		Total:         4,
		Completed:     2,
		CompletedLate: 1,
		Overdue:       1,
		Score:         30,
	}, stats)
}

func TestComputeUserStats_ActiveWork(t *testing.T) {
	ref := time.Date(2024, time.January, 10, 12, 0, 0, 0, DefaultReferenceLocation)
	tasks := []Task{
		{Status: TaskStatusNotStarted, DueDate: NewDate(2024, time.January, 20)},
		{Status: TaskStatusInProgress, Progress: 10, DueDate: NewDate(2024, time.January, 10)},
	}

	stats := ComputeUserStats(tasks, ref, DefaultReferenceLocation)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.NotStarted)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 0, stats.Score)
}

func TestComputeUserStats_Empty(t *testing.T) {
	assert.Equal(t, UserStats{}, ComputeUserStats(nil, time.Now().UTC(), DefaultReferenceLocation))
}
