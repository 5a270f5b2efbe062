package domain

// ListTasksParams contains parameters for listing tasks.
//
// Common use cases:
//   - Task board "all": zero value
//   - Task board "mine": AssigneeID=&userID
//   - Per-user analytics: AssigneeID=&userID
type ListTasksParams struct {
	// Optional filters (nil = no filter applied)
	AssigneeID *string
	Statuses   []TaskStatus
}

// StatusEdit is a requested status change for a task.
type StatusEdit struct {
	Status   TaskStatus
	Progress *int // Only applied when moving into IN_PROGRESS
}

// DisplayStatus is the derived classification of a task at a reference instant.
type DisplayStatus struct {
	Kind        DisplayKind
	OverdueDays int // Set when Kind == DisplayOverdue
	Progress    int // Set when Kind == DisplayInProgress
}

// UserStats aggregates one user's tasks for the performance dashboard.
type UserStats struct {
	Total         int
	Completed     int // Completed on time
	CompletedLate int
	Overdue       int // Active tasks past their due date
	InProgress    int
	NotStarted    int
	Score         int // Efficiency score, 0-100
}
