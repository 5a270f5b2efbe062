package domain

// TaskStatus represents the persisted, authoritative state of a task.
// Value object - immutable string enum.
type TaskStatus string

const (
	TaskStatusNotStarted    TaskStatus = "NOT_STARTED"
	TaskStatusInProgress    TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted     TaskStatus = "COMPLETED"
	TaskStatusCompletedLate TaskStatus = "COMPLETED_LATE"
)

// IsTerminal reports whether no further status edits are accepted.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCompletedLate
}

// DisplayKind is the derived, view-only classification of a task.
// It is computed at read time and never persisted.
type DisplayKind string

const (
	DisplayDoneOnTime DisplayKind = "DONE_ON_TIME"
	DisplayDoneLate   DisplayKind = "DONE_LATE"
	DisplayOverdue    DisplayKind = "OVERDUE"
	DisplayNotStarted DisplayKind = "NOT_STARTED"
	DisplayInProgress DisplayKind = "IN_PROGRESS"
)

// UserRole represents what a user is allowed to do.
// Value object - immutable string enum.
type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"    // Full control, including role management
	UserRoleOperator UserRole = "OPERATOR" // Manages tasks and meetings
	UserRoleUser     UserRole = "USER"     // Works on assigned tasks
)

// BoardFilter selects which tasks appear on the task board.
type BoardFilter string

const (
	BoardFilterAll  BoardFilter = "all"
	BoardFilterMine BoardFilter = "mine"
)
