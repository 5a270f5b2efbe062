package domain

import (
	"fmt"
	"time"
)

// OverdueDays returns how many calendar days ref lies past due, with both
// evaluated in loc. Zero means due today; negative means due in the future.
func OverdueDays(due Date, ref time.Time, loc *time.Location) int {
	return DateOf(ref, loc).DaysSince(due)
}

// DisplayStatusOf derives the view-only classification of t at ref.
//
// Precedence: completed variants first, then overdue, then the stored
// active status. A completed task is never shown as overdue.
func DisplayStatusOf(t Task, ref time.Time, loc *time.Location) DisplayStatus {
	switch t.Status {
	case TaskStatusCompleted:
		return DisplayStatus{Kind: DisplayDoneOnTime}
	case TaskStatusCompletedLate:
		return DisplayStatus{Kind: DisplayDoneLate}
	}

	if days := OverdueDays(t.DueDate, ref, loc); days > 0 {
		return DisplayStatus{Kind: DisplayOverdue, OverdueDays: days}
	}

	if t.Status == TaskStatusNotStarted {
		return DisplayStatus{Kind: DisplayNotStarted}
	}
	return DisplayStatus{Kind: DisplayInProgress, Progress: t.Progress}
}

// ApplyStatusEdit validates edit against t and returns the updated task.
// t is not modified; persisting the result is the caller's job.
//
// Completing an overdue task records it as COMPLETED_LATE. Entering either
// completed status stamps CompletedAt with ref. Tasks already in a terminal
// status reject every edit with ErrInvalidTransition.
func ApplyStatusEdit(t Task, edit StatusEdit, ref time.Time, loc *time.Location) (Task, error) {
	if t.Status.IsTerminal() {
		return t, fmt.Errorf("%w: task is %s", ErrInvalidTransition, t.Status)
	}

	updated := t
	switch edit.Status {
	case TaskStatusCompleted:
		if OverdueDays(t.DueDate, ref, loc) > 0 {
			updated.Status = TaskStatusCompletedLate
		} else {
			updated.Status = TaskStatusCompleted
		}
	case TaskStatusCompletedLate:
		updated.Status = TaskStatusCompletedLate
	case TaskStatusInProgress:
		updated.Status = TaskStatusInProgress
		if edit.Progress != nil {
			updated.Progress = ClampProgress(*edit.Progress)
		}
	case TaskStatusNotStarted:
		updated.Status = TaskStatusNotStarted
	default:
		return t, fmt.Errorf("%w: %q", ErrInvalidTaskStatus, edit.Status)
	}

	if updated.Status.IsTerminal() {
		completedAt := ref
		updated.CompletedAt = &completedAt
	}
	return updated, nil
}

// ApplyDueDateEdit replaces the due date of t. The stored status is left as is;
// any overdue reclassification happens at read time.
func ApplyDueDateEdit(t Task, s string, loc *time.Location) (Task, error) {
	due, err := ParseDate(s, loc)
	if err != nil {
		return t, err
	}
	updated := t
	updated.DueDate = due
	return updated, nil
}
