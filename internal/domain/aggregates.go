package domain

import (
	"fmt"
	"net/url"
	"time"
)

// Task is an aggregate root representing one unit of assigned work.
//
// Status is the persisted, authoritative state. Whether a task is overdue is
// never stored: it is derived at read time by DisplayStatusOf from the due
// date and a reference instant.
type Task struct {
	ID      string
	Title   string
	Content string

	// Ownership
	CreatorID  string
	AssigneeID *string // Weak reference; nil = unassigned

	// Progress tracking
	Status   TaskStatus
	Progress int // 0-100, meaningful while NOT_STARTED or IN_PROGRESS

	// Scheduling
	DueDate     Date       // Calendar day, interpreted in the reference location
	CompletedAt *time.Time // Set on transition into a completed status

	// Operational timestamps, always UTC
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAssignedTo reports whether userID is the task's assignee.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// StatusChange records one status transition of a task.
// The first entry of every task has a nil FromStatus.
type StatusChange struct {
	ID         string
	TaskID     string
	FromStatus *TaskStatus
	ToStatus   TaskStatus
	Progress   int
	ChangedBy  string
	ChangedAt  time.Time
}

// User is an aggregate root representing a registered account.
type User struct {
	ID           string
	Name         string // Unique login name
	Title        string // Job title, e.g. "Product Manager"
	Role         UserRole
	AvatarURL    string
	PasswordHash string // bcrypt hash, never exposed
	CreatedAt    time.Time
}

// AvatarURLFor derives the default avatar for a user name.
func AvatarURLFor(name string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(name)
}

// CanManageTasks reports whether the user may create, delete and reschedule tasks
// and run meeting analysis.
func (u *User) CanManageTasks() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleOperator
}

// CanEditDueDate reports whether the user may change due dates.
func (u *User) CanEditDueDate() bool {
	return u.CanManageTasks()
}

// CanEditStatus reports whether the user may change the status of t.
// Admins may edit any task; everyone else only the tasks assigned to them.
func (u *User) CanEditStatus(t *Task) bool {
	if u.Role == UserRoleAdmin {
		return true
	}
	return t.IsAssignedTo(u.ID)
}

// CanManageUsers reports whether the user may change other users' roles.
func (u *User) CanManageUsers() bool {
	return u.Role == UserRoleAdmin
}

// Session is an aggregate root representing a login session token.
//
// Sessions use a split-token pattern:
//   - ShortToken: indexed portion for lookup
//   - SecretHash: BLAKE2b-256 hash of the long secret for verification
//
// The full token is only shown once, when the session is created.
type Session struct {
	ID         string
	UserID     string
	ShortToken string
	SecretHash string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// Meeting is an aggregate root holding the minutes of one analyzed meeting.
type Meeting struct {
	ID                string
	Title             string
	Date              time.Time
	Content           string // Transcript or a note that the source was audio
	Summary           string // AI-generated minutes
	RecordingURL      *string
	RecordingMIMEType *string
	CreatedBy         string
	CreatedAt         time.Time
}

// DefaultMeetingTitle names a meeting after the day it was held.
func DefaultMeetingTitle(day Date) string {
	return fmt.Sprintf("Meeting notes %s", day)
}

// SuggestedTask is a task draft proposed by the meeting extractor.
// It is untrusted input and must be sanitized before it becomes a Task.
type SuggestedTask struct {
	Title        string
	Content      string
	AssigneeName string
	DueDate      string
}

// Extraction is the result of analyzing one meeting.
type Extraction struct {
	Summary     string
	Suggestions []SuggestedTask
}

// DefaultMeetingSummary is used when the extractor returns no summary.
const DefaultMeetingSummary = "Unable to generate summary."
