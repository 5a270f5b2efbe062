package sqlite

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rezkam/taskflow/internal/domain"
)

// === Column Conversion Helpers ===

// timeToInt stores an instant as unix nanoseconds.
func timeToInt(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func intToTime(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func timePtrToNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: timeToInt(*t), Valid: true}
}

func nullToTimePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := intToTime(n.Int64)
	return &t
}

func stringPtrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullToStringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

// === Constraint Errors ===

func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

// isConstraint matches both primary and extended SQLITE_CONSTRAINT codes.
func isConstraint(err error, kind string) bool {
	return sqliteCode(err)&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), kind)
}

func isUniqueViolation(err error, column string) bool {
	return isConstraint(err, "UNIQUE constraint failed") && strings.Contains(err.Error(), column)
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, "FOREIGN KEY constraint failed")
}

// === Row Scanners ===

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const taskColumns = `id, title, content, creator_id, assignee_id, status, progress,
	due_date, completed_at, created_at, updated_at`

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t                    domain.Task
		assigneeID           sql.NullString
		status, dueDate      string
		completedAt          sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Content, &t.CreatorID, &assigneeID, &status, &t.Progress,
		&dueDate, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	due, err := domain.ParseDate(dueDate, time.UTC)
	if err != nil {
		return nil, err
	}

	t.AssigneeID = nullToStringPtr(assigneeID)
	t.Status = domain.TaskStatus(status)
	t.DueDate = due
	t.CompletedAt = nullToTimePtr(completedAt)
	t.CreatedAt = intToTime(createdAt)
	t.UpdatedAt = intToTime(updatedAt)
	return &t, nil
}

const statusChangeColumns = `id, task_id, from_status, to_status, progress, changed_by, changed_at`

func scanStatusChange(row scanner) (*domain.StatusChange, error) {
	var (
		c          domain.StatusChange
		fromStatus sql.NullString
		toStatus   string
		changedAt  int64
	)
	if err := row.Scan(&c.ID, &c.TaskID, &fromStatus, &toStatus, &c.Progress, &c.ChangedBy, &changedAt); err != nil {
		return nil, err
	}

	if fromStatus.Valid {
		from := domain.TaskStatus(fromStatus.String)
		c.FromStatus = &from
	}
	c.ToStatus = domain.TaskStatus(toStatus)
	c.ChangedAt = intToTime(changedAt)
	return &c, nil
}

const userColumns = `id, name, title, role, avatar_url, password_hash, created_at`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		createdAt int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Title, &role, &u.AvatarURL, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}

	u.Role = domain.UserRole(role)
	u.CreatedAt = intToTime(createdAt)
	return &u, nil
}

const sessionColumns = `id, user_id, short_token, secret_hash, created_at, last_used_at, expires_at`

func scanSession(row scanner) (*domain.Session, error) {
	var (
		s                     domain.Session
		createdAt             int64
		lastUsedAt, expiresAt sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.ShortToken, &s.SecretHash, &createdAt, &lastUsedAt, &expiresAt); err != nil {
		return nil, err
	}

	s.CreatedAt = intToTime(createdAt)
	s.LastUsedAt = nullToTimePtr(lastUsedAt)
	s.ExpiresAt = nullToTimePtr(expiresAt)
	return &s, nil
}

const meetingColumns = `id, title, meeting_date, content, summary, recording_url,
	recording_mime_type, created_by, created_at`

func scanMeeting(row scanner) (*domain.Meeting, error) {
	var (
		m                         domain.Meeting
		date, createdAt           int64
		recordingURL, recordingMT sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Title, &date, &m.Content, &m.Summary, &recordingURL,
		&recordingMT, &m.CreatedBy, &createdAt); err != nil {
		return nil, err
	}

	m.Date = intToTime(date)
	m.RecordingURL = nullToStringPtr(recordingURL)
	m.RecordingMIMEType = nullToStringPtr(recordingMT)
	m.CreatedAt = intToTime(createdAt)
	return &m, nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, scan func(scanner) (*T, error)) ([]*T, error) {
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
