package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rezkam/taskflow/internal/domain"
)

// === pgtype Conversion Helpers ===

// parseUUID converts a string ID to pgtype.UUID. ok is false for malformed IDs,
// which can never match a stored row.
func parseUUID(id string) (pgtype.UUID, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

// pgtypeToUUIDString converts pgtype.UUID to string (empty if invalid).
func pgtypeToUUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

// pgtypeToUUIDPtr converts a nullable pgtype.UUID to *string.
func pgtypeToUUIDPtr(id pgtype.UUID) *string {
	if !id.Valid {
		return nil
	}
	s := uuid.UUID(id.Bytes).String()
	return &s
}

// timeToPgtype converts time.Time to pgtype.Timestamptz.
func timeToPgtype(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// pgtypeToTime converts pgtype.Timestamptz to time.Time (zero if invalid).
// Always returns time in UTC location for consistent timezone handling.
func pgtypeToTime(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}

// timePtrToPgtype converts *time.Time to pgtype.Timestamptz.
// For nil pointers, returns NULL (Valid: false).
func timePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// pgtypeToTimePtr converts pgtype.Timestamptz to *time.Time (nil if invalid).
func pgtypeToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	utcTime := t.Time.UTC()
	return &utcTime
}

// dateToPgtype converts a calendar day to pgtype.Date.
func dateToPgtype(d domain.Date) pgtype.Date {
	return pgtype.Date{Time: d.In(time.UTC), Valid: true}
}

// pgtypeToDate converts pgtype.Date to a calendar day (zero if invalid).
func pgtypeToDate(d pgtype.Date) domain.Date {
	if !d.Valid {
		return domain.Date{}
	}
	return domain.NewDate(d.Time.Year(), d.Time.Month(), d.Time.Day())
}

// stringPtrToPgtype converts *string to pgtype.Text (NULL if nil).
func stringPtrToPgtype(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// pgtypeToStringPtr converts pgtype.Text to *string (nil if NULL).
func pgtypeToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// === Row Scanners ===

const taskColumns = `id, title, content, creator_id, assignee_id, status, progress,
	due_date, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t                                 domain.Task
		id, creatorID, assigneeID         pgtype.UUID
		status                            string
		progress                          int32
		dueDate                           pgtype.Date
		completedAt, createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &t.Title, &t.Content, &creatorID, &assigneeID, &status, &progress,
		&dueDate, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.ID = pgtypeToUUIDString(id)
	t.CreatorID = pgtypeToUUIDString(creatorID)
	t.AssigneeID = pgtypeToUUIDPtr(assigneeID)
	t.Status = domain.TaskStatus(status)
	t.Progress = int(progress)
	t.DueDate = pgtypeToDate(dueDate)
	t.CompletedAt = pgtypeToTimePtr(completedAt)
	t.CreatedAt = pgtypeToTime(createdAt)
	t.UpdatedAt = pgtypeToTime(updatedAt)
	return &t, nil
}

const statusChangeColumns = `id, task_id, from_status, to_status, progress, changed_by, changed_at`

func scanStatusChange(row pgx.Row) (*domain.StatusChange, error) {
	var (
		c                     domain.StatusChange
		id, taskID, changedBy pgtype.UUID
		fromStatus            pgtype.Text
		toStatus              string
		progress              int32
		changedAt             pgtype.Timestamptz
	)
	if err := row.Scan(&id, &taskID, &fromStatus, &toStatus, &progress, &changedBy, &changedAt); err != nil {
		return nil, err
	}

	c.ID = pgtypeToUUIDString(id)
	c.TaskID = pgtypeToUUIDString(taskID)
	if fromStatus.Valid {
		from := domain.TaskStatus(fromStatus.String)
		c.FromStatus = &from
	}
	c.ToStatus = domain.TaskStatus(toStatus)
	c.Progress = int(progress)
	c.ChangedBy = pgtypeToUUIDString(changedBy)
	c.ChangedAt = pgtypeToTime(changedAt)
	return &c, nil
}

const userColumns = `id, name, title, role, avatar_url, password_hash, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		id        pgtype.UUID
		role      string
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &u.Name, &u.Title, &role, &u.AvatarURL, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}

	u.ID = pgtypeToUUIDString(id)
	u.Role = domain.UserRole(role)
	u.CreatedAt = pgtypeToTime(createdAt)
	return &u, nil
}

const sessionColumns = `id, user_id, short_token, secret_hash, created_at, last_used_at, expires_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		s                                domain.Session
		id, userID                       pgtype.UUID
		createdAt, lastUsedAt, expiresAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &s.ShortToken, &s.SecretHash, &createdAt, &lastUsedAt, &expiresAt); err != nil {
		return nil, err
	}

	s.ID = pgtypeToUUIDString(id)
	s.UserID = pgtypeToUUIDString(userID)
	s.CreatedAt = pgtypeToTime(createdAt)
	s.LastUsedAt = pgtypeToTimePtr(lastUsedAt)
	s.ExpiresAt = pgtypeToTimePtr(expiresAt)
	return &s, nil
}

const meetingColumns = `id, title, meeting_date, content, summary, recording_url,
	recording_mime_type, created_by, created_at`

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var (
		m                         domain.Meeting
		id, createdBy             pgtype.UUID
		date, createdAt           pgtype.Timestamptz
		recordingURL, recordingMT pgtype.Text
	)
	if err := row.Scan(&id, &m.Title, &date, &m.Content, &m.Summary, &recordingURL,
		&recordingMT, &createdBy, &createdAt); err != nil {
		return nil, err
	}

	m.ID = pgtypeToUUIDString(id)
	m.Date = pgtypeToTime(date)
	m.RecordingURL = pgtypeToStringPtr(recordingURL)
	m.RecordingMIMEType = pgtypeToStringPtr(recordingMT)
	m.CreatedBy = pgtypeToUUIDString(createdBy)
	m.CreatedAt = pgtypeToTime(createdAt)
	return &m, nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
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
