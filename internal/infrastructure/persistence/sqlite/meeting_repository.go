package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rezkam/taskflow/internal/domain"
)

// CreateMeeting stores a new meeting.
func (s *Store) CreateMeeting(ctx context.Context, m *domain.Meeting) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO meetings (`+meetingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, timeToInt(m.Date), m.Content, m.Summary,
		stringPtrToNull(m.RecordingURL), stringPtrToNull(m.RecordingMIMEType),
		m.CreatedBy, timeToInt(m.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, m.CreatedBy)
		}
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// FindMeetingByID retrieves a meeting.
func (s *Store) FindMeetingByID(ctx context.Context, id string) (*domain.Meeting, error) {
	m, err := scanMeeting(s.q.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMeetingNotFound, id)
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return m, nil
}

// ListMeetings returns all meetings, newest first.
func (s *Store) ListMeetings(ctx context.Context) ([]*domain.Meeting, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		ORDER BY meeting_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	meetings, err := collect(rows, scanMeeting)
	if err != nil {
		return nil, fmt.Errorf("failed to scan meetings: %w", err)
	}
	return meetings, nil
}
