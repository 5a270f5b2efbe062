package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rezkam/taskflow/internal/domain"
)

// === Meeting Repository Implementation ===
// Implements application/meeting.Repository

// CreateMeeting stores a new meeting.
func (s *Store) CreateMeeting(ctx context.Context, m *domain.Meeting) error {
	id, ok := parseUUID(m.ID)
	if !ok {
		return fmt.Errorf("%w: meeting id %q", domain.ErrInvalidInput, m.ID)
	}
	createdBy, ok := parseUUID(m.CreatedBy)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, m.CreatedBy)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO meetings (`+meetingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, m.Title, timeToPgtype(m.Date), m.Content, m.Summary,
		stringPtrToPgtype(m.RecordingURL), stringPtrToPgtype(m.RecordingMIMEType),
		createdBy, timeToPgtype(m.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err, "created_by") {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, m.CreatedBy)
		}
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// FindMeetingByID retrieves a meeting.
func (s *Store) FindMeetingByID(ctx context.Context, id string) (*domain.Meeting, error) {
	meetingID, ok := parseUUID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMeetingNotFound, id)
	}

	m, err := scanMeeting(s.db.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, meetingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMeetingNotFound, id)
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return m, nil
}

// ListMeetings returns all meetings, newest first.
func (s *Store) ListMeetings(ctx context.Context) ([]*domain.Meeting, error) {
	rows, err := s.db.Query(ctx, `
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
