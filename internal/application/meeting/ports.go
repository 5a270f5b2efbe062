package meeting

import (
	"context"
	"io"
	"time"

	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/domain"
)

// Repository defines storage operations for meetings.
type Repository interface {
	// CreateMeeting stores a new meeting.
	CreateMeeting(ctx context.Context, meeting *domain.Meeting) error

	// FindMeetingByID retrieves a meeting.
	// Returns domain.ErrMeetingNotFound if it doesn't exist.
	FindMeetingByID(ctx context.Context, id string) (*domain.Meeting, error)

	// ListMeetings returns all meetings, newest first.
	ListMeetings(ctx context.Context) ([]*domain.Meeting, error)

	// ListUsers returns the team, used to resolve assignee names.
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// ExtractRequest is the input of one meeting analysis.
// Either Transcript or Audio is set.
type ExtractRequest struct {
	Transcript    string
	Audio         []byte
	AudioMIMEType string
	TeamMembers   []string // Names the extractor may assign tasks to
}

// Extractor turns meeting content into minutes and task drafts.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (*domain.Extraction, error)
}

// RecordingStore keeps meeting audio.
type RecordingStore interface {
	// Save writes a recording under key and returns its storage location.
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Open streams a recording.
	// Returns domain.ErrRecordingNotFound if key doesn't exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a recording. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// TaskCreator creates tasks from accepted suggestions.
type TaskCreator interface {
	CreateTasks(ctx context.Context, actor *domain.User, inputs []task.CreateInput) ([]task.View, error)
}

// Clock supplies the reference instant.
type Clock interface {
	Now(ctx context.Context) time.Time
}
