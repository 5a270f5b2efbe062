// Package meeting analyzes meeting transcripts and recordings into minutes
// and task suggestions, and turns accepted suggestions into tasks.
package meeting

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/domain"
)

// DefaultDueInDays is added to the reference day when a suggestion has no usable due date.
const DefaultDueInDays = 3

// AudioContentNote is stored as meeting content when the source was a recording.
const AudioContentNote = "Audio recording"

// AnalyzeInput holds one meeting to analyze.
type AnalyzeInput struct {
	Title         string // Optional; defaults to a dated title
	Transcript    string
	Audio         []byte
	AudioMIMEType string
}

// Analysis is a stored meeting plus the task drafts extracted from it.
// Drafts are not persisted; the client edits them and accepts a subset.
type Analysis struct {
	Meeting     *domain.Meeting
	Suggestions []domain.SuggestedTask
}

// Config holds configuration for the Service.
type Config struct {
	Location *time.Location // nil = domain.DefaultReferenceLocation
}

// Service coordinates meeting analysis.
type Service struct {
	repo       Repository
	extractor  Extractor // nil when no AI backend is configured
	recordings RecordingStore
	tasks      TaskCreator
	clock      Clock
	loc        *time.Location
}

// NewService creates a meeting service. extractor may be nil, in which case
// Analyze fails with domain.ErrExtractionFailed.
func NewService(repo Repository, extractor Extractor, recordings RecordingStore, tasks TaskCreator, clock Clock, config Config) *Service {
	if config.Location == nil {
		config.Location = domain.DefaultReferenceLocation
	}
	return &Service{
		repo:       repo,
		extractor:  extractor,
		recordings: recordings,
		tasks:      tasks,
		clock:      clock,
		loc:        config.Location,
	}
}

// Analyze extracts minutes and task suggestions from a meeting and stores
// the meeting. Only admins and operators may analyze meetings.
func (s *Service) Analyze(ctx context.Context, actor *domain.User, input AnalyzeInput) (*Analysis, error) {
	if !actor.CanManageTasks() {
		return nil, domain.ErrForbidden
	}

	transcript := strings.TrimSpace(input.Transcript)
	hasAudio := len(input.Audio) > 0
	if transcript == "" && !hasAudio {
		return nil, domain.ErrMeetingContentEmpty
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", domain.ErrExtractionFailed)
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}

	req := ExtractRequest{TeamMembers: names}
	if hasAudio {
		req.Audio = input.Audio
		req.AudioMIMEType = input.AudioMIMEType
	} else {
		req.Transcript = transcript
	}

	extraction, err := s.extractor.Extract(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "meeting extraction failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	ref := s.clock.Now(ctx)
	meeting := &domain.Meeting{
		ID:        id.String(),
		Title:     strings.TrimSpace(input.Title),
		Date:      ref,
		Content:   transcript,
		Summary:   strings.TrimSpace(extraction.Summary),
		CreatedBy: actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if meeting.Title == "" {
		meeting.Title = domain.DefaultMeetingTitle(domain.DateOf(ref, s.loc))
	}
	if meeting.Summary == "" {
		meeting.Summary = domain.DefaultMeetingSummary
	}

	if hasAudio {
		if meeting.Content == "" {
			meeting.Content = AudioContentNote
		}
		location, err := s.recordings.Save(ctx, recordingKey(meeting.ID), bytes.NewReader(input.Audio), input.AudioMIMEType)
		if err != nil {
			return nil, fmt.Errorf("failed to store recording: %w", err)
		}
		mime := input.AudioMIMEType
		meeting.RecordingURL = &location
		meeting.RecordingMIMEType = &mime
	}

	if err := s.repo.CreateMeeting(ctx, meeting); err != nil {
		if hasAudio {
			s.discardRecording(ctx, meeting.ID)
		}
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	slog.InfoContext(ctx, "meeting analyzed",
		"meeting_id", meeting.ID,
		"suggestions", len(extraction.Suggestions),
		"audio", hasAudio)

	return &Analysis{Meeting: meeting, Suggestions: extraction.Suggestions}, nil
}

// AcceptSuggestions turns (possibly edited) suggestions into tasks.
// Suggestions are untrusted: assignees must match a team member's name
// exactly, and unusable due dates fall back to DefaultDueInDays from today.
func (s *Service) AcceptSuggestions(ctx context.Context, actor *domain.User, meetingID string, suggestions []domain.SuggestedTask) ([]task.View, error) {
	if !actor.CanManageTasks() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.repo.FindMeetingByID(ctx, meetingID); err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	today := domain.DateOf(s.clock.Now(ctx), s.loc)
	inputs := Sanitize(suggestions, users, today, s.loc)
	if len(inputs) == 0 {
		return []task.View{}, nil
	}
	return s.tasks.CreateTasks(ctx, actor, inputs)
}

// Sanitize converts suggestions to task inputs.
func Sanitize(suggestions []domain.SuggestedTask, users []*domain.User, today domain.Date, loc *time.Location) []task.CreateInput {
	byName := make(map[string]string, len(users))
	for _, u := range users {
		byName[u.Name] = u.ID
	}
	fallbackDue := today.AddDays(DefaultDueInDays).String()

	inputs := make([]task.CreateInput, 0, len(suggestions))
	for _, st := range suggestions {
		input := task.CreateInput{
			Title:   st.Title,
			Content: strings.TrimSpace(st.Content),
			DueDate: fallbackDue,
		}
		if id, ok := byName[strings.TrimSpace(st.AssigneeName)]; ok {
			input.AssigneeID = &id
		}
		if due, err := domain.ParseDate(st.DueDate, loc); err == nil {
			input.DueDate = due.String()
		}
		inputs = append(inputs, input)
	}
	return inputs
}

// ListMeetings returns all meetings, newest first.
func (s *Service) ListMeetings(ctx context.Context) ([]*domain.Meeting, error) {
	return s.repo.ListMeetings(ctx)
}

// GetMeeting retrieves one meeting.
func (s *Service) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	return s.repo.FindMeetingByID(ctx, id)
}

// OpenRecording streams a meeting's audio. The caller closes the reader.
func (s *Service) OpenRecording(ctx context.Context, meetingID string) (io.ReadCloser, string, error) {
	m, err := s.repo.FindMeetingByID(ctx, meetingID)
	if err != nil {
		return nil, "", err
	}
	if m.RecordingURL == nil {
		return nil, "", domain.ErrRecordingNotFound
	}

	rc, err := s.recordings.Open(ctx, recordingKey(m.ID))
	if err != nil {
		return nil, "", err
	}

	mime := "application/octet-stream"
	if m.RecordingMIMEType != nil && *m.RecordingMIMEType != "" {
		mime = *m.RecordingMIMEType
	}
	return rc, mime, nil
}

func recordingKey(meetingID string) string {
	return "recordings/" + meetingID
}

// discardRecording removes audio whose meeting was never stored.
func (s *Service) discardRecording(ctx context.Context, meetingID string) {
	key := recordingKey(meetingID)
	if err := s.recordings.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.ErrorContext(ctx, "failed to delete orphaned recording", "key", key, "error", err)
	}
}
