package handler

import (
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/http/response"
)

// defaultAudioMIMEType is what browser recorders produce.
const defaultAudioMIMEType = "audio/webm"

// decodeAudio accepts plain base64 or a data URL ("data:audio/wav;base64,...").
// A MIME type embedded in a data URL is used when mimeType is empty.
func decodeAudio(encoded, mimeType string) ([]byte, string, error) {
	encoded = strings.TrimSpace(encoded)
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if found {
			if mimeType == "" {
				mimeType, _, _ = strings.Cut(header, ";")
			}
			encoded = payload
		}
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", err
	}
	if mimeType == "" {
		mimeType = defaultAudioMIMEType
	}
	return audio, mimeType, nil
}

// GET /v1/meetings
func (s *Server) ListMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.meetings.ListMeetings(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	out := make([]MeetingDTO, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, MapMeetingToDTO(m))
	}
	response.OK(w, ListMeetingsResponse{Meetings: out})
}

// GET /v1/meetings/{meeting_id}
func (s *Server) GetMeeting(w http.ResponseWriter, r *http.Request) {
	m, err := s.meetings.GetMeeting(r.Context(), chi.URLParam(r, "meeting_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, MeetingResponse{Meeting: MapMeetingToDTO(m)})
}

// AnalyzeMeeting stores a meeting and returns the task drafts extracted from it.
// Audio, when present, is analyzed instead of the transcript.
// POST /v1/meetings
func (s *Server) AnalyzeMeeting(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req AnalyzeMeetingRequest
	if !decode(w, r, &req) {
		return
	}

	input := meeting.AnalyzeInput{
		Title:      req.Title,
		Transcript: req.Transcript,
	}
	if req.AudioBase64 != "" {
		audio, mimeType, err := decodeAudio(req.AudioBase64, req.AudioMIMEType)
		if err != nil {
			response.ValidationError(w, "audio_base64", "must be standard base64")
			return
		}
		input.Audio = audio
		input.AudioMIMEType = mimeType
	}

	analysis, err := s.meetings.Analyze(r.Context(), user, input)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, AnalyzeMeetingResponse{
		Meeting:     MapMeetingToDTO(analysis.Meeting),
		Suggestions: mapSuggestions(analysis.Suggestions),
	})
}

// GetMeetingRecording streams the stored audio of a meeting.
// GET /v1/meetings/{meeting_id}/recording
func (s *Server) GetMeetingRecording(w http.ResponseWriter, r *http.Request) {
	rc, mimeType, err := s.meetings.OpenRecording(r.Context(), chi.URLParam(r, "meeting_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.WarnContext(r.Context(), "recording stream interrupted",
			"path", r.URL.Path,
			"error", err)
	}
}

// AcceptMeetingTasks turns (possibly edited) drafts into tasks.
// POST /v1/meetings/{meeting_id}/tasks
func (s *Server) AcceptMeetingTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req AcceptTasksRequest
	if !decode(w, r, &req) {
		return
	}

	views, err := s.meetings.AcceptSuggestions(r.Context(), user, chi.URLParam(r, "meeting_id"), suggestionsFromDTO(req.Tasks))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, AcceptTasksResponse{Tasks: mapTasks(views)})
}
