package handler

import (
	"time"

	"github.com/rezkam/taskflow/internal/application/analytics"
	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/domain"
)

// Wire types. Field names and JSON tags follow openapi/openapi.yaml.

type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type DisplayStatusDTO struct {
	Kind        string `json:"kind"`
	OverdueDays int    `json:"overdue_days,omitempty"`
	Progress    int    `json:"progress,omitempty"`
}

type TaskDTO struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	CreatorID   string           `json:"creator_id"`
	AssigneeID  *string          `json:"assignee_id"`
	Status      string           `json:"status"`
	Progress    int              `json:"progress"`
	DueDate     string           `json:"due_date"`
	CompletedAt *time.Time       `json:"completed_at"`
	Display     DisplayStatusDTO `json:"display"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type StatusChangeDTO struct {
	ID         string    `json:"id"`
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Progress   int       `json:"progress"`
	ChangedBy  string    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}

type UserStatsDTO struct {
	User          UserDTO `json:"user"`
	Total         int     `json:"total"`
	Completed     int     `json:"completed"`
	CompletedLate int     `json:"completed_late"`
	Overdue       int     `json:"overdue"`
	InProgress    int     `json:"in_progress"`
	NotStarted    int     `json:"not_started"`
	Score         int     `json:"score"`
}

type MeetingDTO struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Date              time.Time `json:"date"`
	Content           string    `json:"content"`
	Summary           string    `json:"summary"`
	HasRecording      bool      `json:"has_recording"`
	RecordingMIMEType *string   `json:"recording_mime_type"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
}

type SuggestedTaskDTO struct {
	Title        string `json:"title"`
	Content      string `json:"content,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
}

// Requests

type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Title    string `json:"title"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type CreateTaskRequest struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	AssigneeID *string `json:"assignee_id"`
	DueDate    string  `json:"due_date"`
}

type UpdateStatusRequest struct {
	Status   string `json:"status"`
	Progress *int   `json:"progress"`
}

type UpdateDueDateRequest struct {
	DueDate string `json:"due_date"`
}

type AnalyzeMeetingRequest struct {
	Title         string `json:"title"`
	Transcript    string `json:"transcript"`
	AudioBase64   string `json:"audio_base64"`
	AudioMIMEType string `json:"audio_mime_type"`
}

type AcceptTasksRequest struct {
	Tasks []SuggestedTaskDTO `json:"tasks"`
}

// Responses

type UserResponse struct {
	User UserDTO `json:"user"`
}

type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
}

type SessionResponse struct {
	User      UserDTO    `json:"user"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type TimeResponse struct {
	Now      time.Time `json:"now"`
	Timezone string    `json:"timezone"`
	Today    string    `json:"today"`
}

type TaskResponse struct {
	Task TaskDTO `json:"task"`
}

type BoardResponse struct {
	ReferenceTime time.Time `json:"reference_time"`
	Tasks         []TaskDTO `json:"tasks"`
}

type UpdateStatusResponse struct {
	Task       TaskDTO `json:"task"`
	Redirected bool    `json:"redirected"`
}

type HistoryResponse struct {
	Changes []StatusChangeDTO `json:"changes"`
}

type EfficiencyResponse struct {
	ReferenceTime time.Time      `json:"reference_time"`
	Users         []UserStatsDTO `json:"users"`
}

type MeetingResponse struct {
	Meeting MeetingDTO `json:"meeting"`
}

type ListMeetingsResponse struct {
	Meetings []MeetingDTO `json:"meetings"`
}

type AnalyzeMeetingResponse struct {
	Meeting     MeetingDTO         `json:"meeting"`
	Suggestions []SuggestedTaskDTO `json:"suggestions"`
}

type AcceptTasksResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

// Domain → DTO mappers

// MapUserToDTO converts a user. The password hash never leaves this layer.
func MapUserToDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Title:     u.Title,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func mapUsers(users []*domain.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, MapUserToDTO(u))
	}
	return out
}

// MapTaskToDTO converts a task view: the stored task plus its derived display status.
func MapTaskToDTO(v task.View) TaskDTO {
	t := v.Task
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Content:     t.Content,
		CreatorID:   t.CreatorID,
		AssigneeID:  t.AssigneeID,
		Status:      string(t.Status),
		Progress:    t.Progress,
		DueDate:     t.DueDate.String(),
		CompletedAt: t.CompletedAt,
		Display: DisplayStatusDTO{
			Kind:        string(v.Display.Kind),
			OverdueDays: v.Display.OverdueDays,
			Progress:    v.Display.Progress,
		},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func mapTasks(views []task.View) []TaskDTO {
	out := make([]TaskDTO, 0, len(views))
	for _, v := range views {
		out = append(out, MapTaskToDTO(v))
	}
	return out
}

func mapStatusChange(c *domain.StatusChange) StatusChangeDTO {
	dto := StatusChangeDTO{
		ID:        c.ID,
		ToStatus:  string(c.ToStatus),
		Progress:  c.Progress,
		ChangedBy: c.ChangedBy,
		ChangedAt: c.ChangedAt,
	}
	if c.FromStatus != nil {
		from := string(*c.FromStatus)
		dto.FromStatus = &from
	}
	return dto
}

func mapUserStats(e analytics.UserEfficiency) UserStatsDTO {
	return UserStatsDTO{
		User:          MapUserToDTO(e.User),
		Total:         e.Stats.Total,
		Completed:     e.Stats.Completed,
		CompletedLate: e.Stats.CompletedLate,
		Overdue:       e.Stats.Overdue,
		InProgress:    e.Stats.InProgress,
		NotStarted:    e.Stats.NotStarted,
		Score:         e.Stats.Score,
	}
}

// MapMeetingToDTO converts a meeting. The storage location of the recording
// is internal; clients fetch audio through the recording endpoint.
func MapMeetingToDTO(m *domain.Meeting) MeetingDTO {
	return MeetingDTO{
		ID:                m.ID,
		Title:             m.Title,
		Date:              m.Date,
		Content:           m.Content,
		Summary:           m.Summary,
		HasRecording:      m.RecordingURL != nil,
		RecordingMIMEType: m.RecordingMIMEType,
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
	}
}

func mapSuggestions(in []domain.SuggestedTask) []SuggestedTaskDTO {
	out := make([]SuggestedTaskDTO, 0, len(in))
	for _, s := range in {
		out = append(out, SuggestedTaskDTO(s))
	}
	return out
}

func suggestionsFromDTO(in []SuggestedTaskDTO) []domain.SuggestedTask {
	out := make([]domain.SuggestedTask, 0, len(in))
	for _, s := range in {
		out = append(out, domain.SuggestedTask(s))
	}
	return out
}
