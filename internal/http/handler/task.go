package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/http/response"
)

// GetTime reports the reference instant every status on the board is evaluated against.
// GET /v1/time
func (s *Server) GetTime(w http.ResponseWriter, r *http.Request) {
	now := s.tasks.Now(r.Context())
	loc := s.tasks.Location()

	response.OK(w, TimeResponse{
		Now:      now.In(loc),
		Timezone: loc.String(),
		Today:    domain.DateOf(now, loc).String(),
	})
}

// ListTasks returns the task board.
// GET /v1/tasks?filter=all|mine
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	filter, err := domain.NewBoardFilter(r.URL.Query().Get("filter"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	board, err := s.tasks.Board(r.Context(), user, filter)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, BoardResponse{
		ReferenceTime: board.ReferenceTime,
		Tasks:         mapTasks(board.Tasks),
	})
}

// POST /v1/tasks
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decode(w, r, &req) {
		return
	}

	view, err := s.tasks.CreateTask(r.Context(), user, task.CreateInput{
		Title:      req.Title,
		Content:    req.Content,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, TaskResponse{Task: MapTaskToDTO(*view)})
}

// GET /v1/tasks/{task_id}
func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	view, err := s.tasks.GetTask(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, TaskResponse{Task: MapTaskToDTO(*view)})
}

// DELETE /v1/tasks/{task_id}
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	if err := s.tasks.DeleteTask(r.Context(), user, chi.URLParam(r, "task_id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}

// UpdateTaskStatus applies a status edit. When COMPLETED was requested for an
// overdue task the response carries redirected=true and status COMPLETED_LATE.
// PATCH /v1/tasks/{task_id}/status
func (s *Server) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}

	status, err := domain.NewTaskStatus(req.Status)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	result, err := s.tasks.UpdateStatus(r.Context(), user, chi.URLParam(r, "task_id"), domain.StatusEdit{
		Status:   status,
		Progress: req.Progress,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, UpdateStatusResponse{
		Task:       MapTaskToDTO(result.View),
		Redirected: result.Redirected,
	})
}

// PATCH /v1/tasks/{task_id}/due-date
func (s *Server) UpdateTaskDueDate(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req UpdateDueDateRequest
	if !decode(w, r, &req) {
		return
	}

	view, err := s.tasks.UpdateDueDate(r.Context(), user, chi.URLParam(r, "task_id"), req.DueDate)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, TaskResponse{Task: MapTaskToDTO(*view)})
}

// GET /v1/tasks/{task_id}/history
func (s *Server) GetTaskHistory(w http.ResponseWriter, r *http.Request) {
	changes, err := s.tasks.History(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	out := make([]StatusChangeDTO, 0, len(changes))
	for _, c := range changes {
		out = append(out, mapStatusChange(c))
	}
	response.OK(w, HistoryResponse{Changes: out})
}

// GET /v1/analytics/efficiency
func (s *Server) GetEfficiency(w http.ResponseWriter, r *http.Request) {
	report, err := s.analytics.Efficiency(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	users := make([]UserStatsDTO, 0, len(report.Users))
	for _, u := range report.Users {
		users = append(users, mapUserStats(u))
	}
	response.OK(w, EfficiencyResponse{ReferenceTime: report.ReferenceTime, Users: users})
}
