package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskflow/internal/application/analytics"
	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/application/task"
	"github.com/rezkam/taskflow/internal/domain"
	mw "github.com/rezkam/taskflow/internal/http/middleware"
	"github.com/rezkam/taskflow/internal/http/openapi"
	"github.com/rezkam/taskflow/internal/http/response"
)

// BasePath is where the API router is mounted.
const BasePath = "/api"

// PublicPaths are reachable without a session token.
var PublicPaths = []string{
	BasePath + "/v1/auth/register",
	BasePath + "/v1/auth/login",
}

// Services bundles the application services behind the API.
type Services struct {
	Tasks     *task.Service
	Accounts  *auth.Accounts
	Analytics *analytics.Service
	Meetings  *meeting.Service
}

// Server adapts HTTP requests to application service calls.
type Server struct {
	tasks     *task.Service
	accounts  *auth.Accounts
	analytics *analytics.Service
	meetings  *meeting.Service
}

// NewServer creates the API handler set.
func NewServer(s Services) *Server {
	return &Server{
		tasks:     s.Tasks,
		accounts:  s.Accounts,
		analytics: s.Analytics,
		meetings:  s.Meetings,
	}
}

// NewOpenAPIRouter builds the API router: request validation against the
// embedded OpenAPI document followed by the v1 routes.
// Production and tests both go through here.
func NewOpenAPIRouter(s Services) (http.Handler, error) {
	h := NewServer(s)

	spec, err := openapi.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	r := chi.NewRouter()
	r.Use(mw.NewValidator(spec, mw.ValidationConfig{BasePath: BasePath, MultiError: true}))
	h.routes(r)
	return r, nil
}

func (s *Server) routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
		r.Post("/auth/logout", s.Logout)
		r.Get("/me", s.GetMe)

		r.Get("/users", s.ListUsers)
		r.Patch("/users/{user_id}/role", s.SetUserRole)

		r.Get("/time", s.GetTime)

		r.Get("/tasks", s.ListTasks)
		r.Post("/tasks", s.CreateTask)
		r.Get("/tasks/{task_id}", s.GetTask)
		r.Delete("/tasks/{task_id}", s.DeleteTask)
		r.Patch("/tasks/{task_id}/status", s.UpdateTaskStatus)
		r.Patch("/tasks/{task_id}/due-date", s.UpdateTaskDueDate)
		r.Get("/tasks/{task_id}/history", s.GetTaskHistory)

		r.Get("/analytics/efficiency", s.GetEfficiency)

		r.Get("/meetings", s.ListMeetings)
		r.Post("/meetings", s.AnalyzeMeeting)
		r.Get("/meetings/{meeting_id}", s.GetMeeting)
		r.Get("/meetings/{meeting_id}/recording", s.GetMeetingRecording)
		r.Post("/meetings/{meeting_id}/tasks", s.AcceptMeetingTasks)
	})
}

// actor returns the authenticated user, answering 401 when there is none.
func actor(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	p, ok := mw.PrincipalFrom(r.Context())
	if !ok {
		slog.WarnContext(r.Context(), "handler reached without principal", "path", r.URL.Path)
		response.Unauthorized(w, "authentication required")
		return nil, false
	}
	return p.User, true
}

// decode reads a JSON body into dst, answering 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid JSON")
		return false
	}
	return true
}
