package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/taskflow/internal/application/auth"
	"github.com/rezkam/taskflow/internal/domain"
	mw "github.com/rezkam/taskflow/internal/http/middleware"
	"github.com/rezkam/taskflow/internal/http/response"
)

func sessionResponse(res *auth.SessionResult) SessionResponse {
	return SessionResponse{
		User:      MapUserToDTO(res.User),
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt,
	}
}

// Register creates an account and signs it in. The first account is an admin.
// POST /v1/auth/register
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.accounts.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Password: req.Password,
		Title:    req.Title,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, sessionResponse(res))
}

// Login opens a session.
// POST /v1/auth/login
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.accounts.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, sessionResponse(res))
}

// Logout revokes the session the request was made with.
// POST /v1/auth/logout
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := mw.PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	if err := s.accounts.Logout(r.Context(), p); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}

// GET /v1/me
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	response.OK(w, UserResponse{User: MapUserToDTO(user)})
}

// GET /v1/users
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accounts.ListUsers(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, ListUsersResponse{Users: mapUsers(users)})
}

// SetUserRole changes another user's role. Admin only.
// PATCH /v1/users/{user_id}/role
func (s *Server) SetUserRole(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req SetRoleRequest
	if !decode(w, r, &req) {
		return
	}

	role, err := domain.NewUserRole(req.Role)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	updated, err := s.accounts.SetRole(r.Context(), user, chi.URLParam(r, "user_id"), role)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, UserResponse{User: MapUserToDTO(updated)})
}
