// Package response writes JSON bodies and the standard error envelope.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/taskflow/internal/domain"
)

// encodeFailureJSON is written when a response body cannot be marshaled.
const encodeFailureJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// ErrorResponse is the envelope of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failed request.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"` // never null
}

// ErrorField points at one invalid request field.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// JSON marshals data and writes it with status.
// Marshaling happens before the header is written, so a failure still yields a 500.
func JSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailureJSON))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes the error envelope without field details.
func Error(w http.ResponseWriter, code, message string, status int) {
	JSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:    code,
		Message: message,
		Details: []ErrorField{},
	}})
}

// ValidationError writes a 400 naming the offending field.
func ValidationError(w http.ResponseWriter, field, issue string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
		Code:    "VALIDATION_ERROR",
		Message: "validation failed",
		Details: []ErrorField{{Field: field, Issue: issue}},
	}})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_INPUT", message, http.StatusBadRequest)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, "UNAUTHORIZED", message, http.StatusUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, "FORBIDDEN", message, http.StatusForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, "NOT_FOUND", message, http.StatusNotFound)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

func InternalError(w http.ResponseWriter) {
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// validationFields maps validation sentinels to the request field they concern.
var validationFields = []struct {
	err   error
	field string
}{
	{domain.ErrTitleRequired, "title"},
	{domain.ErrTitleTooLong, "title"},
	{domain.ErrInvalidDueDate, "due_date"},
	{domain.ErrInvalidTaskStatus, "status"},
	{domain.ErrInvalidUserRole, "role"},
	{domain.ErrInvalidBoardFilter, "filter"},
	{domain.ErrNameRequired, "name"},
	{domain.ErrPasswordRequired, "password"},
	{domain.ErrPasswordTooLong, "password"},
	{domain.ErrAssigneeNotFound, "assignee_id"},
	{domain.ErrMeetingContentEmpty, "transcript"},
}

// FromDomainError maps a service error to a status code and envelope.
// Unknown errors are logged and reported as a generic 500.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		for _, v := range validationFields {
			if errors.Is(err, v.err) {
				ValidationError(w, v.field, v.err.Error())
				return
			}
		}
		BadRequest(w, err.Error())

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidTokenFormat),
		errors.Is(err, domain.ErrSessionNotFound):
		Unauthorized(w, "invalid or expired session")

	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, "insufficient role for this operation")

	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMeetingNotFound),
		errors.Is(err, domain.ErrRecordingNotFound),
		errors.Is(err, domain.ErrNotFound):
		NotFound(w, err.Error())

	case errors.Is(err, domain.ErrInvalidTransition):
		Error(w, "INVALID_TRANSITION", err.Error(), http.StatusConflict)

	case errors.Is(err, domain.ErrUserExists):
		Conflict(w, err.Error())

	case errors.Is(err, domain.ErrExtractionFailed):
		slog.WarnContext(r.Context(), "meeting extraction failed",
			"path", r.URL.Path,
			"error", err)
		Error(w, "EXTRACTION_FAILED", "meeting analysis failed, please try again", http.StatusBadGateway)

	default:
		slog.ErrorContext(r.Context(), "unhandled error",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err)
		InternalError(w)
	}
}
