package domain

import "errors"

// Domain errors returned by the engine, the services and repository implementations.

var (
	// ErrInvalidTransition indicates a status edit on a task in a terminal status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput is the parent of all input validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClockUnavailable indicates the network time source could not be used.
	// Never surfaced to callers; the clock falls back to local time.
	ErrClockUnavailable = errors.New("network clock unavailable")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	ErrTaskNotFound      = errors.New("task not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMeetingNotFound   = errors.New("meeting not found")
	ErrRecordingNotFound = errors.New("recording not found")
	ErrSessionNotFound   = errors.New("session not found")

	// ErrUnauthorized indicates missing, invalid or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated user lacks the role for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUserExists indicates a user with the same name is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrExtractionFailed indicates the AI meeting analysis could not be completed.
	ErrExtractionFailed = errors.New("meeting extraction failed")

	// ErrInvalidTokenFormat indicates a session token that does not follow the token layout.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
)

// Validation errors. Each wraps ErrInvalidInput so callers can match either.
var (
	ErrTitleRequired       = validationError("title is required")
	ErrTitleTooLong        = validationError("title must be 255 characters or less")
	ErrInvalidDueDate      = validationError("due date must be YYYY-MM-DD or RFC 3339")
	ErrInvalidTaskStatus   = validationError("invalid task status")
	ErrInvalidUserRole     = validationError("invalid user role")
	ErrInvalidBoardFilter  = validationError("invalid board filter")
	ErrNameRequired        = validationError("name is required")
	ErrPasswordRequired    = validationError("password is required")
	ErrPasswordTooLong     = validationError("password must be 72 bytes or less")
	ErrAssigneeNotFound    = validationError("assignee does not exist")
	ErrMeetingContentEmpty = validationError("meeting needs a transcript or an audio recording")
)

type inputError struct {
	msg string
}

func validationError(msg string) error {
	return &inputError{msg: msg}
}

func (e *inputError) Error() string {
	return e.msg
}

func (e *inputError) Unwrap() error {
	return ErrInvalidInput
}
