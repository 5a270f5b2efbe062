package auth

import (
	"context"
	"time"

	"github.com/rezkam/taskflow/internal/domain"
)

// Repository defines storage operations for session authentication.
type Repository interface {
	// FindSessionByShortToken retrieves a session by the lookup part of its token.
	// Returns domain.ErrSessionNotFound if no session matches.
	FindSessionByShortToken(ctx context.Context, shortToken string) (*domain.Session, error)

	// UpdateSessionLastUsed updates the last used timestamp of a session.
	UpdateSessionLastUsed(ctx context.Context, sessionID string, timestamp time.Time) error

	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session *domain.Session) error

	// DeleteSession revokes a session.
	// Returns domain.ErrSessionNotFound if it doesn't exist.
	DeleteSession(ctx context.Context, sessionID string) error

	// FindUserByID retrieves a user.
	// Returns domain.ErrUserNotFound if the user doesn't exist.
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
}

// AccountRepository adds user management to Repository.
type AccountRepository interface {
	Repository

	// CreateUser stores a new user.
	// Returns domain.ErrUserExists if the name is taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// FindUserByName retrieves a user by login name.
	// Returns domain.ErrUserNotFound if the user doesn't exist.
	FindUserByName(ctx context.Context, name string) (*domain.User, error)

	// ListUsers returns all users ordered by creation time.
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int, error)

	// UpdateUserRole changes a user's role and returns the updated user.
	// Returns domain.ErrUserNotFound if the user doesn't exist.
	UpdateUserRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error)

	// AtomicAccounts runs fn in a transaction.
	AtomicAccounts(ctx context.Context, fn func(repo AccountRepository) error) error
}
