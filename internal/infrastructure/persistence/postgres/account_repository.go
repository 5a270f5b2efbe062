package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rezkam/taskflow/internal/domain"
)

// === Account Repository Implementation ===
// Implements application/auth.AccountRepository

// CreateUser stores a new user.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	id, ok := parseUUID(u.ID)
	if !ok {
		return fmt.Errorf("%w: user id %q", domain.ErrInvalidInput, u.ID)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, u.Name, u.Title, string(u.Role), u.AvatarURL, u.PasswordHash, timeToPgtype(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "users_name_key") {
			return fmt.Errorf("%w: %s", domain.ErrUserExists, u.Name)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	userID, ok := parseUUID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return s.findUser(ctx, id, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// FindUserByName retrieves a user by login name.
func (s *Store) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	return s.findUser(ctx, name, `SELECT `+userColumns+` FROM users WHERE name = $1`, name)
}

func (s *Store) findUser(ctx context.Context, label, query string, args ...any) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, label)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(n), nil
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	userID, ok := parseUUID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	return s.findUser(ctx, id, `UPDATE users SET role = $2 WHERE id = $1 RETURNING `+userColumns, userID, string(role))
}

// === Session Operations ===

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	id, ok := parseUUID(session.ID)
	if !ok {
		return fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, session.ID)
	}
	userID, ok := parseUUID(session.UserID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, session.UserID)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, session.ShortToken, session.SecretHash, timeToPgtype(session.CreatedAt),
		timePtrToPgtype(session.LastUsedAt), timePtrToPgtype(session.ExpiresAt),
	)
	if err != nil {
		if isForeignKeyViolation(err, "user_id") {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, session.UserID)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindSessionByShortToken retrieves a session by the lookup part of its token.
func (s *Store) FindSessionByShortToken(ctx context.Context, shortToken string) (*domain.Session, error) {
	session, err := scanSession(s.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE short_token = $1`, shortToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// UpdateSessionLastUsed updates the last used timestamp of a session.
// Only moves the timestamp forward; an older timestamp is an idempotent success.
// Returns ErrSessionNotFound if the session doesn't exist.
func (s *Store) UpdateSessionLastUsed(ctx context.Context, sessionID string, timestamp time.Time) error {
	id, ok := parseUUID(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE sessions SET last_used_at = $2
		WHERE id = $1 AND (last_used_at IS NULL OR last_used_at < $2)`,
		id, timeToPgtype(timestamp))
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Either the session doesn't exist OR the timestamp wasn't later.
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return nil
}

// DeleteSession revokes a session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	id, ok := parseUUID(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return nil
}
