package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rezkam/taskflow/internal/domain"
)

// CreateUser stores a new user.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Title, string(u.Role), u.AvatarURL, u.PasswordHash, timeToInt(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "users.name") {
			return fmt.Errorf("%w: %s", domain.ErrUserExists, u.Name)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, id, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindUserByName retrieves a user by login name.
func (s *Store) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	return s.findUser(ctx, name, `SELECT `+userColumns+` FROM users WHERE name = ?`, name)
}

func (s *Store) findUser(ctx context.Context, label, query string, args ...any) (*domain.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, label)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
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
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	res, err := s.q.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	if err := checkRowsAffected(res, domain.ErrUserNotFound, id); err != nil {
		return nil, err
	}
	return s.FindUserByID(ctx, id)
}

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.ShortToken, session.SecretHash, timeToInt(session.CreatedAt),
		timePtrToNull(session.LastUsedAt), timePtrToNull(session.ExpiresAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, session.UserID)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindSessionByShortToken retrieves a session by the lookup part of its token.
func (s *Store) FindSessionByShortToken(ctx context.Context, shortToken string) (*domain.Session, error) {
	session, err := scanSession(s.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE short_token = ?`, shortToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// UpdateSessionLastUsed moves a session's last used timestamp forward.
// An older timestamp is an idempotent success.
func (s *Store) UpdateSessionLastUsed(ctx context.Context, sessionID string, timestamp time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE sessions SET last_used_at = ?
		WHERE id = ? AND (last_used_at IS NULL OR last_used_at < ?)`,
		timeToInt(timestamp), sessionID, timeToInt(timestamp))
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	var exists bool
	if err := s.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = ?)`, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return nil
}

// DeleteSession revokes a session.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return checkRowsAffected(res, domain.ErrSessionNotFound, sessionID)
}
