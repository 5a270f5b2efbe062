package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rezkam/taskflow/internal/domain"
)

// DefaultJobTitle is given to users who register without one.
const DefaultJobTitle = "Team Member"

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Name     string
	Password string
	Title    string
}

// SessionResult is returned by Register and Login.
type SessionResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string // Plain session token, shown once
}

// Accounts manages registration, login and roles.
type Accounts struct {
	repo       AccountRepository
	auth       *Authenticator
	bcryptCost int

	// dummyHash is compared against when the user does not exist, so that
	// unknown names and wrong passwords take the same time.
	dummyHash []byte
}

// NewAccounts creates the account service. A zero bcryptCost selects bcrypt.DefaultCost.
func NewAccounts(repo AccountRepository, authenticator *Authenticator, bcryptCost int) (*Accounts, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("taskflow-dummy-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hashing: %w", err)
	}
	return &Accounts{
		repo:       repo,
		auth:       authenticator,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}, nil
}

func validatePassword(password string) error {
	if password == "" {
		return domain.ErrPasswordRequired
	}
	if len(password) > maxPasswordBytes {
		return domain.ErrPasswordTooLong
	}
	return nil
}

// Register creates an account and logs it in.
// The first account ever registered becomes ADMIN; every later one is USER.
func (s *Accounts) Register(ctx context.Context, input RegisterInput) (*SessionResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultJobTitle
	}

	user := &domain.User{
		ID:           id.String(),
		Name:         name,
		Title:        title,
		Role:         domain.UserRoleUser,
		AvatarURL:    domain.AvatarURLFor(name),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	var result SessionResult
	err = s.repo.AtomicAccounts(ctx, func(repo AccountRepository) error {
		count, err := repo.CountUsers(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			user.Role = domain.UserRoleAdmin
		}

		if err := repo.CreateUser(ctx, user); err != nil {
			return err
		}

		token, session, err := s.auth.IssueSession(ctx, repo, user.ID)
		if err != nil {
			return err
		}
		result = SessionResult{User: user, Session: session, Token: token}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"role", string(user.Role))

	return &result, nil
}

// Login verifies name and password and opens a session.
// Returns domain.ErrUnauthorized for an unknown name or a wrong password.
func (s *Accounts) Login(ctx context.Context, name, password string) (*SessionResult, error) {
	user, err := s.repo.FindUserByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, session, err := s.auth.IssueSession(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}

	return &SessionResult{User: user, Session: session, Token: token}, nil
}

// Logout revokes the caller's session.
func (s *Accounts) Logout(ctx context.Context, principal *Principal) error {
	return s.auth.Revoke(ctx, principal.Session.ID)
}

// ListUsers returns all registered users.
func (s *Accounts) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// SetRole changes the role of a user. Only admins may change roles.
func (s *Accounts) SetRole(ctx context.Context, actor *domain.User, userID string, role domain.UserRole) (*domain.User, error) {
	if !actor.CanManageUsers() {
		return nil, domain.ErrForbidden
	}
	if _, err := domain.NewUserRole(string(role)); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateUserRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user role changed",
		"user_id", updated.ID,
		"role", string(updated.Role),
		"changed_by", actor.ID)

	return updated, nil
}
