package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/infrastructure/keygen"
)

// Default configuration values.
const (
	DefaultOperationTimeout = 5 * time.Second
	DefaultUpdateQueueSize  = 1000
	DefaultSessionTTL       = 7 * 24 * time.Hour
)

// Config holds configuration for the Authenticator.
type Config struct {
	OperationTimeout time.Duration // Timeout for storage operations
	UpdateQueueSize  int           // Buffer size for last_used_at updates
	SessionTTL       time.Duration // Lifetime of new sessions; 0 = never expires
}

// Principal is the authenticated caller of a request.
type Principal struct {
	User    *domain.User
	Session *domain.Session
}

// lastUsedUpdate holds information for updating a session's last_used_at timestamp.
type lastUsedUpdate struct {
	sessionID string
	timestamp time.Time
}

// Authenticator issues and validates session tokens.
type Authenticator struct {
	repo             Repository
	appCtx           context.Context // Application context, cancelled on shutdown
	lastUsedUpdates  chan lastUsedUpdate
	shutdownChan     chan struct{}
	shutdownOnce     sync.Once
	wg               sync.WaitGroup
	operationTimeout time.Duration
	sessionTTL       time.Duration
}

// NewAuthenticator creates a new authenticator and starts the background worker
// for processing last_used_at updates.
// The ctx parameter should be an application-level context that gets cancelled on shutdown.
// Zero OperationTimeout means no timeout; negative gets the default.
// Negative SessionTTL gets the default.
func NewAuthenticator(ctx context.Context, repo Repository, config Config) *Authenticator {
	if config.OperationTimeout < 0 {
		config.OperationTimeout = DefaultOperationTimeout
	}
	if config.UpdateQueueSize <= 0 {
		config.UpdateQueueSize = DefaultUpdateQueueSize
	}
	if config.SessionTTL < 0 {
		config.SessionTTL = DefaultSessionTTL
	}

	a := &Authenticator{
		repo:             repo,
		appCtx:           ctx,
		lastUsedUpdates:  make(chan lastUsedUpdate, config.UpdateQueueSize),
		shutdownChan:     make(chan struct{}),
		operationTimeout: config.OperationTimeout,
		sessionTTL:       config.SessionTTL,
	}

	a.wg.Add(1)
	go a.processLastUsedUpdates()

	return a
}

// withTimeout derives an operation context. Zero timeout means none.
func (a *Authenticator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.operationTimeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.operationTimeout)
}

// processLastUsedUpdates drains the update queue until shutdown.
func (a *Authenticator) processLastUsedUpdates() {
	defer a.wg.Done()

	for {
		select {
		case update := <-a.lastUsedUpdates:
			ctx, cancel := a.withTimeout(a.appCtx)
			if err := a.repo.UpdateSessionLastUsed(ctx, update.sessionID, update.timestamp); err != nil {
				slog.WarnContext(ctx, "failed to update session last_used_at",
					slog.String("session_id", update.sessionID),
					slog.String("error", err.Error()))
			}
			cancel()

		case <-a.shutdownChan:
			// Drain remaining updates. appCtx is usually cancelled by now.
			for {
				select {
				case update := <-a.lastUsedUpdates:
					ctx, cancel := a.withTimeout(context.Background())
					_ = a.repo.UpdateSessionLastUsed(ctx, update.sessionID, update.timestamp)
					cancel()
				default:
					return
				}
			}
		}
	}
}

// Shutdown stops the background worker after it has flushed queued updates.
// It respects ctx's deadline and is safe to call more than once.
func (a *Authenticator) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.shutdownOnce.Do(func() {
		close(a.shutdownChan)

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			shutdownErr = fmt.Errorf("shutdown timeout: %w", ctx.Err())
		}
	})
	return shutdownErr
}

// ValidateToken resolves a session token to its principal.
// Returns domain.ErrUnauthorized if the token is malformed, unknown,
// expired, or belongs to a deleted user.
func (a *Authenticator) ValidateToken(ctx context.Context, token string) (*Principal, error) {
	parts, err := keygen.ParseSessionToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	opCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	session, err := a.repo.FindSessionByShortToken(opCtx, parts.ShortToken)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	provided := keygen.HashSecret(parts.LongSecret)
	if subtle.ConstantTimeCompare([]byte(session.SecretHash), []byte(provided)) != 1 {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now().UTC()
	if session.Expired(now) {
		return nil, domain.ErrUnauthorized
	}

	user, err := a.repo.FindUserByID(opCtx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}

	select {
	case a.lastUsedUpdates <- lastUsedUpdate{sessionID: session.ID, timestamp: now}:
	default:
		// Queue full; last_used_at is best effort.
		slog.WarnContext(ctx, "dropped last_used_at update due to full queue",
			slog.String("session_id", session.ID))
	}

	return &Principal{User: user, Session: session}, nil
}

// IssueSession creates a session for userID and returns the plain token.
// The token is only available here; storage keeps a hash.
func (a *Authenticator) IssueSession(ctx context.Context, repo Repository, userID string) (string, *domain.Session, error) {
	parts, err := keygen.GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         id.String(),
		UserID:     userID,
		ShortToken: parts.ShortToken,
		SecretHash: keygen.HashSecret(parts.LongSecret),
		CreatedAt:  now,
	}
	if a.sessionTTL > 0 {
		expires := now.Add(a.sessionTTL)
		session.ExpiresAt = &expires
	}

	if repo == nil {
		repo = a.repo
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return parts.FullToken, session, nil
}

// Revoke deletes a session.
func (a *Authenticator) Revoke(ctx context.Context, sessionID string) error {
	opCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.repo.DeleteSession(opCtx, sessionID)
}
