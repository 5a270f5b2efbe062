package auth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/domain"
)

const (
	realisticDBLatency        = 50 * time.Millisecond
	slowDBLatency             = 2 * time.Second
	realisticOperationTimeout = 500 * time.Millisecond
	normalShutdownTimeout     = 10 * time.Second
	shortShutdownTimeout      = 300 * time.Millisecond
)

// mockRepository is an in-memory AccountRepository with configurable latency.
type mockRepository struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	sessions map[string]*domain.Session // by short token

	updateLastUsedCalls []updateLastUsedCall
	updateLastUsedDelay time.Duration
	cancelledCount      atomic.Int64
}

type updateLastUsedCall struct {
	SessionID string
	Timestamp time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    map[string]*domain.User{},
		sessions: map[string]*domain.Session{},
	}
}

func (m *mockRepository) FindSessionByShortToken(ctx context.Context, shortToken string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[shortToken]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepository) UpdateSessionLastUsed(ctx context.Context, sessionID string, timestamp time.Time) error {
	if m.updateLastUsedDelay > 0 {
		select {
		case <-time.After(m.updateLastUsedDelay):
		case <-ctx.Done():
			m.cancelledCount.Add(1)
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateLastUsedCalls = append(m.updateLastUsedCalls, updateLastUsedCall{SessionID: sessionID, Timestamp: timestamp})
	return nil
}

func (m *mockRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ShortToken] = session
	return nil
}

func (m *mockRepository) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, s := range m.sessions {
		if s.ID == sessionID {
			delete(m.sessions, k)
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

func (m *mockRepository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepository) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == user.Name {
			return domain.ErrUserExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockRepository) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) CountUsers(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *mockRepository) UpdateUserRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return u, nil
}

func (m *mockRepository) AtomicAccounts(ctx context.Context, fn func(repo AccountRepository) error) error {
	return fn(m)
}

func (m *mockRepository) getUpdateLastUsedCalls() []updateLastUsedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]updateLastUsedCall, len(m.updateLastUsedCalls))
	copy(out, m.updateLastUsedCalls)
	return out
}

func newTestAuthenticator(t *testing.T, repo *mockRepository, config Config) *Authenticator {
	t.Helper()
	a := NewAuthenticator(context.Background(), repo, config)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), normalShutdownTimeout)
		defer cancel()
		_ = a.Shutdown(ctx)
	})
	return a
}

func TestAuthenticator_IssueAndValidate(t *testing.T) {
	repo := newMockRepository()
	repo.users["u1"] = &domain.User{ID: "u1", Name: "mei", Role: domain.UserRoleUser}
	a := newTestAuthenticator(t, repo, Config{OperationTimeout: realisticOperationTimeout, SessionTTL: time.Hour})

	token, session, err := a.IssueSession(context.Background(), nil, "u1")
	require.NoError(t, err)
	require.NotNil(t, session.ExpiresAt)
	assert.NotContains(t, session.SecretHash, token)

	principal, err := a.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.User.ID)
	assert.Equal(t, session.ID, principal.Session.ID)
}

func TestAuthenticator_ValidateToken_Rejections(t *testing.T) {
	repo := newMockRepository()
	repo.users["u1"] = &domain.User{ID: "u1", Name: "mei"}
	a := newTestAuthenticator(t, repo, Config{OperationTimeout: realisticOperationTimeout})
	ctx := context.Background()

	token, session, err := a.IssueSession(ctx, nil, "u1")
	require.NoError(t, err)

	t.Run("malformed", func(t *testing.T) {
		_, err := a.ValidateToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := a.ValidateToken(ctx, fmt.Sprintf("tfs-v1-%s-wrongsecret", session.ShortToken))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown short token", func(t *testing.T) {
		_, err := a.ValidateToken(ctx, "tfs-v1-000000000000-secret")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		repo.mu.Lock()
		repo.sessions[session.ShortToken].ExpiresAt = &past
		repo.mu.Unlock()

		_, err := a.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthenticator_ValidateToken_DeletedUser(t *testing.T) {
	repo := newMockRepository()
	a := newTestAuthenticator(t, repo, Config{})

	token, _, err := a.IssueSession(context.Background(), nil, "ghost")
	require.NoError(t, err)

	_, err = a.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticator_RecordsLastUsed(t *testing.T) {
	repo := newMockRepository()
	repo.users["u1"] = &domain.User{ID: "u1"}
	a := NewAuthenticator(context.Background(), repo, Config{OperationTimeout: realisticOperationTimeout})

	token, session, err := a.IssueSession(context.Background(), nil, "u1")
	require.NoError(t, err)
	_, err = a.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), normalShutdownTimeout)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))

	calls := repo.getUpdateLastUsedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, session.ID, calls[0].SessionID)
}

func TestAuthenticator_Shutdown_DrainsQueue(t *testing.T) {
	t.Parallel()

	repo := newMockRepository()
	repo.updateLastUsedDelay = realisticDBLatency
	a := NewAuthenticator(context.Background(), repo, Config{
		UpdateQueueSize:  100,
		OperationTimeout: realisticOperationTimeout,
	})

	const numUpdates = 5
	for i := range numUpdates {
		a.lastUsedUpdates <- lastUsedUpdate{sessionID: fmt.Sprintf("s-%d", i), timestamp: time.Now().UTC()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), normalShutdownTimeout)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))

	assert.Len(t, repo.getUpdateLastUsedCalls(), numUpdates)
}

func TestAuthenticator_Shutdown_Timeout(t *testing.T) {
	t.Parallel()

	repo := newMockRepository()
	repo.updateLastUsedDelay = slowDBLatency
	a := NewAuthenticator(context.Background(), repo, Config{UpdateQueueSize: 100})

	for i := range 10 {
		a.lastUsedUpdates <- lastUsedUpdate{sessionID: fmt.Sprintf("slow-%d", i), timestamp: time.Now().UTC()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shortShutdownTimeout)
	defer cancel()

	err := a.Shutdown(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAuthenticator_Shutdown_Idempotent(t *testing.T) {
	repo := newMockRepository()
	a := NewAuthenticator(context.Background(), repo, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), normalShutdownTimeout)
	defer cancel()

	require.NoError(t, a.Shutdown(ctx))
	require.NoError(t, a.Shutdown(ctx))
}
