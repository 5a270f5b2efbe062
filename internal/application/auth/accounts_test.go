package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rezkam/taskflow/internal/domain"
)

func newTestAccounts(t *testing.T) (*Accounts, *Authenticator, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	a := newTestAuthenticator(t, repo, Config{OperationTimeout: realisticOperationTimeout})
	accounts, err := NewAccounts(repo, a, bcrypt.MinCost)
	require.NoError(t, err)
	return accounts, a, repo
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	accounts, a, _ := newTestAccounts(t)
	ctx := context.Background()

	first, err := accounts.Register(ctx, RegisterInput{Name: "Zhang Wei", Password: "pw", Title: "Product Manager"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleAdmin, first.User.Role)
	assert.Equal(t, "Product Manager", first.User.Title)
	assert.Equal(t, domain.AvatarURLFor("Zhang Wei"), first.User.AvatarURL)
	assert.NotEqual(t, "pw", first.User.PasswordHash)

	second, err := accounts.Register(ctx, RegisterInput{Name: "Li Na", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleUser, second.User.Role)
	assert.Equal(t, DefaultJobTitle, second.User.Title)

	principal, err := a.ValidateToken(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, second.User.ID, principal.User.ID)
}

func TestRegister_Validation(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, RegisterInput{Name: "  ", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = accounts.Register(ctx, RegisterInput{Name: "a", Password: ""})
	assert.ErrorIs(t, err, domain.ErrPasswordRequired)

	_, err = accounts.Register(ctx, RegisterInput{Name: "a", Password: strings.Repeat("x", 73)})
	assert.ErrorIs(t, err, domain.ErrPasswordTooLong)

	_, err = accounts.Register(ctx, RegisterInput{Name: "a", Password: "pw"})
	require.NoError(t, err)
	_, err = accounts.Register(ctx, RegisterInput{Name: "a", Password: "pw2"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLogin(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, RegisterInput{Name: "mei", Password: "secret"})
	require.NoError(t, err)

	res, err := accounts.Login(ctx, "mei", "secret")
	require.NoError(t, err)
	assert.Equal(t, "mei", res.User.Name)
	assert.NotEmpty(t, res.Token)

	_, err = accounts.Login(ctx, "mei", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = accounts.Login(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogout_RevokesSession(t *testing.T) {
	accounts, a, _ := newTestAccounts(t)
	ctx := context.Background()

	res, err := accounts.Register(ctx, RegisterInput{Name: "mei", Password: "secret"})
	require.NoError(t, err)

	principal, err := a.ValidateToken(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, accounts.Logout(ctx, principal))

	_, err = a.ValidateToken(ctx, res.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSetRole(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	admin, err := accounts.Register(ctx, RegisterInput{Name: "boss", Password: "pw"})
	require.NoError(t, err)
	member, err := accounts.Register(ctx, RegisterInput{Name: "dev", Password: "pw"})
	require.NoError(t, err)

	_, err = accounts.SetRole(ctx, member.User, admin.User.ID, domain.UserRoleUser)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = accounts.SetRole(ctx, admin.User, member.User.ID, "ROOT")
	assert.ErrorIs(t, err, domain.ErrInvalidUserRole)

	_, err = accounts.SetRole(ctx, admin.User, "missing", domain.UserRoleOperator)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	updated, err := accounts.SetRole(ctx, admin.User, member.User.ID, domain.UserRoleOperator)
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleOperator, updated.Role)
}
