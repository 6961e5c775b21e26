package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/repositories/metadata"
	"github.com/dmitrijs2005/todokeeper/internal/repositories/tasks"
	"github.com/dmitrijs2005/todokeeper/internal/repositories/users"
	"github.com/dmitrijs2005/todokeeper/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_StoresEncryptedPassword(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "alice")

	require.NotZero(t, u.ID)
	assert.NotEqual(t, "secret1", u.Password)
	assert.NotEmpty(t, u.PasswordIV)

	stored, err := env.store.Repos.Users(env.store.DB).GetByID(context.Background(), u.ID)
	require.NoError(t, err)

	plain, err := env.cipher.DecryptString(cryptox.Sealed{Ciphertext: stored.Password, IV: stored.PasswordIV})
	require.NoError(t, err)
	assert.Equal(t, "secret1", plain)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username", "alice", "other@example.com"},
		{"same email", "bob", "alice@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, validation.RegisterInput{
				Name: "X", Username: tt.username, Email: tt.email,
				Password: "secret1", ConfirmPassword: "secret1",
			})
			assert.ErrorIs(t, err, ErrUserExists)
		})
	}
}

func TestRegister_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), validation.RegisterInput{
		Name: "A", Username: "al", Email: "bad", Password: "1", ConfirmPassword: "2",
	})

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()

	u, err := env.auth.Login(ctx, validation.LoginInput{Username: " alice ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	_, err = env.auth.Login(ctx, validation.LoginInput{Username: "alice", Password: "wrong!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, validation.LoginInput{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_KeyMismatchIsNotInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	otherKey, err := cryptox.GenerateKey()
	require.NoError(t, err)
	other, err := cryptox.NewFieldCipher(otherKey)
	require.NoError(t, err)

	svc := NewAuthService(env.store.DB, env.store.Repos, other, logging.Discard())
	_, err = svc.Login(context.Background(), validation.LoginInput{Username: "alice", Password: "secret1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, cryptox.ErrDecrypt)
}

func TestVerifyPassword(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()

	require.NoError(t, env.auth.VerifyPassword(ctx, alice.ID, "secret1"))
	assert.ErrorIs(t, env.auth.VerifyPassword(ctx, alice.ID, "nope"), ErrInvalidCredentials)
	assert.ErrorIs(t, env.auth.VerifyPassword(ctx, 999, "secret1"), ErrInvalidCredentials)
}

// --- fake repositories for error paths ---

type fakeUsersRepo struct {
	users.Repository
	getErr error
}

func (f *fakeUsersRepo) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, f.getErr
}

type fakeManager struct {
	users *fakeUsersRepo
}

func (m *fakeManager) Users(dbx.DBTX) users.Repository       { return m.users }
func (m *fakeManager) Tasks(dbx.DBTX) tasks.Repository       { return nil }
func (m *fakeManager) Metadata(dbx.DBTX) metadata.Repository { return nil }

func TestLogin_RepositoryError(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("boom")
	m := &fakeManager{users: &fakeUsersRepo{getErr: boom}}

	svc := NewAuthService(env.store.DB, m, env.cipher, logging.Discard())
	_, err := svc.Login(context.Background(), validation.LoginInput{Username: "alice", Password: "secret1"})

	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
