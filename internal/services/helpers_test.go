package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/config"
	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/models"
	"github.com/dmitrijs2005/todokeeper/internal/storage"
	"github.com/dmitrijs2005/todokeeper/internal/unlock"
	"github.com/dmitrijs2005/todokeeper/internal/validation"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  *storage.Store
	key    []byte
	cipher *cryptox.FieldCipher
	auth   AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.StorageDriver = config.DriverMemory

	st, err := storage.Open(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := cryptox.GenerateKey()
	require.NoError(t, err)
	c, err := cryptox.NewFieldCipher(key)
	require.NoError(t, err)

	return &testEnv{
		store:  st,
		key:    key,
		cipher: c,
		auth:   NewAuthService(st.DB, st.Repos, c, logging.Discard()),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), validation.RegisterInput{
		Name:            "Test " + username,
		Username:        username,
		Email:           username + "@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) tasks(gate unlock.Gate) TaskService {
	return NewTaskService(e.store.DB, e.store.Repos, e.cipher, gate, logging.Discard())
}

// fakeGate records reasons and returns err.
type fakeGate struct {
	err     error
	reasons []string
}

func (g *fakeGate) Authorize(_ context.Context, reason string) error {
	g.reasons = append(g.reasons, reason)
	return g.err
}

var errDenied = errors.New("denied")
