package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessions(t *testing.T, env *testEnv, key []byte, ttl time.Duration) SessionService {
	t.Helper()
	s, err := NewSessionService(env.store.DB, env.store.Repos, key, ttl, logging.Discard())
	require.NoError(t, err)
	return s
}

func TestSession_IssueResumeClear(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()
	s := newSessions(t, env, env.key, time.Hour)

	u, err := s.Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.Issue(ctx, alice))

	u, err = s.Resume(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, alice.ID, u.ID)

	last, err := s.LastUsername(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", last)

	require.NoError(t, s.Clear(ctx))
	u, err = s.Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	last, err = s.LastUsername(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", last)
}

func TestSession_ZeroTTLDisablesPersistence(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()
	s := newSessions(t, env, env.key, 0)

	require.NoError(t, s.Issue(ctx, alice))

	raw, err := env.store.Repos.Metadata(env.store.DB).Get(ctx, common.MetaSessionToken)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSession_TokenFromOtherKeyIsDiscarded(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	ctx := context.Background()

	other := make([]byte, 32)
	require.NoError(t, newSessions(t, env, other, time.Hour).Issue(ctx, alice))

	u, err := newSessions(t, env, env.key, time.Hour).Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	raw, err := env.store.Repos.Metadata(env.store.DB).Get(ctx, common.MetaSessionToken)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestSession_GarbageTokenIsDiscarded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.Repos.Metadata(env.store.DB).Set(ctx, common.MetaSessionToken, []byte("not-a-jwt")))

	u, err := newSessions(t, env, env.key, time.Hour).Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}
