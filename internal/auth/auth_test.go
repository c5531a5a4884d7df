package auth

import (
	"context"
	"testing"

	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewMemoryStore(), logger.NewNopLogger())
}

func TestRegisterAndLoginScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	assert.ErrorIs(t, s.Register(ctx, "alice", "pw2"), UserExistsError)
	assert.ErrorIs(t, s.Login(ctx, "alice", "wrong"), IncorrectPasswordError)

	_, ok, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "failed login must not create a session")

	require.NoError(t, s.Login(ctx, "alice", "pw1"))
	user, ok, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", user)
}

func TestRegisterKeepsFirstPassword(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	require.ErrorIs(t, s.Register(ctx, "alice", "pw2"), UserExistsError)
	assert.ErrorIs(t, s.Login(ctx, "alice", "pw2"), IncorrectPasswordError)
	assert.NoError(t, s.Login(ctx, "alice", "pw1"))
}

func TestLoginUnknownUser(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Login(context.Background(), "bob", "pw"), UserNotFoundError)
}

func TestEmptyCredentials(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.ErrorIs(t, s.Register(ctx, "", "pw"), EmptyCredentialsError)
	assert.ErrorIs(t, s.Register(ctx, "   ", "pw"), EmptyCredentialsError)
	assert.ErrorIs(t, s.Register(ctx, "alice", ""), EmptyCredentialsError)
	assert.ErrorIs(t, s.Login(ctx, "", ""), EmptyCredentialsError)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	require.NoError(t, s.Login(ctx, "alice", "pw1"))
	require.NoError(t, s.Logout(ctx))

	_, ok, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Logout(ctx), "logout without a session is a no-op")
}

func TestSessionSwitchesUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	require.NoError(t, s.Register(ctx, "bob", "pw2"))
	require.NoError(t, s.Login(ctx, "alice", "pw1"))
	require.NoError(t, s.Login(ctx, "bob", "pw2"))

	user, _, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
}
