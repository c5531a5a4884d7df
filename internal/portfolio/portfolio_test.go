package portfolio

import (
	"context"
	"testing"

	"github.com/STTM-NSU/crypto-dashboard/internal/auth"
	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/model"
	"github.com/STTM-NSU/crypto-dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) (*auth.Store, *Store) {
	t.Helper()
	kv := storage.NewMemoryStore()
	l := logger.NewNopLogger()
	users := auth.NewStore(kv, l)
	require.NoError(t, users.Register(context.Background(), "alice", "pw1"))
	require.NoError(t, users.Register(context.Background(), "bob", "pw2"))
	return users, NewStore(kv, users, l)
}

func TestAddRequiresSession(t *testing.T) {
	ctx := context.Background()
	_, s := newTestStores(t)

	_, _, err := s.Add(ctx, "btc", "BTC", 1, 100)
	assert.ErrorIs(t, err, NotLoggedInError)

	_, err = s.Remove(ctx, 0)
	assert.ErrorIs(t, err, NotLoggedInError)

	assert.ErrorIs(t, s.Save(ctx, "alice", []model.Holding{{CoinID: "x"}}), NotLoggedInError)

	h, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestAddMergeScenario(t *testing.T) {
	ctx := context.Background()
	users, s := newTestStores(t)
	require.NoError(t, users.Login(ctx, "alice", "pw1"))

	_, merged, err := s.Add(ctx, "btc", "BTC", 1, 100)
	require.NoError(t, err)
	assert.False(t, merged)

	h, merged, err := s.Add(ctx, "btc", "BTC", 1, 300)
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Equal(t, []model.Holding{{CoinID: "btc", CoinSymbol: "BTC", Amount: 2, PurchasePrice: 200}}, h)

	loaded, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, h, loaded)
}

func TestAddInvalidInputLeavesPortfolio(t *testing.T) {
	ctx := context.Background()
	users, s := newTestStores(t)
	require.NoError(t, users.Login(ctx, "alice", "pw1"))

	_, _, err := s.Add(ctx, "btc", "BTC", 1, 100)
	require.NoError(t, err)

	_, _, err = s.Add(ctx, "btc", "BTC", -1, 100)
	assert.ErrorIs(t, err, InvalidInputError)

	_, h, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, h[0].Amount)
}

func TestPortfoliosAreScopedByUser(t *testing.T) {
	ctx := context.Background()
	users, s := newTestStores(t)

	require.NoError(t, users.Login(ctx, "alice", "pw1"))
	_, _, err := s.Add(ctx, "btc", "BTC", 1, 100)
	require.NoError(t, err)

	require.NoError(t, users.Login(ctx, "bob", "pw2"))
	user, h, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
	assert.Empty(t, h)

	_, _, err = s.Add(ctx, "eth", "ETH", 3, 10)
	require.NoError(t, err)

	aliceHoldings, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceHoldings, 1)
	assert.Equal(t, "btc", aliceHoldings[0].CoinID)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	users, s := newTestStores(t)
	require.NoError(t, users.Login(ctx, "alice", "pw1"))

	_, _, err := s.Add(ctx, "btc", "BTC", 1, 100)
	require.NoError(t, err)

	_, err = s.Remove(ctx, 3)
	assert.ErrorIs(t, err, IndexOutOfRangeError)

	h, err := s.Remove(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, h)

	loaded, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestPortfolioSurvivesLogout(t *testing.T) {
	ctx := context.Background()
	users, s := newTestStores(t)
	require.NoError(t, users.Login(ctx, "alice", "pw1"))
	_, _, err := s.Add(ctx, "btc", "BTC", 1, 100)
	require.NoError(t, err)

	require.NoError(t, users.Logout(ctx))
	_, _, err = s.Current(ctx)
	assert.ErrorIs(t, err, NotLoggedInError)

	require.NoError(t, users.Login(ctx, "alice", "pw1"))
	_, h, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Len(t, h, 1)
}
