package storage

import (
	"context"
	"os"
	"testing"

	"github.com/STTM-NSU/crypto-dashboard/internal/model"
	"github.com/STTM-NSU/crypto-dashboard/internal/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, NotFoundError)

	require.NoError(t, s.Set(ctx, CredentialKey("alice"), []byte("pw1")))
	got, err := s.Get(ctx, CredentialKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, "pw1", string(got))

	require.NoError(t, s.Set(ctx, CredentialKey("alice"), []byte("pw2")))
	got, err = s.Get(ctx, CredentialKey("alice"))
	require.NoError(t, err)
	assert.Equal(t, "pw2", string(got))

	require.NoError(t, s.Delete(ctx, CredentialKey("alice")))
	_, err = s.Get(ctx, CredentialKey("alice"))
	assert.ErrorIs(t, err, NotFoundError)

	require.NoError(t, s.Delete(ctx, CredentialKey("alice")), "deleting a missing record is not an error")

	assert.ErrorIs(t, s.Set(ctx, "", []byte("x")), InvalidKeyError)

	holdings := []model.Holding{{CoinID: "btc", CoinSymbol: "BTC", Amount: 2, PurchasePrice: 200}}
	require.NoError(t, SetJSON(ctx, s, PortfolioKey("alice"), holdings))
	var decoded []model.Holding
	ok, err := GetJSON(ctx, s, PortfolioKey("alice"), &decoded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, holdings, decoded)

	ok, err = GetJSON(ctx, s, PortfolioKey("bob"), &decoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	v := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	testStoreContract(t, s)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), CredentialKey("../../etc/passwd"), []byte("x")))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
}

func TestGetJSONCorruptRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, PortfolioKey("alice"), []byte("{not json")))

	var decoded []model.Holding
	_, err := GetJSON(ctx, s, PortfolioKey("alice"), &decoded)
	assert.Error(t, err)
}

// Runs against a real database when POSTGRES_HOST is set.
func TestPostgresStore(t *testing.T) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set")
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, postgres.NewConfigFromEnv().Setup())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewPostgresStore(db)
	require.NoError(t, s.Migrate(ctx))
	_, err = db.ExecContext(ctx, "DELETE FROM kv_records")
	require.NoError(t, err)

	testStoreContract(t, s)
}
