package portfolio

import (
	"math"
	"testing"

	"github.com/STTM-NSU/crypto-dashboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOrMergeAppends(t *testing.T) {
	h, merged, err := AddOrMerge(nil, "btc", "BTC", 1, 100)
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Equal(t, []model.Holding{{CoinID: "btc", CoinSymbol: "BTC", Amount: 1, PurchasePrice: 100}}, h)

	h, merged, err = AddOrMerge(h, "eth", "ETH", 2, 50)
	require.NoError(t, err)
	assert.False(t, merged)
	require.Len(t, h, 2)
	assert.Equal(t, "eth", h[1].CoinID)
}

func TestAddOrMergeWeightedAverage(t *testing.T) {
	h, _, err := AddOrMerge(nil, "btc", "BTC", 1, 100)
	require.NoError(t, err)
	h, merged, err := AddOrMerge(h, "btc", "BTC", 1, 300)
	require.NoError(t, err)

	assert.True(t, merged)
	require.Len(t, h, 1)
	assert.Equal(t, 2.0, h[0].Amount)
	assert.Equal(t, 200.0, h[0].PurchasePrice)
}

func TestAddOrMergeIsCommutative(t *testing.T) {
	buys := []struct{ amount, price float64 }{
		{0.5, 30000}, {1.25, 42000.5}, {3, 0.0001}, {1e-6, 12},
	}
	for _, a := range buys {
		for _, b := range buys {
			ab, _, err := AddOrMerge(nil, "c", "C", a.amount, a.price)
			require.NoError(t, err)
			ab, _, err = AddOrMerge(ab, "c", "C", b.amount, b.price)
			require.NoError(t, err)

			ba, _, err := AddOrMerge(nil, "c", "C", b.amount, b.price)
			require.NoError(t, err)
			ba, _, err = AddOrMerge(ba, "c", "C", a.amount, a.price)
			require.NoError(t, err)

			wantAmount := a.amount + b.amount
			wantPrice := (a.amount*a.price + b.amount*b.price) / wantAmount
			assert.InDelta(t, wantAmount, ab[0].Amount, 1e-12)
			assert.InDelta(t, wantPrice, ab[0].PurchasePrice, 1e-9*wantPrice)
			assert.Equal(t, ab[0].Amount, ba[0].Amount)
			assert.InDelta(t, ab[0].PurchasePrice, ba[0].PurchasePrice, 1e-9*wantPrice)
		}
	}
}

func TestAddOrMergeDoesNotMutateInput(t *testing.T) {
	in := []model.Holding{{CoinID: "btc", CoinSymbol: "BTC", Amount: 1, PurchasePrice: 100}}
	_, _, err := AddOrMerge(in, "btc", "BTC", 1, 300)
	require.NoError(t, err)
	assert.Equal(t, 1.0, in[0].Amount)
	assert.Equal(t, 100.0, in[0].PurchasePrice)
}

func TestAddOrMergeInvalidInput(t *testing.T) {
	in := []model.Holding{{CoinID: "btc", Amount: 1, PurchasePrice: 100}}
	cases := []struct {
		name          string
		coinID        string
		amount, price float64
	}{
		{"zero amount", "btc", 0, 1},
		{"negative amount", "btc", -1, 1},
		{"zero price", "btc", 1, 0},
		{"negative price", "btc", 1, -5},
		{"nan amount", "btc", math.NaN(), 1},
		{"inf price", "btc", 1, math.Inf(1)},
		{"empty coin", "", 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, merged, err := AddOrMerge(in, tc.coinID, "BTC", tc.amount, tc.price)
			assert.ErrorIs(t, err, InvalidInputError)
			assert.False(t, merged)
			assert.Equal(t, in, out)
		})
	}
}

func TestRemoveAt(t *testing.T) {
	in := []model.Holding{{CoinID: "a"}, {CoinID: "b"}, {CoinID: "c"}}

	out, err := RemoveAt(in, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.Holding{{CoinID: "a"}, {CoinID: "c"}}, out)
	assert.Len(t, in, 3, "input must be left untouched")
	assert.Equal(t, "b", in[1].CoinID)
}

func TestRemoveOnlyHolding(t *testing.T) {
	out, err := RemoveAt([]model.Holding{{CoinID: "a"}}, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRemoveAtOutOfRange(t *testing.T) {
	in := []model.Holding{{CoinID: "a"}}
	for _, idx := range []int{-1, 1, 5} {
		out, err := RemoveAt(in, idx)
		assert.ErrorIs(t, err, IndexOutOfRangeError)
		assert.Equal(t, in, out)
	}

	_, err := RemoveAt(nil, 0)
	assert.ErrorIs(t, err, IndexOutOfRangeError)
}
