package portfolio

import (
	"errors"
	"math"
	"slices"

	"github.com/STTM-NSU/crypto-dashboard/internal/model"
)

var (
	InvalidInputError    = errors.New("amount and purchase price must be positive numbers")
	IndexOutOfRangeError = errors.New("holding index out of range")
)

// AddOrMerge returns a new holdings slice with the buy applied. A coin that is
// already held is merged: amounts add up and the purchase price becomes the
// quantity-weighted average of both buys. The input slice is not modified.
// The returned bool reports whether an existing holding was merged.
func AddOrMerge(holdings []model.Holding, coinID, coinSymbol string, amount, purchasePrice float64) ([]model.Holding, bool, error) {
	if coinID == "" || !positive(amount) || !positive(purchasePrice) {
		return holdings, false, InvalidInputError
	}

	out := slices.Clone(holdings)
	idx := slices.IndexFunc(out, func(h model.Holding) bool { return h.CoinID == coinID })
	if idx < 0 {
		return append(out, model.Holding{
			CoinID:        coinID,
			CoinSymbol:    coinSymbol,
			Amount:        amount,
			PurchasePrice: purchasePrice,
		}), false, nil
	}

	existing := out[idx]
	totalAmount := existing.Amount + amount
	out[idx] = model.Holding{
		CoinID:        coinID,
		CoinSymbol:    coinSymbol,
		Amount:        totalAmount,
		PurchasePrice: (existing.Amount*existing.PurchasePrice + amount*purchasePrice) / totalAmount,
	}
	return out, true, nil
}

// RemoveAt drops the holding at index, keeping the order of the rest.
func RemoveAt(holdings []model.Holding, index int) ([]model.Holding, error) {
	if index < 0 || index >= len(holdings) {
		return holdings, IndexOutOfRangeError
	}
	return slices.Delete(slices.Clone(holdings), index, index+1), nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
