package model

// Holding is one coin position of a user's simulated portfolio. PurchasePrice
// is the quantity-weighted average of every buy merged into the holding.
type Holding struct {
	CoinID        string  `json:"coinId"`
	CoinSymbol    string  `json:"coinSymbol"`
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchasePrice"`
}

func (h Holding) GetUID() string {
	return h.CoinID
}

// Invested is the cost basis of the whole holding.
func (h Holding) Invested() float64 {
	return h.Amount * h.PurchasePrice
}
