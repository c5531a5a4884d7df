package portfolio

import "github.com/STTM-NSU/crypto-dashboard/internal/model"

// PriceLookup returns the live price of a coin; ok is false when the coin is
// not in the fetched market list.
type PriceLookup func(coinID string) (price float64, ok bool)

type HoldingValuation struct {
	model.Holding
	Index         int     `json:"index"`
	PriceKnown    bool    `json:"priceKnown"`
	CurrentPrice  float64 `json:"currentPrice"`
	CurrentValue  float64 `json:"currentValue"`
	Invested      float64 `json:"invested"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profitPercent"`
}

type Totals struct {
	TotalValue         float64 `json:"totalValue"`
	TotalInvested      float64 `json:"totalInvested"`
	TotalChangePercent float64 `json:"totalChangePercent"`
	HoldingCount       int     `json:"holdingCount"`
}

type Valuation struct {
	Holdings []HoldingValuation `json:"holdings"`
	Totals   Totals             `json:"totals"`
}

// Value prices every holding and sums the totals. Holdings without a live
// price are reported with a zero current value and left out of the totals,
// except for the holding count. Percentages over a zero base are 0.
func Value(holdings []model.Holding, priceOf PriceLookup) Valuation {
	v := Valuation{
		Holdings: make([]HoldingValuation, 0, len(holdings)),
		Totals:   Totals{HoldingCount: len(holdings)},
	}

	for i, h := range holdings {
		var (
			price float64
			ok    bool
		)
		if priceOf != nil {
			price, ok = priceOf(h.CoinID)
		}
		if !ok {
			price = 0
		}

		hv := HoldingValuation{
			Holding:       h,
			Index:         i,
			PriceKnown:    ok,
			CurrentPrice:  price,
			CurrentValue:  h.Amount * price,
			Invested:      h.Invested(),
			ProfitPercent: percentChange(price, h.PurchasePrice),
		}
		hv.Profit = hv.CurrentValue - hv.Invested
		v.Holdings = append(v.Holdings, hv)

		if ok {
			v.Totals.TotalValue += hv.CurrentValue
			v.Totals.TotalInvested += hv.Invested
		}
	}

	v.Totals.TotalChangePercent = percentChange(v.Totals.TotalValue, v.Totals.TotalInvested)
	return v
}

func percentChange(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base * 100
}
