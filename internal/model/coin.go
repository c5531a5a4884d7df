package model

import "time"

// CoinQuote is one row of the market list. Numeric fields are nil when the
// provider sent null.
type CoinQuote struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	MarketCap                *float64 `json:"market_cap"`
	TotalVolume              *float64 `json:"total_volume"`
}

func (c CoinQuote) GetUID() string {
	return c.ID
}

type CoinDetail struct {
	ID                string
	Symbol            string
	Name              string
	Image             string
	Currency          string
	CurrentPrice      *float64
	MarketCap         *float64
	TotalVolume       *float64
	CirculatingSupply *float64
	TotalSupply       *float64
	Change1h          *float64
	Change24h         *float64
	Change7d          *float64
	Change30d         *float64
}

type PricePoint struct {
	Ts    time.Time `json:"ts"`
	Price float64   `json:"price"`
}
