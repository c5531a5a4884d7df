package dashboard

import (
	"time"

	"github.com/STTM-NSU/crypto-dashboard/internal/format"
	"github.com/STTM-NSU/crypto-dashboard/internal/market"
	"github.com/STTM-NSU/crypto-dashboard/internal/model"
	"github.com/STTM-NSU/crypto-dashboard/internal/portfolio"
)

const (
	_notLoggedInMessage    = "You must be logged in to view your portfolio."
	_emptyPortfolioMessage = "Your portfolio is empty. Add some coins to get started!"
)

type NotificationType string

const (
	Success NotificationType = "success"
	Danger  NotificationType = "danger"
)

type Notification struct {
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

type SessionView struct {
	User     string `json:"user,omitempty"`
	LoggedIn bool   `json:"loggedIn"`
}

type CoinRow struct {
	Rank      int               `json:"rank"`
	ID        string            `json:"id"`
	Symbol    string            `json:"symbol"`
	Name      string            `json:"name"`
	Image     string            `json:"image"`
	Price     string            `json:"price"`
	Change24h format.Percentage `json:"change24h"`
	MarketCap string            `json:"marketCap"`
	Volume    string            `json:"volume"`
}

type MarketView struct {
	View      market.View `json:"view"`
	Coins     []CoinRow   `json:"coins"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty"`
	Loading   bool        `json:"loading"`
	Error     string      `json:"error,omitempty"`
}

type CoinDetailView struct {
	ID                string             `json:"id"`
	Symbol            string             `json:"symbol"`
	Name              string             `json:"name"`
	Image             string             `json:"image"`
	Price             string             `json:"price"`
	CurrentPrice      *float64           `json:"currentPrice"`
	MarketCap         string             `json:"marketCap"`
	Volume            string             `json:"volume"`
	CirculatingSupply string             `json:"circulatingSupply"`
	TotalSupply       string             `json:"totalSupply"`
	Change1h          format.Percentage  `json:"change1h"`
	Change24h         format.Percentage  `json:"change24h"`
	Change7d          format.Percentage  `json:"change7d"`
	Change30d         format.Percentage  `json:"change30d"`
	History           []model.PricePoint `json:"history"`
	HistoryError      string             `json:"historyError,omitempty"`
	ChartURL          string             `json:"chartUrl,omitempty"`
}

type HoldingView struct {
	Index          int     `json:"index"`
	CoinID         string  `json:"coinId"`
	Symbol         string  `json:"symbol"`
	Image          string  `json:"image"`
	Amount         float64 `json:"amount"`
	PurchasePrice  string  `json:"purchasePrice"`
	CurrentPrice   string  `json:"currentPrice"`
	CurrentValue   string  `json:"currentValue"`
	Profit         string  `json:"profit"`
	ProfitPercent  string  `json:"profitPercent"`
	ProfitPositive bool    `json:"profitPositive"`
	PriceKnown     bool    `json:"priceKnown"`
}

type PortfolioView struct {
	SessionView
	Message             string           `json:"message,omitempty"`
	Holdings            []HoldingView    `json:"holdings"`
	TotalValue          string           `json:"totalValue"`
	TotalChange         string           `json:"totalChange"`
	TotalChangePositive bool             `json:"totalChangePositive"`
	HoldingCount        int              `json:"holdingCount"`
	Totals              portfolio.Totals `json:"totals"`
}

func (d *Dashboard) coinRows(coins []model.CoinQuote) []CoinRow {
	rows := make([]CoinRow, 0, len(coins))
	for i, c := range coins {
		rows = append(rows, CoinRow{
			Rank:      i + 1,
			ID:        c.ID,
			Symbol:    upper(c.Symbol),
			Name:      c.Name,
			Image:     c.Image,
			Price:     d.f.Price(c.CurrentPrice),
			Change24h: d.f.Percentage(c.PriceChangePercentage24h),
			MarketCap: d.f.Number(c.MarketCap),
			Volume:    d.f.Number(c.TotalVolume),
		})
	}
	return rows
}

func (d *Dashboard) coinDetailView(detail market.Detail) CoinDetailView {
	c := detail.Coin
	v := CoinDetailView{
		ID:                c.ID,
		Symbol:            upper(c.Symbol),
		Name:              c.Name,
		Image:             c.Image,
		Price:             d.f.Price(c.CurrentPrice),
		CurrentPrice:      c.CurrentPrice,
		MarketCap:         d.f.Number(c.MarketCap),
		Volume:            d.f.Number(c.TotalVolume),
		CirculatingSupply: d.f.Number(c.CirculatingSupply),
		TotalSupply:       d.f.Number(c.TotalSupply),
		Change1h:          d.f.Percentage(c.Change1h),
		Change24h:         d.f.Percentage(c.Change24h),
		Change7d:          d.f.Percentage(c.Change7d),
		Change30d:         d.f.Percentage(c.Change30d),
		History:           detail.History,
	}
	if v.History == nil {
		v.History = []model.PricePoint{}
	}
	if detail.HistoryErr != nil {
		v.HistoryError = detail.HistoryErr.Error()
	}
	if len(detail.History) >= 2 {
		v.ChartURL = "/api/coins/" + c.ID + "/chart.png"
	}
	return v
}

func (d *Dashboard) portfolioView(user string, valuation portfolio.Valuation) PortfolioView {
	v := PortfolioView{
		SessionView:  SessionView{User: user, LoggedIn: true},
		Holdings:     make([]HoldingView, 0, len(valuation.Holdings)),
		HoldingCount: valuation.Totals.HoldingCount,
		Totals:       valuation.Totals,
	}

	for _, h := range valuation.Holdings {
		hv := HoldingView{
			Index:          h.Index,
			CoinID:         h.CoinID,
			Symbol:         h.CoinSymbol,
			Amount:         h.Amount,
			PurchasePrice:  d.f.Price(&h.PurchasePrice),
			CurrentPrice:   format.NotAvailable,
			CurrentValue:   format.NotAvailable,
			Profit:         format.NotAvailable,
			ProfitPercent:  format.NotAvailable,
			ProfitPositive: h.Profit >= 0,
			PriceKnown:     h.PriceKnown,
		}
		if q, ok := d.market.Quote(h.CoinID); ok {
			hv.Image = q.Image
		}
		if h.PriceKnown {
			hv.CurrentPrice = d.f.Price(&h.CurrentPrice)
			hv.CurrentValue = d.f.Price(&h.CurrentValue)
			hv.Profit = d.f.SignedPrice(h.Profit)
			hv.ProfitPercent = d.f.Percentage(&h.ProfitPercent).Signed()
		}
		v.Holdings = append(v.Holdings, hv)
	}

	change := d.f.Percentage(&valuation.Totals.TotalChangePercent)
	v.TotalValue = d.f.Price(&valuation.Totals.TotalValue)
	v.TotalChange = change.Signed()
	v.TotalChangePositive = change.Positive

	if len(v.Holdings) == 0 {
		v.Message = _emptyPortfolioMessage
	}
	return v
}

func loggedOutPortfolioView() PortfolioView {
	return PortfolioView{
		Message:  _notLoggedInMessage,
		Holdings: []HoldingView{},
	}
}
