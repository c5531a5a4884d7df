// Package dashboard wires market data, credentials and portfolios into the
// user-facing operations and builds the view models the HTTP layer renders.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/STTM-NSU/crypto-dashboard/internal/auth"
	"github.com/STTM-NSU/crypto-dashboard/internal/chart"
	"github.com/STTM-NSU/crypto-dashboard/internal/coingecko"
	"github.com/STTM-NSU/crypto-dashboard/internal/format"
	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/market"
	"github.com/STTM-NSU/crypto-dashboard/internal/portfolio"
)

var (
	ChartUnavailableError = errors.New("no price history loaded for this coin")
	UnknownPriceError     = errors.New("purchase price is required when the coin has no live price")
)

type Dashboard struct {
	market     *market.Market
	users      *auth.Store
	portfolios *portfolio.Store
	f          *format.Formatter

	logger logger.Logger
}

func New(
	m *market.Market,
	users *auth.Store,
	portfolios *portfolio.Store,
	f *format.Formatter,
	logger logger.Logger) *Dashboard {
	return &Dashboard{
		market:     m,
		users:      users,
		portfolios: portfolios,
		f:          f,
		logger:     logger,
	}
}

func (d *Dashboard) Register(ctx context.Context, username, password string) (Notification, error) {
	if err := d.users.Register(ctx, username, password); err != nil {
		return Notification{}, err
	}
	return Notification{Message: "Registered successfully!", Type: Success}, nil
}

func (d *Dashboard) Login(ctx context.Context, username, password string) (Notification, error) {
	if err := d.users.Login(ctx, username, password); err != nil {
		return Notification{}, err
	}
	return Notification{Message: "Login successful!", Type: Success}, nil
}

func (d *Dashboard) Logout(ctx context.Context) error {
	return d.users.Logout(ctx)
}

func (d *Dashboard) Session(ctx context.Context) (SessionView, error) {
	user, ok, err := d.users.CurrentUser(ctx)
	if err != nil {
		return SessionView{}, err
	}
	return SessionView{User: user, LoggedIn: ok}, nil
}

func (d *Dashboard) Market() MarketView {
	s := d.market.Snapshot()
	v := MarketView{
		View:    d.market.View(),
		Coins:   d.coinRows(s.Coins),
		Loading: s.Loading,
	}
	if !s.UpdatedAt.IsZero() {
		v.UpdatedAt = &s.UpdatedAt
	}
	if s.Err != nil {
		v.Error = bannerMessage(s.Err)
	}
	return v
}

func (d *Dashboard) Refresh(ctx context.Context) (MarketView, error) {
	if err := d.market.Refresh(ctx); err != nil {
		return d.Market(), err
	}
	return d.Market(), nil
}

func (d *Dashboard) OpenCoin(ctx context.Context, coinID string) (CoinDetailView, error) {
	detail, err := d.market.OpenDetail(ctx, coinID)
	if err != nil {
		return CoinDetailView{}, err
	}
	return d.coinDetailView(detail), nil
}

func (d *Dashboard) CloseCoin() {
	d.market.CloseDetail()
}

// Chart renders the price history of the open coin detail.
func (d *Dashboard) Chart(coinID string) ([]byte, error) {
	detail, ok := d.market.CurrentDetail()
	if !ok || detail.Coin.ID != coinID || len(detail.History) < 2 {
		return nil, ChartUnavailableError
	}

	title := detail.Coin.Name
	if title == "" {
		title = upper(detail.Coin.Symbol)
	}
	return chart.RenderPriceChart(title, detail.History, d.f)
}

type AddHoldingRequest struct {
	CoinID        string   `json:"coinId"`
	CoinSymbol    string   `json:"coinSymbol"`
	Amount        float64  `json:"amount"`
	PurchasePrice *float64 `json:"purchasePrice"`
}

// AddToPortfolio buys into the logged-in user's portfolio. Without an explicit
// purchase price the coin's live price is used, and the symbol defaults to
// the market list's ticker.
func (d *Dashboard) AddToPortfolio(ctx context.Context, req AddHoldingRequest) (Notification, PortfolioView, error) {
	req.CoinID = strings.TrimSpace(req.CoinID)
	quote, known := d.market.Quote(req.CoinID)

	symbol := strings.TrimSpace(req.CoinSymbol)
	if symbol == "" && known {
		symbol = quote.Symbol
	}
	if symbol == "" {
		symbol = req.CoinID
	}
	symbol = upper(symbol)

	var price float64
	switch {
	case req.PurchasePrice != nil:
		price = *req.PurchasePrice
	case known && quote.CurrentPrice != nil:
		price = *quote.CurrentPrice
	default:
		return Notification{}, PortfolioView{}, fmt.Errorf("%w: %w", portfolio.InvalidInputError, UnknownPriceError)
	}

	_, merged, err := d.portfolios.Add(ctx, req.CoinID, symbol, req.Amount, price)
	if err != nil {
		return Notification{}, PortfolioView{}, err
	}

	view, err := d.Portfolio(ctx)
	if err != nil {
		return Notification{}, PortfolioView{}, err
	}

	n := Notification{Message: symbol + " added to portfolio", Type: Success}
	if merged {
		n.Message = "Updated " + symbol + " in portfolio"
	}
	return n, view, nil
}

func (d *Dashboard) RemoveFromPortfolio(ctx context.Context, index int) (Notification, PortfolioView, error) {
	if _, err := d.portfolios.Remove(ctx, index); err != nil {
		return Notification{}, PortfolioView{}, err
	}

	view, err := d.Portfolio(ctx)
	if err != nil {
		return Notification{}, PortfolioView{}, err
	}
	return Notification{Message: "Coin removed from portfolio", Type: Success}, view, nil
}

// Portfolio values the logged-in user's holdings against the cached market
// list. Logged-out callers get an empty view with a hint, not an error.
func (d *Dashboard) Portfolio(ctx context.Context) (PortfolioView, error) {
	user, holdings, err := d.portfolios.Current(ctx)
	if errors.Is(err, portfolio.NotLoggedInError) {
		return loggedOutPortfolioView(), nil
	}
	if err != nil {
		return PortfolioView{}, err
	}

	return d.portfolioView(user, portfolio.Value(holdings, d.market.PriceOf)), nil
}

func (d *Dashboard) SetView(view string) error {
	v, err := market.ParseView(view)
	if err != nil {
		return err
	}
	if v == market.MarketView {
		d.market.CloseDetail()
		return nil
	}
	return d.market.SetView(v)
}

func bannerMessage(err error) string {
	if errors.Is(err, coingecko.RateLimitedError) {
		return coingecko.RateLimitedError.Error() + "."
	}
	return "Failed to fetch cryptocurrency data. Please check your internet connection and try again."
}

func upper(s string) string {
	return strings.ToUpper(s)
}
