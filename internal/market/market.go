// Package market holds the dashboard's application state: the cached coin
// list, the open coin detail and the active view. Every mutation goes
// through the methods below.
package market

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/STTM-NSU/crypto-dashboard/internal/config"
	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/model"
)

var (
	FetchInProgressError = errors.New("market data fetch already in progress")
	StaleResponseError   = errors.New("response superseded by a newer request")
)

type Provider interface {
	Markets(ctx context.Context) ([]model.CoinQuote, error)
	Coin(ctx context.Context, id string) (model.CoinDetail, error)
	PriceHistory(ctx context.Context, id string, days int) ([]model.PricePoint, error)
}

type Snapshot struct {
	Coins     []model.CoinQuote
	UpdatedAt time.Time
	Loading   bool
	Err       error // last failed fetch, cleared by the next success
}

type Detail struct {
	Coin       model.CoinDetail
	History    []model.PricePoint
	HistoryErr error
	Token      uint64
}

type Market struct {
	provider Provider
	cfg      config.MarketConfig
	logger   logger.Logger
	now      func() time.Time

	loading     atomic.Bool
	detailToken atomic.Uint64

	mu        sync.RWMutex
	coins     []model.CoinQuote
	index     map[string]model.CoinQuote
	updatedAt time.Time
	lastErr   error
	view      View
	detail    *Detail
}

func New(provider Provider, cfg config.MarketConfig, logger logger.Logger) *Market {
	return &Market{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		index:    make(map[string]model.CoinQuote),
		view:     MarketView,
	}
}

// Refresh refetches the coin list. Only one fetch runs at a time; callers
// that arrive while one is in flight get FetchInProgressError.
func (m *Market) Refresh(ctx context.Context) error {
	if !m.loading.CompareAndSwap(false, true) {
		return FetchInProgressError
	}
	defer m.loading.Store(false)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	coins, err := m.provider.Markets(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.lastErr = err
		m.logger.Errorf("%s: can't refresh market data", err)
		return err
	}

	m.coins = coins
	m.index = toMap(coins)
	m.updatedAt = m.now()
	m.lastErr = nil
	m.logger.Debugf("market data refreshed: %d coins", len(coins))

	return nil
}

func (m *Market) Loading() bool {
	return m.loading.Load()
}

func (m *Market) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Coins:     slices.Clone(m.coins),
		UpdatedAt: m.updatedAt,
		Loading:   m.loading.Load(),
		Err:       m.lastErr,
	}
}

// Quote looks up a coin of the last fetched list.
func (m *Market) Quote(coinID string) (model.CoinQuote, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.index[coinID]
	return q, ok
}

// PriceOf is the live price lookup used for portfolio valuation. Coins that
// dropped out of the list, or have no price, are unknown.
func (m *Market) PriceOf(coinID string) (float64, bool) {
	q, ok := m.Quote(coinID)
	if !ok || q.CurrentPrice == nil {
		return 0, false
	}
	return *q.CurrentPrice, true
}

// OpenDetail fetches a coin and its price history. Every call takes a new
// token; a response whose token is no longer the latest is dropped with
// StaleResponseError so it can't overwrite a newer detail.
func (m *Market) OpenDetail(ctx context.Context, coinID string) (Detail, error) {
	token := m.detailToken.Add(1)

	ctx, cancel := context.WithTimeout(ctx, 2*m.cfg.Timeout)
	defer cancel()

	coin, err := m.provider.Coin(ctx, coinID)
	if err != nil {
		if m.detailToken.Load() != token {
			return Detail{}, StaleResponseError
		}
		m.mu.Lock()
		m.lastErr = err
		m.mu.Unlock()
		m.logger.Errorf("%s: can't fetch coin detail %s", err, coinID)
		return Detail{}, err
	}

	history, historyErr := m.provider.PriceHistory(ctx, coinID, m.cfg.HistoryDays)
	if historyErr != nil {
		m.logger.Warnf("%s: can't fetch price history %s", historyErr, coinID)
		history = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detailToken.Load() != token {
		m.logger.Debugf("dropping stale detail %s (token %d)", coinID, token)
		return Detail{}, StaleResponseError
	}

	d := &Detail{
		Coin:       coin,
		History:    history,
		HistoryErr: historyErr,
		Token:      token,
	}
	m.detail = d
	m.view = DetailView

	return *d, nil
}

// CurrentDetail returns the open detail, if any.
func (m *Market) CurrentDetail() (Detail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.detail == nil {
		return Detail{}, false
	}
	return *m.detail, true
}

// CloseDetail goes back to the market list and invalidates any detail
// request still in flight.
func (m *Market) CloseDetail() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detailToken.Add(1)
	m.detail = nil
	m.view = MarketView
}

func (m *Market) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

func (m *Market) SetView(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if v == DetailView && m.detail == nil {
		return fmt.Errorf("%w: no coin detail open", UnknownViewError)
	}
	m.view = v
	return nil
}

// Run fetches once and then keeps refreshing on the configured interval,
// but only while the market list is on screen and nothing is in flight.
func (m *Market) Run(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil && !errors.Is(err, FetchInProgressError) {
		m.logger.Warnf("%s: initial market fetch failed", err)
	}

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.View() != MarketView || m.Loading() {
				continue
			}
			if err := m.Refresh(ctx); err != nil && !errors.Is(err, FetchInProgressError) {
				m.logger.Warnf("%s: periodic market fetch failed", err)
			}
		}
	}
}

func toMap[T interface{ GetUID() string }](arr []T) map[string]T {
	m := make(map[string]T, len(arr))
	for _, i := range arr {
		m[i.GetUID()] = i
	}
	return m
}
