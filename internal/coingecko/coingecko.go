// Package coingecko fetches market data from the CoinGecko public API and
// decodes it into typed records once, at the boundary.
package coingecko

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/STTM-NSU/crypto-dashboard/internal/config"
	"github.com/STTM-NSU/crypto-dashboard/internal/logger"
	"github.com/STTM-NSU/crypto-dashboard/internal/model"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	_marketsURL     = "/coins/markets"
	_coinURL        = "/coins/{id}"
	_marketChartURL = "/coins/{id}/market_chart"

	_apiKeyHeader = "x-cg-demo-api-key"
)

var (
	RateLimitedError       = errors.New("API rate limit exceeded. Please wait a moment before refreshing")
	RequestError           = errors.New("market data request failed")
	MalformedResponseError = errors.New("malformed market data response")
	EmptyCoinIDError       = errors.New("empty coin id")
)

type Client struct {
	c           *resty.Client
	cfg         config.MarketConfig
	rateLimiter ratelimit.Limiter

	logger logger.Logger
}

func NewClient(cfg config.MarketConfig, logger logger.Logger) *Client {
	client := resty.New().
		SetLogger(logger).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader(_apiKeyHeader, cfg.APIKey)
	}

	return &Client{
		c:           client,
		cfg:         cfg,
		rateLimiter: ratelimit.New(cfg.RequestsPerMinute, ratelimit.Per(1*time.Minute)),
		logger:      logger,
	}
}

func (c *Client) Currency() string {
	return c.cfg.Currency
}

type errorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func (e *errorResponse) message() string {
	if e == nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Status.ErrorMessage
}

// curl "https://api.coingecko.com/api/v3/coins/markets?vs_currency=eur&order=market_cap_desc&per_page=100&page=1&sparkline=false&price_change_percentage=24h"
func (c *Client) Markets(ctx context.Context) ([]model.CoinQuote, error) {
	var coins []model.CoinQuote
	req := c.c.R().
		SetQueryParams(map[string]string{
			"vs_currency":             c.cfg.Currency,
			"order":                   "market_cap_desc",
			"per_page":                strconv.Itoa(c.cfg.PerPage),
			"page":                    "1",
			"sparkline":               "false",
			"price_change_percentage": "24h",
		}).
		SetResult(&coins)

	if err := c.do(ctx, req, _marketsURL); err != nil {
		return nil, fmt.Errorf("%w: can't get markets", err)
	}

	for i, coin := range coins {
		if coin.ID == "" || coin.Symbol == "" {
			return nil, fmt.Errorf("%w: coin #%d has no id or symbol", MalformedResponseError, i)
		}
	}

	return coins, nil
}

type coinDetailResponse struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  struct {
		Large string `json:"large"`
		Small string `json:"small"`
	} `json:"image"`
	MarketData *struct {
		CurrentPrice                       map[string]*float64 `json:"current_price"`
		MarketCap                          map[string]*float64 `json:"market_cap"`
		TotalVolume                        map[string]*float64 `json:"total_volume"`
		CirculatingSupply                  *float64            `json:"circulating_supply"`
		TotalSupply                        *float64            `json:"total_supply"`
		PriceChangePercentage24h           *float64            `json:"price_change_percentage_24h"`
		PriceChangePercentage7d            *float64            `json:"price_change_percentage_7d"`
		PriceChangePercentage30d           *float64            `json:"price_change_percentage_30d"`
		PriceChangePercentage1hInCurrency  map[string]*float64 `json:"price_change_percentage_1h_in_currency"`
		PriceChangePercentage24hInCurrency map[string]*float64 `json:"price_change_percentage_24h_in_currency"`
		PriceChangePercentage7dInCurrency  map[string]*float64 `json:"price_change_percentage_7d_in_currency"`
		PriceChangePercentage30dInCurrency map[string]*float64 `json:"price_change_percentage_30d_in_currency"`
	} `json:"market_data"`
}

// curl "https://api.coingecko.com/api/v3/coins/bitcoin?localization=false&tickers=false"
func (c *Client) Coin(ctx context.Context, id string) (model.CoinDetail, error) {
	if strings.TrimSpace(id) == "" {
		return model.CoinDetail{}, EmptyCoinIDError
	}

	var resp coinDetailResponse
	req := c.c.R().
		SetPathParam("id", id).
		SetQueryParams(map[string]string{
			"localization":   "false",
			"tickers":        "false",
			"community_data": "false",
			"developer_data": "false",
			"sparkline":      "false",
		}).
		SetResult(&resp)

	if err := c.do(ctx, req, _coinURL); err != nil {
		return model.CoinDetail{}, fmt.Errorf("%w: can't get coin %s", err, id)
	}

	if resp.ID == "" || resp.MarketData == nil {
		return model.CoinDetail{}, fmt.Errorf("%w: coin %s has no id or market data", MalformedResponseError, id)
	}

	cur := c.cfg.Currency
	md := resp.MarketData
	return model.CoinDetail{
		ID:                resp.ID,
		Symbol:            resp.Symbol,
		Name:              resp.Name,
		Image:             cmp.Or(resp.Image.Large, resp.Image.Small),
		Currency:          cur,
		CurrentPrice:      md.CurrentPrice[cur],
		MarketCap:         md.MarketCap[cur],
		TotalVolume:       md.TotalVolume[cur],
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
		Change1h:          md.PriceChangePercentage1hInCurrency[cur],
		Change24h:         firstKnown(md.PriceChangePercentage24hInCurrency[cur], md.PriceChangePercentage24h),
		Change7d:          firstKnown(md.PriceChangePercentage7dInCurrency[cur], md.PriceChangePercentage7d),
		Change30d:         firstKnown(md.PriceChangePercentage30dInCurrency[cur], md.PriceChangePercentage30d),
	}, nil
}

type marketChartResponse struct {
	Prices [][]*float64 `json:"prices"`
}

// curl "https://api.coingecko.com/api/v3/coins/bitcoin/market_chart?vs_currency=eur&days=7"
func (c *Client) PriceHistory(ctx context.Context, id string, days int) ([]model.PricePoint, error) {
	if strings.TrimSpace(id) == "" {
		return nil, EmptyCoinIDError
	}
	if days <= 0 {
		days = c.cfg.HistoryDays
	}

	var resp marketChartResponse
	req := c.c.R().
		SetPathParam("id", id).
		SetQueryParams(map[string]string{
			"vs_currency": c.cfg.Currency,
			"days":        strconv.Itoa(days),
		}).
		SetResult(&resp)

	if err := c.do(ctx, req, _marketChartURL); err != nil {
		return nil, fmt.Errorf("%w: can't get price history for %s", err, id)
	}

	points := make([]model.PricePoint, 0, len(resp.Prices))
	for i, pair := range resp.Prices {
		if len(pair) != 2 || pair[0] == nil || pair[1] == nil {
			return nil, fmt.Errorf("%w: price point #%d of %s", MalformedResponseError, i, id)
		}
		points = append(points, model.PricePoint{
			Ts:    time.UnixMilli(int64(*pair[0])).UTC(),
			Price: *pair[1],
		})
	}

	return points, nil
}

func (c *Client) do(ctx context.Context, req *resty.Request, url string) error {
	req.SetError(&errorResponse{}).SetContext(ctx)

	c.rateLimiter.Take()
	resp, err := req.Get(url)
	if err != nil {
		if resp != nil && resp.IsSuccess() {
			return fmt.Errorf("%w: %w", MalformedResponseError, err)
		}
		return fmt.Errorf("%w: %w", RequestError, err)
	}
	defer resp.Body.Close()

	c.logger.Debugf("got response %s status: %s, %s", resp.Request.URL, resp.Status(), resp.Duration())

	if resp.StatusCode() == http.StatusTooManyRequests {
		return RateLimitedError
	}
	if resp.IsError() {
		msg, _ := resp.Error().(*errorResponse)
		return fmt.Errorf("%w: %s %s", RequestError, resp.Status(), msg.message())
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: unexpected status %s", RequestError, resp.Status())
	}

	return nil
}

func firstKnown(vs ...*float64) *float64 {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}
