package market

import (
	"errors"
	"fmt"
)

type View string

const (
	MarketView    View = "market"
	DetailView    View = "detail"
	PortfolioView View = "portfolio"
)

var UnknownViewError = errors.New("unknown view")

func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case MarketView, DetailView, PortfolioView:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", UnknownViewError, s)
	}
}
