// Package format turns raw market values into display strings. Everything
// here is pure; nil inputs mean the provider had no value and render "N/A".
package format

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const NotAvailable = "N/A"

type Formatter struct {
	currency string
	template string
	symbol   string
	printer  *message.Printer
}

// New builds a formatter for an ISO currency code ("eur", "usd"). Unknown
// codes fall back to the upper-cased code as a prefix.
func New(currency string) *Formatter {
	code := strings.ToUpper(currency)
	f := &Formatter{
		currency: code,
		template: "$1",
		symbol:   code + " ",
		printer:  message.NewPrinter(language.English),
	}
	if c := money.GetCurrency(code); c != nil && c.Grapheme != "" {
		f.symbol = c.Grapheme
		if c.Template != "" {
			f.template = c.Template
		}
	}
	return f
}

// Of is a helper for callers holding a plain float.
func Of(v float64) *float64 {
	return &v
}

func (f *Formatter) Currency() string {
	return f.currency
}

func (f *Formatter) Symbol() string {
	return f.symbol
}

// Number scales large values by magnitude: 1_500_000 -> "1.50M".
func (f *Formatter) Number(n *float64) string {
	if !known(n) {
		return NotAvailable
	}

	v, sign := abs(*n)
	switch {
	case v >= 1e12:
		return sign + fixed(v/1e12, 2) + "T"
	case v >= 1e9:
		return sign + fixed(v/1e9, 2) + "B"
	case v >= 1e6:
		return sign + fixed(v/1e6, 2) + "M"
	case v >= 1e3:
		return sign + fixed(v/1e3, 2) + "K"
	}

	s := decimal.NewFromFloat(v).Round(3).String()
	intPart, frac, _ := strings.Cut(s, ".")
	out := f.group(intPart)
	if frac != "" {
		out += "." + frac
	}
	return sign + out
}

// Price uses sub-cent precision for cheap coins and grouped cents otherwise.
func (f *Formatter) Price(p *float64) string {
	if !known(p) {
		return NotAvailable
	}

	v, sign := abs(*p)
	var s string
	switch {
	case v == 0:
		s = "0.00"
	case v < 0.01:
		s = fixed(v, 6)
	case v < 1:
		s = fixed(v, 4)
	default:
		rounded := decimal.NewFromFloat(v).Round(2)
		_, frac, _ := strings.Cut(rounded.StringFixed(2), ".")
		s = f.group(rounded.Truncate(0).String()) + "." + frac
	}
	return sign + f.withSymbol(s)
}

// SignedPrice always carries a sign, for profit columns.
func (f *Formatter) SignedPrice(v float64) string {
	s := f.Price(&v)
	if s == NotAvailable || v < 0 {
		return s
	}
	return "+" + s
}

type Percentage struct {
	Text     string  `json:"text"`
	Positive bool    `json:"positive"`
	Known    bool    `json:"known"`
	Value    float64 `json:"value"`
}

// Signed renders "+1.23%" / "-1.23%".
func (p Percentage) Signed() string {
	if !p.Known {
		return NotAvailable
	}
	if p.Positive {
		return "+" + p.Text
	}
	return "-" + p.Text
}

// Percentage splits a change into its absolute text and a sign class used
// for presentation.
func (f *Formatter) Percentage(p *float64) Percentage {
	if !known(p) {
		return Percentage{Text: NotAvailable}
	}

	v, _ := abs(*p)
	return Percentage{
		Text:     fixed(v, 2) + "%",
		Positive: *p >= 0,
		Known:    true,
		Value:    *p,
	}
}

func (f *Formatter) withSymbol(number string) string {
	out := strings.Replace(f.template, "1", number, 1)
	return strings.Replace(out, "$", f.symbol, 1)
}

func (f *Formatter) group(intPart string) string {
	d, err := decimal.NewFromString(intPart)
	if err != nil || !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return intPart
	}
	return f.printer.Sprintf("%d", d.IntPart())
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func known(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func abs(v float64) (float64, string) {
	if v < 0 {
		return -v, "-"
	}
	return v, ""
}
