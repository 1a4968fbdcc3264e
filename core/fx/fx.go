// Package fx converts amounts between currencies using a static rate table.
// Rates are loaded once per run; no live updates.
package fx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ppp-pricing/core/determinism"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
	"ppp-pricing/internal/logging"
)

// Converter converts an amount from one currency to another
type Converter interface {
	Convert(amount decimal.Decimal, from, to types.Currency) (decimal.Decimal, error)
}

// RateTable holds "1 unit of Base = Rate units of currency" quotes
type RateTable struct {
	base  types.Currency
	date  string
	rates map[types.Currency]decimal.Decimal
}

// NewRateTable creates an empty table quoted against base
func NewRateTable(base types.Currency) *RateTable {
	return &RateTable{
		base:  base,
		rates: make(map[types.Currency]decimal.Decimal),
	}
}

// Base returns the quote currency of the table
func (t *RateTable) Base() types.Currency { return t.base }

// Date returns the as-of date of the quotes, if known
func (t *RateTable) Date() string { return t.date }

// Len returns the number of quoted currencies, base excluded
func (t *RateTable) Len() int { return len(t.rates) }

// Set records a quote; non-positive rates are rejected
func (t *RateTable) Set(cur types.Currency, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return errors.Newf(errors.TypeInvalidInput, "rate for %s must be positive, got %s", cur, rate)
	}
	t.rates[normalize(cur)] = rate
	return nil
}

// Rate returns how many units of cur one unit of the base buys
func (t *RateTable) Rate(cur types.Currency) (decimal.Decimal, bool) {
	cur = normalize(cur)
	if cur == t.base {
		return decimal.NewFromInt(1), true
	}
	r, ok := t.rates[cur]
	return r, ok
}

// Currencies returns the quoted currencies in sorted order
func (t *RateTable) Currencies() []types.Currency {
	return determinism.SortedKeys(t.rates)
}

// Convert implements Converter. The amount is first expressed in the base
// currency, then in the target currency.
func (t *RateTable) Convert(amount decimal.Decimal, from, to types.Currency) (decimal.Decimal, error) {
	from, to = normalize(from), normalize(to)
	if from == to {
		return amount, nil
	}
	fromRate, ok := t.Rate(from)
	if !ok {
		return decimal.Zero, errors.Conversion("no exchange rate for " + string(from)).
			WithContext("from", string(from)).WithContext("to", string(to))
	}
	toRate, ok := t.Rate(to)
	if !ok {
		return decimal.Zero, errors.Conversion("no exchange rate for " + string(to)).
			WithContext("from", string(from)).WithContext("to", string(to))
	}
	return amount.Div(fromRate).Mul(toRate), nil
}

// Identity converts only between identical currencies
type Identity struct{}

// Convert implements Converter
func (Identity) Convert(amount decimal.Decimal, from, to types.Currency) (decimal.Decimal, error) {
	if normalize(from) != normalize(to) {
		return decimal.Zero, errors.Conversion(fmt.Sprintf("cannot convert %s to %s without rates", from, to))
	}
	return amount, nil
}

// ratesDocument is the exchangerate-api style payload
type ratesDocument struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// LoadFile reads a rate table from a JSON document of the form
// {"base":"USD","date":"2024-01-01","rates":{"EUR":0.92}}.
// Codes that are not ISO 4217 currencies are skipped.
func LoadFile(path string) (*RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange rates: %w", err)
	}
	return Parse(data)
}

// Parse decodes a rate table document
func Parse(data []byte) (*RateTable, error) {
	var doc ratesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Parsing("invalid exchange rate document", err)
	}
	if doc.Base == "" {
		doc.Base = string(types.CurrencyUSD)
	}
	base := normalize(types.Currency(doc.Base))
	if !IsKnown(base) {
		return nil, errors.Newf(errors.TypeParsing, "unknown base currency %q", doc.Base)
	}

	table := NewRateTable(base)
	table.date = doc.Date
	skipped := 0
	for code, rate := range doc.Rates {
		cur := normalize(types.Currency(code))
		if cur == base {
			continue
		}
		if !IsKnown(cur) || !rate.IsPositive() {
			skipped++
			continue
		}
		table.rates[cur] = rate
	}

	logging.Debug("Loaded exchange rates",
		zap.String("base", string(base)),
		zap.String("date", doc.Date),
		zap.Int("currencies", table.Len()),
		zap.Int("skipped", skipped))
	return table, nil
}

// IsKnown reports whether cur is an ISO 4217 currency code
func IsKnown(cur types.Currency) bool {
	return money.GetCurrency(string(normalize(cur))) != nil
}

func normalize(c types.Currency) types.Currency {
	return types.Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}
