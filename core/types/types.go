// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"fmt"
	"strings"
)

// Territory identifies a pricing jurisdiction of the storefront.
// The canonical form is an upper-case ISO 3166-1 alpha-2 code.
type Territory string

// String returns the string representation
func (t Territory) String() string {
	return string(t)
}

// Currency represents an ISO 4217 currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Indicator names a PPP indicator source. The set is closed.
type Indicator string

const (
	// IndicatorBigMac is The Economist's Big Mac index
	IndicatorBigMac Indicator = "bigmac"

	// IndicatorNetflix is the Netflix standard plan price index
	IndicatorNetflix Indicator = "netflix"
)

// String returns the string representation
func (i Indicator) String() string {
	return string(i)
}

// IsValid checks if the indicator is a known indicator
func (i Indicator) IsValid() bool {
	switch i {
	case IndicatorBigMac, IndicatorNetflix:
		return true
	default:
		return false
	}
}

// AllIndicators returns every known indicator in a stable order
func AllIndicators() []Indicator {
	return []Indicator{IndicatorBigMac, IndicatorNetflix}
}

// ParseIndicator converts user input into an Indicator
func ParseIndicator(s string) (Indicator, error) {
	i := Indicator(strings.ToLower(strings.TrimSpace(s)))
	if !i.IsValid() {
		return "", fmt.Errorf("unknown indicator %q (use bigmac or netflix)", s)
	}
	return i, nil
}
