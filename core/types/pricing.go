// Package types - Pricing types
package types

import (
	"github.com/shopspring/decimal"
)

// PricePoint is one price a storefront allows for a territory's currency
type PricePoint struct {
	// ID is the storefront identifier of the point
	ID string `json:"id"`

	// Price is the customer price in Currency
	Price decimal.Decimal `json:"price"`

	// Currency is the price currency
	Currency Currency `json:"currency,omitempty"`
}
