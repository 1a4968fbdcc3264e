// Package indicator builds normalized PPP indicator tables from raw dataset rows.
// A Table is immutable once built; rebuilding produces a new Table with a new
// generation ID.
package indicator

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ppp-pricing/core/determinism"
	"ppp-pricing/core/types"
)

// Entry is one territory's indicator price
type Entry struct {
	// LocalPrice is the indicator price in Currency
	LocalPrice decimal.Decimal `json:"local_price"`

	// Currency is the local currency of the row
	Currency types.Currency `json:"currency"`

	// ReferencePrice is LocalPrice expressed in the reference currency
	ReferencePrice decimal.Decimal `json:"reference_price"`

	// Raw is the dataset name the entry was built from
	Raw string `json:"raw,omitempty"`
}

// Table maps territories to indicator prices for one indicator source
type Table struct {
	generation uuid.UUID
	source     types.Indicator
	reference  types.Territory
	currency   types.Currency
	entries    map[types.Territory]Entry
}

// Generation identifies this build of the table
func (t *Table) Generation() uuid.UUID { return t.generation }

// Source returns the indicator the table was built for
func (t *Table) Source() types.Indicator { return t.source }

// Reference returns the anchor territory
func (t *Table) Reference() types.Territory { return t.reference }

// ReferenceCurrency returns the currency of ReferencePrice values
func (t *Table) ReferenceCurrency() types.Currency { return t.currency }

// Len returns the number of entries, anchor included
func (t *Table) Len() int { return len(t.entries) }

// Entry returns the entry of a territory
func (t *Table) Entry(territory types.Territory) (Entry, bool) {
	e, ok := t.entries[territory]
	return e, ok
}

// Ratio returns ReferencePrice(territory) / ReferencePrice(anchor).
// The anchor itself always yields exactly 1.
func (t *Table) Ratio(territory types.Territory) (decimal.Decimal, bool) {
	e, ok := t.Entry(territory)
	if !ok {
		return decimal.Zero, false
	}
	if territory == t.reference {
		return decimal.NewFromInt(1), true
	}
	anchor := t.entries[t.reference]
	return e.ReferencePrice.Div(anchor.ReferencePrice), true
}

// Territories returns all territories with an entry, sorted
func (t *Table) Territories() []types.Territory {
	return determinism.SortedKeys(t.entries)
}

// Ratios returns the direct ratio of every entry
func (t *Table) Ratios() map[types.Territory]decimal.Decimal {
	out := make(map[types.Territory]decimal.Decimal, len(t.entries))
	for k := range t.entries {
		out[k], _ = t.Ratio(k)
	}
	return out
}
