// Package storefront provides the price points a storefront allows per
// territory. Points are read from an offline catalog snapshot; nothing here
// talks to the storefront itself.
package storefront

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// PricePointSource supplies the allowed price points of a territory
type PricePointSource interface {
	PricePoints(t types.Territory) (types.Currency, []types.PricePoint, error)
}

// CurrentSource is implemented by sources that know the live price of a territory
type CurrentSource interface {
	Current(t types.Territory) (types.PricePoint, bool)
}

// Lister is implemented by sources that enumerate their territories
type Lister interface {
	Territories() []types.Territory
}

type listing struct {
	currency types.Currency
	points   []types.PricePoint
	current  string
}

// Catalog is an in-memory PricePointSource
type Catalog struct {
	mu       sync.RWMutex
	listings map[types.Territory]*listing
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{listings: make(map[types.Territory]*listing)}
}

func (c *Catalog) listing(t types.Territory) *listing {
	l, ok := c.listings[t]
	if !ok {
		l = &listing{}
		c.listings[t] = l
	}
	return l
}

// SetCurrency sets the currency of a territory and of its points
func (c *Catalog) SetCurrency(t types.Territory, cur types.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := c.listing(t)
	l.currency = cur
	for i := range l.points {
		l.points[i].Currency = cur
	}
}

// Add appends a price point to a territory. A point without currency takes
// the territory's.
func (c *Catalog) Add(t types.Territory, p types.PricePoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l := c.listing(t)
	if p.Currency == "" {
		p.Currency = l.currency
	}
	if l.currency == "" {
		l.currency = p.Currency
	}
	l.points = append(l.points, p)
}

// SetCurrent marks the live point of a territory
func (c *Catalog) SetCurrent(t types.Territory, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.listings[t]
	if ok {
		for _, p := range l.points {
			if p.ID == id {
				l.current = id
				return nil
			}
		}
	}
	return errors.NotFound("price point", id).WithContext("territory", string(t))
}

// PricePoints implements PricePointSource
func (c *Catalog) PricePoints(t types.Territory) (types.Currency, []types.PricePoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.listings[t]
	if !ok || len(l.points) == 0 {
		return "", nil, errors.NoPricePoints("territory has no price points").
			WithContext("territory", string(t))
	}
	out := make([]types.PricePoint, len(l.points))
	copy(out, l.points)
	return l.currency, out, nil
}

// Current implements CurrentSource
func (c *Catalog) Current(t types.Territory) (types.PricePoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.listings[t]
	if !ok || l.current == "" {
		return types.PricePoint{}, false
	}
	for _, p := range l.points {
		if p.ID == l.current {
			return p, true
		}
	}
	return types.PricePoint{}, false
}

// Territories implements Lister
func (c *Catalog) Territories() []types.Territory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Territory, 0, len(c.listings))
	for t, l := range c.listings {
		if len(l.points) > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of territories with points
func (c *Catalog) Len() int {
	return len(c.Territories())
}

// Ladder offers the same price points in every territory. It stands in for
// a catalog when none is configured.
type Ladder struct {
	Currency types.Currency
	Prices   []decimal.Decimal
}

// NewLadder returns the standard .99 ladder in cur: 0.49, then n.99 up to
// 99.99, then every ten up to 999.99.
func NewLadder(cur types.Currency) Ladder {
	prices := []decimal.Decimal{decimal.RequireFromString("0.49")}
	step := decimal.RequireFromString("0.99")
	for n := int64(0); n < 100; n++ {
		prices = append(prices, decimal.NewFromInt(n).Add(step))
	}
	for n := int64(109); n < 1000; n += 10 {
		prices = append(prices, decimal.NewFromInt(n).Add(step))
	}
	return Ladder{Currency: cur, Prices: prices}
}

// PricePoints implements PricePointSource
func (l Ladder) PricePoints(types.Territory) (types.Currency, []types.PricePoint, error) {
	if len(l.Prices) == 0 {
		return "", nil, errors.NoPricePoints("empty price ladder")
	}
	out := make([]types.PricePoint, len(l.Prices))
	for i, p := range l.Prices {
		out[i] = types.PricePoint{ID: p.StringFixed(2), Price: p, Currency: l.Currency}
	}
	return l.Currency, out, nil
}
