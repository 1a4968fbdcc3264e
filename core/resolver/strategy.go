package resolver

import (
	"github.com/shopspring/decimal"

	"ppp-pricing/core/indicator"
	"ppp-pricing/core/registry"
	"ppp-pricing/core/types"
)

// source is what one indicator contributes to a resolution
type source struct {
	indicator types.Indicator
	table     *indicator.Table // nil when the indicator failed to load
	registry  *registry.Registry
}

// direct returns the table ratio of t, if the table has it
func (s source) direct(t types.Territory) (decimal.Decimal, bool) {
	if s.table == nil {
		return decimal.Zero, false
	}
	return s.table.Ratio(t)
}

// Strategy is one named step of the fallback chain. Try reports the ratio
// and, for fallbacks, the territory or group it came from.
type Strategy struct {
	Path types.ResolutionPath
	Try  func(s source, t types.Territory) (ratio decimal.Decimal, via string, ok bool)
}

// chain is the fixed resolution order within one indicator
var chain = []Strategy{
	{Path: types.PathDirect, Try: tryDirect},
	{Path: types.PathProxy, Try: tryProxy},
	{Path: types.PathRegionalAverage, Try: tryRegionalAverage},
	{Path: types.PathGDPEstimate, Try: tryGDPEstimate},
}

func tryDirect(s source, t types.Territory) (decimal.Decimal, string, bool) {
	r, ok := s.direct(t)
	return r, "", ok
}

// tryProxy uses the first configured proxy that resolves directly.
// Proxies of proxies are never followed.
func tryProxy(s source, t types.Territory) (decimal.Decimal, string, bool) {
	for _, p := range s.registry.Proxies(s.indicator, t) {
		if r, ok := s.direct(p); ok {
			return r, string(p), true
		}
	}
	return decimal.Zero, "", false
}

// tryRegionalAverage averages the direct ratios of the other members of the
// first configured group that has any.
func tryRegionalAverage(s source, t types.Territory) (decimal.Decimal, string, bool) {
	for _, g := range s.registry.Regions(s.indicator, t) {
		sum := decimal.Zero
		n := int64(0)
		for _, m := range g.Members {
			if m == t {
				continue
			}
			if r, ok := s.direct(m); ok {
				sum = sum.Add(r)
				n++
			}
		}
		if n > 0 {
			return sum.Div(decimal.NewFromInt(n)), g.Name, true
		}
	}
	return decimal.Zero, "", false
}

// tryGDPEstimate prefers the indicator's own estimate over the shared one
func tryGDPEstimate(s source, t types.Territory) (decimal.Decimal, string, bool) {
	r, ok := s.registry.EstimateFor(s.indicator, t)
	return r, "", ok
}
