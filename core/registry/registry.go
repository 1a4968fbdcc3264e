// Package registry holds the static fallback configuration consulted when an
// indicator table has no direct entry for a territory: proxy territories,
// region groups and GDP-based ratio estimates.
//
// A Registry is loaded once and only read afterwards. Configuration order is
// part of the contract: when several edges or groups apply to a territory,
// the first configured one is consulted first.
package registry

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// ProxyEdge says From may borrow the ratio of To
type ProxyEdge struct {
	From types.Territory `json:"from"`
	To   types.Territory `json:"to"`
}

// RegionGroup is a named set of territories averaged together
type RegionGroup struct {
	Name    string            `json:"name"`
	Members []types.Territory `json:"members"`
}

// Contains reports whether t is a member of the group
func (g RegionGroup) Contains(t types.Territory) bool {
	for _, m := range g.Members {
		if m == t {
			return true
		}
	}
	return false
}

// Fallbacks are the per-indicator entries of the registry. Estimates here
// override the shared GDP estimates for this indicator only.
type Fallbacks struct {
	Proxies   []ProxyEdge   `json:"proxies"`
	Regions   []RegionGroup `json:"regions"`
	Estimates []Estimate    `json:"estimates,omitempty"`

	proxyIndex map[types.Territory][]types.Territory
	estIndex   map[types.Territory]int
}

// Estimate is a GDP-based ratio for one territory
type Estimate struct {
	Territory types.Territory `json:"territory"`
	Ratio     decimal.Decimal `json:"ratio"`
}

// Registry is the fallback configuration for all indicators
type Registry struct {
	sources   map[types.Indicator]*Fallbacks
	estimates []Estimate
	estIndex  map[types.Territory]int
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		sources:  make(map[types.Indicator]*Fallbacks),
		estIndex: make(map[types.Territory]int),
	}
}

func (r *Registry) fallbacks(ind types.Indicator) *Fallbacks {
	fb, ok := r.sources[ind]
	if !ok {
		fb = &Fallbacks{
			proxyIndex: make(map[types.Territory][]types.Territory),
			estIndex:   make(map[types.Territory]int),
		}
		r.sources[ind] = fb
	}
	return fb
}

// AddProxy appends a proxy edge for an indicator
func (r *Registry) AddProxy(ind types.Indicator, from, to types.Territory) *Registry {
	fb := r.fallbacks(ind)
	fb.Proxies = append(fb.Proxies, ProxyEdge{From: from, To: to})
	fb.proxyIndex[from] = append(fb.proxyIndex[from], to)
	return r
}

// AddRegion appends a region group for an indicator
func (r *Registry) AddRegion(ind types.Indicator, name string, members ...types.Territory) *Registry {
	fb := r.fallbacks(ind)
	fb.Regions = append(fb.Regions, RegionGroup{Name: name, Members: append([]types.Territory(nil), members...)})
	return r
}

// SetEstimate records the GDP-based ratio of a territory. A second call for
// the same territory replaces the ratio but keeps its original position.
func (r *Registry) SetEstimate(t types.Territory, ratio decimal.Decimal) *Registry {
	r.estimates = setEstimate(r.estimates, r.estIndex, t, ratio)
	return r
}

// SetSourceEstimate records a last-resort ratio used by one indicator only.
// It takes precedence over the shared estimate of the same territory.
func (r *Registry) SetSourceEstimate(ind types.Indicator, t types.Territory, ratio decimal.Decimal) *Registry {
	fb := r.fallbacks(ind)
	fb.Estimates = setEstimate(fb.Estimates, fb.estIndex, t, ratio)
	return r
}

func setEstimate(list []Estimate, index map[types.Territory]int, t types.Territory, ratio decimal.Decimal) []Estimate {
	if i, ok := index[t]; ok {
		list[i].Ratio = ratio
		return list
	}
	index[t] = len(list)
	return append(list, Estimate{Territory: t, Ratio: ratio})
}

// Proxies returns the proxy targets of t for an indicator, in configuration order
func (r *Registry) Proxies(ind types.Indicator, t types.Territory) []types.Territory {
	fb, ok := r.sources[ind]
	if !ok {
		return nil
	}
	return fb.proxyIndex[t]
}

// Regions returns the groups containing t for an indicator, in configuration order
func (r *Registry) Regions(ind types.Indicator, t types.Territory) []RegionGroup {
	fb, ok := r.sources[ind]
	if !ok {
		return nil
	}
	var out []RegionGroup
	for _, g := range fb.Regions {
		if g.Contains(t) {
			out = append(out, g)
		}
	}
	return out
}

// Estimate returns the GDP-based ratio of t. Estimates do not depend on the indicator.
func (r *Registry) Estimate(t types.Territory) (decimal.Decimal, bool) {
	i, ok := r.estIndex[t]
	if !ok {
		return decimal.Zero, false
	}
	return r.estimates[i].Ratio, true
}

// EstimateFor returns the estimate an indicator uses for t: its own entry
// when configured, the shared one otherwise.
func (r *Registry) EstimateFor(ind types.Indicator, t types.Territory) (decimal.Decimal, bool) {
	if fb, ok := r.sources[ind]; ok {
		if i, ok := fb.estIndex[t]; ok {
			return fb.Estimates[i].Ratio, true
		}
	}
	return r.Estimate(t)
}

// Estimates returns all shared estimates in configuration order
func (r *Registry) Estimates() []Estimate {
	return append([]Estimate(nil), r.estimates...)
}

// Fallbacks returns a copy of the entries configured for an indicator
func (r *Registry) Fallbacks(ind types.Indicator) Fallbacks {
	fb, ok := r.sources[ind]
	if !ok {
		return Fallbacks{}
	}
	return Fallbacks{
		Proxies:   append([]ProxyEdge(nil), fb.Proxies...),
		Regions:   append([]RegionGroup(nil), fb.Regions...),
		Estimates: append([]Estimate(nil), fb.Estimates...),
	}
}

// Validate checks the registry for entries the resolver cannot use
func (r *Registry) Validate() error {
	var problems []string
	for ind, fb := range r.sources {
		if !ind.IsValid() {
			problems = append(problems, fmt.Sprintf("unknown indicator %q", ind))
		}
		for _, e := range fb.Proxies {
			if e.From == "" || e.To == "" {
				problems = append(problems, fmt.Sprintf("%s: proxy edge with empty territory", ind))
			} else if e.From == e.To {
				problems = append(problems, fmt.Sprintf("%s: proxy %s points to itself", ind, e.From))
			}
		}
		for _, g := range fb.Regions {
			if g.Name == "" {
				problems = append(problems, fmt.Sprintf("%s: region group without name", ind))
			}
			if len(g.Members) < 2 {
				problems = append(problems, fmt.Sprintf("%s: region %q needs at least two members", ind, g.Name))
			}
		}
		for _, e := range fb.Estimates {
			if !e.Ratio.IsPositive() {
				problems = append(problems, fmt.Sprintf("%s: estimate for %s must be positive, got %s", ind, e.Territory, e.Ratio))
			}
		}
	}
	for _, e := range r.estimates {
		if !e.Ratio.IsPositive() {
			problems = append(problems, fmt.Sprintf("estimate for %s must be positive, got %s", e.Territory, e.Ratio))
		}
	}
	if len(problems) > 0 {
		return errors.Config("invalid fallback registry: " + strings.Join(problems, "; "))
	}
	return nil
}

// Description is a serializable view of the registry in configuration order
type Description struct {
	Sources   map[types.Indicator]Fallbacks `json:"sources"`
	Estimates []Estimate                    `json:"gdp_estimates"`
}

// Describe returns the whole registry for inspection
func (r *Registry) Describe() Description {
	d := Description{
		Sources:   make(map[types.Indicator]Fallbacks, len(r.sources)),
		Estimates: r.Estimates(),
	}
	for ind := range r.sources {
		d.Sources[ind] = r.Fallbacks(ind)
	}
	return d
}
