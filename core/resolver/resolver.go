// Package resolver resolves a PPP ratio for a territory through a fixed
// fallback chain: direct table entry, proxy territory, regional average,
// GDP-based estimate and finally the primary indicator.
//
// Resolution never fails. A territory nothing applies to comes back with
// the unresolved path and the caller is expected to skip it.
package resolver

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ppp-pricing/core/indicator"
	"ppp-pricing/core/registry"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/logging"
)

// Resolver resolves ratios against the installed indicator tables
type Resolver struct {
	mu       sync.RWMutex
	tables   map[types.Indicator]*indicator.Table
	registry *registry.Registry
	primary  types.Indicator

	cache   *cache
	workers int
	logger  *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache memoizes results until a table is replaced
func WithCache() Option {
	return func(r *Resolver) { r.cache = newCache() }
}

// WithWorkers bounds the parallelism of ResolveAll
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a resolver. primary is the indicator other indicators fall back to.
func New(reg *registry.Registry, primary types.Indicator, opts ...Option) *Resolver {
	if reg == nil {
		reg = registry.New()
	}
	r := &Resolver{
		tables:   make(map[types.Indicator]*indicator.Table),
		registry: reg,
		primary:  primary,
		workers:  4,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrGlobal(r.logger).Named("resolver")
	return r
}

// SetTable installs the table of its indicator, replacing any previous one
func (r *Resolver) SetTable(t *indicator.Table) {
	r.mu.Lock()
	r.tables[t.Source()] = t
	r.mu.Unlock()
	if r.cache != nil {
		r.cache.invalidate()
	}
	r.logger.Debug("Installed indicator table",
		zap.String("indicator", string(t.Source())),
		zap.String("generation", t.Generation().String()),
		zap.Int("entries", t.Len()))
}

// Table returns the installed table of an indicator
func (r *Resolver) Table(ind types.Indicator) (*indicator.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[ind]
	return t, ok
}

// Primary returns the designated primary indicator
func (r *Resolver) Primary() types.Indicator { return r.primary }

// Registry returns the fallback registry
func (r *Resolver) Registry() *registry.Registry { return r.registry }

// Strategies returns the per-indicator resolution order
func (r *Resolver) Strategies() []types.ResolutionPath {
	out := make([]types.ResolutionPath, 0, len(chain)+1)
	for _, s := range chain {
		out = append(out, s.Path)
	}
	return append(out, types.PathCrossSource)
}

func (r *Resolver) source(ind types.Indicator) source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return source{indicator: ind, table: r.tables[ind], registry: r.registry}
}

// Resolve returns the ratio of territory for an indicator
func (r *Resolver) Resolve(territory types.Territory, ind types.Indicator) types.ResolutionResult {
	var epoch uint64
	if r.cache != nil {
		var hit bool
		var res types.ResolutionResult
		if res, epoch, hit = r.cache.get(ind, territory); hit {
			return res
		}
	}

	res := r.resolve(territory, ind)
	if r.cache != nil {
		r.cache.put(epoch, res)
	}
	return res
}

func (r *Resolver) resolve(territory types.Territory, ind types.Indicator) types.ResolutionResult {
	res := types.ResolutionResult{Territory: territory, Indicator: ind}

	if path, ratio, via, ok := runChain(r.source(ind), territory); ok {
		res.Source, res.Path, res.Ratio, res.Via = ind, path, ratio, via
		r.logResolved(res)
		return res
	}

	if ind != r.primary && r.primary != "" {
		if path, ratio, via, ok := runChain(r.source(r.primary), territory); ok {
			res.Source, res.Path, res.Ratio, res.Via = r.primary, types.PathCrossSource, ratio, via
			res.FallbackPath = path
			r.logResolved(res)
			return res
		}
	}

	res.Path = types.PathUnresolved
	r.logger.Debug("Territory unresolved",
		zap.String("territory", string(territory)),
		zap.String("indicator", string(ind)))
	return res
}

func runChain(s source, t types.Territory) (types.ResolutionPath, decimal.Decimal, string, bool) {
	for _, step := range chain {
		if ratio, via, ok := step.Try(s, t); ok {
			return step.Path, ratio, via, true
		}
	}
	return "", decimal.Zero, "", false
}

func (r *Resolver) logResolved(res types.ResolutionResult) {
	if res.Path == types.PathDirect {
		return
	}
	r.logger.Debug("Territory resolved by fallback",
		zap.String("territory", string(res.Territory)),
		zap.String("indicator", string(res.Indicator)),
		zap.String("path", res.Provenance()),
		zap.String("ratio", res.Ratio.String()))
}

// ResolveAll resolves territories in parallel. Results keep the input order.
func (r *Resolver) ResolveAll(territories []types.Territory, ind types.Indicator) []types.ResolutionResult {
	results := make([]types.ResolutionResult, len(territories))
	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, t := range territories {
		i, t := i, t
		g.Go(func() error {
			results[i] = r.Resolve(t, ind)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
