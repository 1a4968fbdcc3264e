// Package engine provides the API-primary quoting engine.
// CLI is a thin wrapper around this engine.
//
// A quote resolves the PPP ratio of a territory, scales the base price by
// it and snaps the result to a price point the storefront allows. Territories
// that cannot be quoted are reported as skipped, never priced with a default.
package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ppp-pricing/core/fx"
	"ppp-pricing/core/pricing"
	"ppp-pricing/core/resolver"
	"ppp-pricing/core/storefront"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
	"ppp-pricing/internal/logging"
)

// Engine is the primary API for price quoting
type Engine struct {
	resolver  *resolver.Resolver
	points    storefront.PricePointSource
	converter fx.Converter

	config Config
	logger *zap.Logger
}

// Config configures the quoting engine
type Config struct {
	// Reference territory and currency of the base price
	Reference         types.Territory
	ReferenceCurrency types.Currency

	// Workers bounds parallel quoting in Plan
	Workers int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		Reference:         "US",
		ReferenceCurrency: types.CurrencyUSD,
		Workers:           4,
	}
}

// NewEngine creates a quoting engine. A nil converter only allows quoting
// territories whose points are in the reference currency.
func NewEngine(res *resolver.Resolver, points storefront.PricePointSource, converter fx.Converter, config Config) *Engine {
	if converter == nil {
		converter = fx.Identity{}
	}
	if config.Workers <= 0 {
		config.Workers = DefaultConfig().Workers
	}
	if config.ReferenceCurrency == "" {
		config.ReferenceCurrency = types.CurrencyUSD
	}
	return &Engine{
		resolver:  res,
		points:    points,
		converter: converter,
		config:    config,
		logger:    logging.Named("engine"),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config { return e.config }

// Quote is the proposed price of one territory
type Quote struct {
	Territory  types.Territory        `json:"territory"`
	Resolution types.ResolutionResult `json:"resolution"`

	// Target is base * ratio in the reference currency, unrounded
	Target decimal.Decimal `json:"target"`

	// LocalTarget is Target in Currency; equal to Target when Currency is the
	// reference currency
	LocalTarget decimal.Decimal `json:"local_target"`
	Currency    types.Currency  `json:"currency"`

	Matched types.PricePoint  `json:"matched"`
	Current *types.PricePoint `json:"current,omitempty"`

	// Changed is true unless the live point is the matched one
	Changed bool `json:"changed"`
}

// Quote prices one territory. Errors carry the reason the territory was
// skipped: unresolved ratio, no price points or a failed conversion.
func (e *Engine) Quote(base decimal.Decimal, territory types.Territory, ind types.Indicator) (*Quote, error) {
	if !base.IsPositive() {
		return nil, errors.InvalidInput("base price must be positive").WithContext("base", base.String())
	}

	res := e.resolver.Resolve(territory, ind)
	if !res.Resolved() {
		return nil, errors.NotFound("ratio", string(territory)).
			WithContext("indicator", string(ind)).
			WithContext("path", string(res.Path))
	}

	target, err := pricing.ComputeTargetPrice(base, res.Ratio)
	if err != nil {
		return nil, err
	}

	cur, points, err := e.points.PricePoints(territory)
	if err != nil {
		return nil, err
	}
	if cur == "" {
		cur = e.config.ReferenceCurrency
	}

	// points are matched in their own currency
	local := target
	if cur != e.config.ReferenceCurrency {
		local, err = e.converter.Convert(target, e.config.ReferenceCurrency, cur)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeConversion, err, "cannot price %s in %s", territory, cur)
		}
	}

	matched, err := pricing.Match(local, points)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeNoPricePoints, err, "cannot price %s", territory)
	}

	q := &Quote{
		Territory:   territory,
		Resolution:  res,
		Target:      target,
		LocalTarget: local,
		Currency:    cur,
		Matched:     matched,
		Changed:     true,
	}
	if cs, ok := e.points.(storefront.CurrentSource); ok {
		if current, ok := cs.Current(territory); ok {
			q.Current = &current
			q.Changed = current.ID != matched.ID || !current.Price.Equal(matched.Price)
		}
	}

	e.logger.Debug("Quoted territory",
		zap.String("territory", string(territory)),
		zap.String("path", res.Provenance()),
		zap.String("ratio", res.Ratio.String()),
		zap.String("target", target.String()),
		zap.String("matched", matched.Price.String()),
		zap.String("currency", string(cur)))
	return q, nil
}
