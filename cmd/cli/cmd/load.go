// Package cmd - loading of datasets, registry, rates and price points
package cmd

import (
	"go.uber.org/zap"

	"ppp-pricing/core/dataset"
	"ppp-pricing/core/determinism"
	"ppp-pricing/core/engine"
	"ppp-pricing/core/fx"
	"ppp-pricing/core/indicator"
	"ppp-pricing/core/registry"
	"ppp-pricing/core/resolver"
	"ppp-pricing/core/storefront"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/config"
	"ppp-pricing/internal/errors"
	"ppp-pricing/internal/logging"
)

// environment is everything a command needs, built from configuration
type environment struct {
	cfg       *config.Config
	registry  *registry.Registry
	converter fx.Converter
	resolver  *resolver.Resolver
	points    storefront.PricePointSource
}

// loadEnvironment builds the indicator tables and their collaborators.
// An indicator whose data cannot be read or built is logged and left out;
// the others still load.
func loadEnvironment(cfg *config.Config) (*environment, error) {
	normalizer := indicator.NewNormalizer()
	env := &environment{cfg: cfg}

	if cfg.RegistryPath != "" {
		reg, err := registry.LoadFile(cfg.RegistryPath)
		if err != nil {
			return nil, err
		}
		env.registry = reg
	} else {
		env.registry = registry.Default()
	}

	if cfg.FX.RatesPath != "" {
		rates, err := fx.LoadFile(cfg.FX.RatesPath)
		if err != nil {
			return nil, err
		}
		logging.Debug("Loaded exchange rates",
			zap.String("base", string(rates.Base())),
			zap.String("date", rates.Date()),
			zap.Any("currencies", rates.Currencies()))
		env.converter = rates
	} else {
		env.converter = fx.Identity{}
	}

	opts := []resolver.Option{resolver.WithWorkers(cfg.Engine.Workers)}
	if cfg.Engine.Cache {
		opts = append(opts, resolver.WithCache())
	}
	env.resolver = resolver.New(env.registry, cfg.Indicators.Primary, opts...)

	buildOpts := indicator.Options{
		Reference:  cfg.Reference.Territory,
		Currency:   cfg.Reference.Currency,
		Normalizer: normalizer,
	}
	loaded := 0
	for _, ind := range types.AllIndicators() {
		rows, err := readIndicator(cfg, ind)
		if err != nil {
			logging.Warn("Indicator data unavailable",
				zap.String("indicator", string(ind)),
				zap.Error(err))
			continue
		}
		builder := indicator.NewBuilder(ind, env.converter, buildOpts)
		table, err := builder.Build(rows)
		if err != nil {
			stats := builder.Stats()
			logging.Warn("Indicator table build failed",
				zap.String("indicator", string(ind)),
				zap.Int("read", stats.Read),
				zap.Int("unrecognised", stats.Unrecognised),
				zap.Int("unconvertible", stats.Unconvertible),
				zap.Error(err))
			continue
		}
		env.resolver.SetTable(table)
		loaded++
	}
	if loaded == 0 {
		return nil, errors.DataIntegrity("no indicator table could be built")
	}

	if cfg.Storefront.PricePointsPath != "" {
		catalog, err := storefront.LoadCatalog(cfg.Storefront.PricePointsPath, normalizer)
		if err != nil {
			return nil, err
		}
		env.points = catalog
	} else {
		env.points = storefront.NewLadder(cfg.Reference.Currency)
	}
	return env, nil
}

func readIndicator(cfg *config.Config, ind types.Indicator) ([]indicator.RawRow, error) {
	switch ind {
	case types.IndicatorBigMac:
		if cfg.Indicators.BigMac.Path == "" {
			return nil, errors.Config("no Big Mac dataset configured (indicators.bigmac.path)")
		}
		reader := dataset.BigMac{Column: dataset.PriceColumn(cfg.Indicators.BigMac.PriceColumn)}
		return reader.ReadFile(cfg.Indicators.BigMac.Path)
	case types.IndicatorNetflix:
		return dataset.Netflix{}.ReadFile(cfg.Indicators.NetflixPath)
	default:
		return nil, errors.Newf(errors.TypeConfig, "no reader for indicator %q", ind)
	}
}

// newEngine returns the quoting engine of the environment
func (env *environment) newEngine() *engine.Engine {
	return engine.NewEngine(env.resolver, env.points, env.converter, engine.Config{
		Reference:         env.cfg.Reference.Territory,
		ReferenceCurrency: env.cfg.Reference.Currency,
		Workers:           env.cfg.Engine.Workers,
	})
}

// knownTerritories lists every territory the environment can say anything
// about for an indicator: price point territories when the source lists
// them, otherwise table entries and registry fallbacks.
func (env *environment) knownTerritories(ind types.Indicator) []types.Territory {
	if lister, ok := env.points.(storefront.Lister); ok {
		return lister.Territories()
	}

	seen := make(map[types.Territory]bool)
	for _, i := range types.AllIndicators() {
		if table, ok := env.resolver.Table(i); ok {
			for _, t := range table.Territories() {
				seen[t] = true
			}
		}
	}
	fb := env.registry.Fallbacks(ind)
	for _, e := range fb.Proxies {
		seen[e.From] = true
	}
	for _, g := range fb.Regions {
		for _, m := range g.Members {
			seen[m] = true
		}
	}
	for _, e := range fb.Estimates {
		seen[e.Territory] = true
	}
	for _, e := range env.registry.Estimates() {
		seen[e.Territory] = true
	}

	return determinism.SortedKeys(seen)
}

// parseTerritories upper-cases arguments and maps alpha-3 codes and names
func parseTerritories(args []string) ([]types.Territory, error) {
	n := indicator.NewNormalizer()
	out := make([]types.Territory, 0, len(args))
	for _, a := range args {
		t, ok := n.Territory(a)
		if !ok {
			return nil, errors.Newf(errors.TypeInvalidInput, "unknown territory %q", a)
		}
		out = append(out, t)
	}
	return out, nil
}
