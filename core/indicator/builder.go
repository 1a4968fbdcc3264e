package indicator

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ppp-pricing/core/fx"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
	"ppp-pricing/internal/logging"
)

// RawRow is one record of an indicator dataset before normalization
type RawRow struct {
	// Name is a territory code, alpha-3 code or country name
	Name string

	// LocalPrice is the indicator price in Currency
	LocalPrice decimal.Decimal

	// Currency is the currency of LocalPrice
	Currency types.Currency
}

// Options configures a table build
type Options struct {
	// Reference is the anchor territory (ratio 1)
	Reference types.Territory

	// Currency is the reference currency all rows are converted into
	Currency types.Currency

	// Normalizer resolves raw names; nil uses the built-in table
	Normalizer *Normalizer

	// Logger receives build statistics; nil uses the global logger
	Logger *zap.Logger
}

// DefaultOptions anchors tables on the United States in USD
func DefaultOptions() Options {
	return Options{
		Reference: "US",
		Currency:  types.CurrencyUSD,
	}
}

// BuildStats counts what happened to the rows of a build
type BuildStats struct {
	Read          int `json:"read"`
	Kept          int `json:"kept"`
	Unrecognised  int `json:"unrecognised"`
	NonPositive   int `json:"non_positive"`
	Unconvertible int `json:"unconvertible"`
	Superseded    int `json:"superseded"`
}

// Builder turns raw rows into a Table
type Builder struct {
	source    types.Indicator
	opts      Options
	converter fx.Converter
	logger    *zap.Logger
	stats     BuildStats
}

// NewBuilder creates a builder for one indicator source
func NewBuilder(source types.Indicator, converter fx.Converter, opts Options) *Builder {
	if opts.Normalizer == nil {
		opts.Normalizer = NewNormalizer()
	}
	if opts.Reference == "" {
		opts.Reference = DefaultOptions().Reference
	}
	if opts.Currency == "" {
		opts.Currency = DefaultOptions().Currency
	}
	if converter == nil {
		converter = fx.Identity{}
	}
	return &Builder{
		source:    source,
		opts:      opts,
		converter: converter,
		logger:    logging.OrGlobal(opts.Logger).With(zap.String("indicator", string(source))),
	}
}

// Stats returns the statistics of the last Build
func (b *Builder) Stats() BuildStats { return b.stats }

type candidate struct {
	entry Entry
	rank  Match
}

// Build normalizes rows into a new Table.
//
// Rows that cannot be normalized, have a non-positive price or cannot be
// converted are dropped. When several rows map onto one territory, a row
// naming the canonical code outranks alias matches and, at equal rank, the
// later row wins.
func (b *Builder) Build(rows []RawRow) (*Table, error) {
	b.stats = BuildStats{Read: len(rows)}
	picked := make(map[types.Territory]candidate)

	for _, row := range rows {
		territory, rank := b.opts.Normalizer.Canonical(row.Name)
		if rank == MatchNone {
			b.stats.Unrecognised++
			b.logger.Debug("Dropping unrecognised row", zap.String("name", row.Name))
			continue
		}
		if !row.LocalPrice.IsPositive() {
			b.stats.NonPositive++
			continue
		}
		ref, err := b.converter.Convert(row.LocalPrice, row.Currency, b.opts.Currency)
		if err != nil || !ref.IsPositive() {
			b.stats.Unconvertible++
			b.logger.Debug("Dropping unconvertible row",
				zap.String("territory", string(territory)),
				zap.String("currency", string(row.Currency)),
				zap.Error(err))
			continue
		}

		if prev, ok := picked[territory]; ok {
			b.stats.Superseded++
			if prev.rank > rank {
				continue
			}
		}
		picked[territory] = candidate{
			rank: rank,
			entry: Entry{
				LocalPrice:     row.LocalPrice,
				Currency:       row.Currency,
				ReferencePrice: ref,
				Raw:            row.Name,
			},
		}
	}

	if _, ok := picked[b.opts.Reference]; !ok {
		return nil, errors.DataIntegrity(fmt.Sprintf("reference territory %s missing from %s data", b.opts.Reference, b.source)).
			WithContext("indicator", string(b.source)).
			WithContext("rows", len(rows))
	}

	entries := make(map[types.Territory]Entry, len(picked))
	for t, c := range picked {
		entries[t] = c.entry
	}
	b.stats.Kept = len(entries)

	table := &Table{
		generation: uuid.New(),
		source:     b.source,
		reference:  b.opts.Reference,
		currency:   b.opts.Currency,
		entries:    entries,
	}

	b.logger.Info("Built indicator table",
		zap.String("generation", table.generation.String()),
		zap.Int("read", b.stats.Read),
		zap.Int("kept", b.stats.Kept),
		zap.Int("unrecognised", b.stats.Unrecognised),
		zap.Int("non_positive", b.stats.NonPositive),
		zap.Int("unconvertible", b.stats.Unconvertible),
		zap.Int("superseded", b.stats.Superseded))
	return table, nil
}

// BuildTable is a convenience wrapper around NewBuilder(...).Build(rows)
func BuildTable(source types.Indicator, rows []RawRow, converter fx.Converter, opts Options) (*Table, error) {
	return NewBuilder(source, converter, opts).Build(rows)
}
