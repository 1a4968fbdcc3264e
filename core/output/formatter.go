// Package output provides report formatting.
// This package produces human and machine-readable outputs.
package output

import (
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"ppp-pricing/core/engine"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{FormatCLI, FormatJSON, FormatMarkdown}
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for a pricing run
	Render(w io.Writer, report *engine.Report) error

	// RenderRatios produces output for resolved ratios
	RenderRatios(w io.Writer, results []types.ResolutionResult) error
}

// Options tune formatters
type Options struct {
	NoColor bool

	// Verbose adds per-territory detail to cli output
	Verbose bool
}

// New returns the formatter of a format
func New(format Format, opts Options) (Formatter, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatCLI, "":
		return &cliFormatter{noColor: opts.NoColor, verbose: opts.Verbose}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatMarkdown, "md":
		return markdownFormatter{}, nil
	default:
		return nil, errors.Newf(errors.TypeInvalidInput, "unknown output format %q", format)
	}
}

// FormatPrice renders amount in the conventions of its currency, e.g.
// "$5.99". Amounts are rounded to the currency's minor unit.
func FormatPrice(amount decimal.Decimal, cur types.Currency) string {
	if cur == "" {
		return amount.String()
	}
	// money.New never returns a nil currency, unknown codes get defaults
	c := money.New(0, string(cur)).Currency()
	minor := amount.Shift(int32(c.Fraction)).Round(0)
	return c.Formatter().Format(minor.IntPart())
}

// Ratio renders a ratio with four decimals
func Ratio(r decimal.Decimal) string {
	return r.StringFixed(4)
}
