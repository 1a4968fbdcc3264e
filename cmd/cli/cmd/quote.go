// Package cmd - quote command
package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"ppp-pricing/core/engine"
	"ppp-pricing/core/output"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/config"
)

var (
	quoteBase      string
	quoteIndicator string
	outputFormat   string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote [territory...]",
	Short: "Propose PPP-adjusted prices for territories",
	Long: `Scale the base price by each territory's PPP ratio and match the
result to the nearest allowed price point.

Territories may be alpha-2 or alpha-3 codes. Without arguments every
territory of the price point catalog is quoted.

Examples:
  ppp-pricing quote --base 9.99 FR DE BR
  ppp-pricing quote --base 4.99 --indicator netflix --format json`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteBase, "base", "b", "", "base price in the reference currency [REQUIRED]")
	quoteCmd.Flags().StringVarP(&quoteIndicator, "indicator", "i", "", "indicator (bigmac, netflix); defaults to the primary")
	quoteCmd.Flags().StringVarP(&outputFormat, "format", "f", "", formatUsage())
	_ = quoteCmd.MarkFlagRequired("base")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	base, err := decimal.NewFromString(quoteBase)
	if err != nil {
		return fmt.Errorf("invalid base price %q: %w", quoteBase, err)
	}
	ind, err := indicatorFlag(cfg, quoteIndicator)
	if err != nil {
		return err
	}
	territories, err := parseTerritories(args)
	if err != nil {
		return err
	}
	formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}

	env, err := loadEnvironment(cfg)
	if err != nil {
		return err
	}
	if len(territories) == 0 {
		territories = env.knownTerritories(ind)
	}

	report, err := env.newEngine().Plan(engine.Request{
		BasePrice:   base,
		Indicator:   ind,
		Territories: territories,
	})
	if err != nil {
		return err
	}
	return formatter.Render(cmd.OutOrStdout(), report)
}

func indicatorFlag(cfg *config.Config, flag string) (types.Indicator, error) {
	if flag == "" {
		return cfg.Indicators.Primary, nil
	}
	return types.ParseIndicator(flag)
}

func formatUsage() string {
	names := make([]string, 0, len(output.Formats()))
	for _, f := range output.Formats() {
		names = append(names, string(f))
	}
	return "output format (" + strings.Join(names, ", ") + ")"
}

func formatterFor(cfg *config.Config) (output.Formatter, error) {
	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	return output.New(output.Format(format), output.Options{NoColor: cfg.Output.NoColor, Verbose: verbose})
}
