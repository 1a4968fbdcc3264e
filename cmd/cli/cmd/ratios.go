// Package cmd - ratios command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ppp-pricing/internal/config"
	"ppp-pricing/internal/logging"
)

var ratiosIndicator string

// ratiosCmd prints resolved PPP ratios and how each was found
var ratiosCmd = &cobra.Command{
	Use:   "ratios [territory...]",
	Short: "Show resolved PPP ratios and their resolution path",
	Long: `Resolve the PPP ratio of territories without pricing them.

Each row shows the path that produced the ratio: direct, proxy,
regional-average, gdp-estimate or cross-source. Unresolved territories
are listed too.

Examples:
  ppp-pricing ratios LI MC PA
  ppp-pricing ratios --indicator netflix --format markdown`,
	RunE: runRatios,
}

func init() {
	ratiosCmd.Flags().StringVarP(&ratiosIndicator, "indicator", "i", "", "indicator (bigmac, netflix); defaults to the primary")
	ratiosCmd.Flags().StringVarP(&outputFormat, "format", "f", "", formatUsage())
}

func runRatios(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	ind, err := indicatorFlag(cfg, ratiosIndicator)
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

	logging.Debug("Resolving ratios",
		zap.String("indicator", string(ind)),
		zap.Int("territories", len(territories)),
		zap.Any("order", env.resolver.Strategies()))
	results := env.resolver.ResolveAll(territories, ind)
	return formatter.RenderRatios(cmd.OutOrStdout(), results)
}
