// Package cmd provides the CLI commands for ppp-pricing.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ppp-pricing/internal/config"
	"ppp-pricing/internal/logging"
)

// version is set at build time
var version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ppp-pricing",
	Short: "Localize storefront prices with purchasing-power parity",
	Long: `ppp-pricing scales a reference price into every storefront territory
using a PPP indicator (the Big Mac index or the Netflix price index) and
snaps each result to a price point the storefront allows.

Territories missing from an indicator are resolved through proxy
territories, regional averages, GDP-based estimates and finally the
primary indicator.

Examples:
  ppp-pricing quote --base 9.99 FR DE BR
  ppp-pricing quote --base 9.99 --indicator netflix --format markdown
  ppp-pricing ratios --indicator netflix LI MC PA`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, JSON or YAML (default is $HOME/.ppp-pricing/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(ratiosCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ppp-pricing version %s\n", version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowJSON bool

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Get().Marshal(!configShowJSON)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitForce bool

// configInitCmd writes the default configuration
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "print JSON instead of YAML")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
}
