// Package cmd - registry command
package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"ppp-pricing/core/output"
	"ppp-pricing/core/registry"
	"ppp-pricing/core/types"
	"ppp-pricing/core/ui"
	"ppp-pricing/internal/config"
)

var registryJSON bool

// registryCmd lists the fallback registry in configuration order
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Show the fallback registry",
	Long: `Print the proxy territories, region groups and GDP-based estimates
used when an indicator has no direct entry for a territory.

The built-in registry is shown unless registry_path is configured.`,
	Args: cobra.NoArgs,
	RunE: runRegistry,
}

func init() {
	registryCmd.Flags().BoolVar(&registryJSON, "json", false, "print JSON")
}

func runRegistry(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	reg := registry.Default()
	if cfg.RegistryPath != "" {
		var err error
		if reg, err = registry.LoadFile(cfg.RegistryPath); err != nil {
			return err
		}
	}
	desc := reg.Describe()

	if registryJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}

	w := ui.NewWriter(cmd.OutOrStdout(), cfg.Output.NoColor)
	for _, ind := range types.AllIndicators() {
		fb, ok := desc.Sources[ind]
		if !ok {
			continue
		}
		w.Header("Fallbacks for " + string(ind))
		if len(fb.Proxies) > 0 {
			w.SubHeader("Proxies")
			table := w.NewTable("Territory", "Proxy")
			for _, e := range fb.Proxies {
				table.AddRow(string(e.From), string(e.To))
			}
			table.Render()
			w.Println("")
		}
		if len(fb.Regions) > 0 {
			w.SubHeader("Regions")
			table := w.NewTable("Region", "Members")
			for _, g := range fb.Regions {
				members := make([]string, len(g.Members))
				for i, m := range g.Members {
					members[i] = string(m)
				}
				table.AddRow(g.Name, strings.Join(members, " "))
			}
			table.Render()
			w.Println("")
		}
		if len(fb.Estimates) > 0 {
			w.SubHeader("Estimates")
			table := w.NewTable("Territory", "Ratio")
			for _, e := range fb.Estimates {
				table.AddRow(string(e.Territory), output.Ratio(e.Ratio))
			}
			table.Render()
		}
	}

	if len(desc.Estimates) > 0 {
		w.Header("GDP estimates")
		table := w.NewTable("Territory", "Ratio")
		for _, e := range desc.Estimates {
			table.AddRow(string(e.Territory), output.Ratio(e.Ratio))
		}
		table.Render()
	}
	return nil
}
