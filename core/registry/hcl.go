package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// registryFile is the HCL layout of a registry file:
//
//	gdp_estimate "PA" { ratio = 1.15 }
//
//	source "netflix" {
//	  proxy "LI" { to = "CH" }
//	  region "eurozone" { members = ["AT", "BE"] }
//	  estimate "AG" { ratio = 0.52 }
//	}
type registryFile struct {
	Estimates []estimateBlock `hcl:"gdp_estimate,block"`
	Sources   []sourceBlock   `hcl:"source,block"`
}

type estimateBlock struct {
	Territory string  `hcl:"territory,label"`
	Ratio     float64 `hcl:"ratio"`
}

type sourceBlock struct {
	Indicator string          `hcl:"indicator,label"`
	Proxies   []proxyBlock    `hcl:"proxy,block"`
	Regions   []regionBlock   `hcl:"region,block"`
	Estimates []estimateBlock `hcl:"estimate,block"`
}

type proxyBlock struct {
	From string `hcl:"from,label"`
	To   string `hcl:"to"`
}

type regionBlock struct {
	Name    string   `hcl:"name,label"`
	Members []string `hcl:"members"`
}

// LoadFile reads and validates a registry from an HCL file
func LoadFile(path string) (*Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback registry: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes a registry from HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Registry, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid registry file "+filename, diagError(diags))
	}

	var doc registryFile
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, errors.Parsing("invalid registry file "+filename, diagError(diags))
	}

	r := New()
	for _, sb := range doc.Sources {
		ind, err := types.ParseIndicator(sb.Indicator)
		if err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "invalid registry file "+filename, err)
		}
		for _, p := range sb.Proxies {
			r.AddProxy(ind, territory(p.From), territory(p.To))
		}
		for _, g := range sb.Regions {
			members := make([]types.Territory, len(g.Members))
			for i, m := range g.Members {
				members[i] = territory(m)
			}
			r.AddRegion(ind, g.Name, members...)
		}
		for _, e := range sb.Estimates {
			r.SetSourceEstimate(ind, territory(e.Territory), decimal.NewFromFloat(e.Ratio))
		}
	}
	for _, e := range doc.Estimates {
		r.SetEstimate(territory(e.Territory), decimal.NewFromFloat(e.Ratio))
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func territory(s string) types.Territory {
	return types.Territory(strings.ToUpper(strings.TrimSpace(s)))
}

// diagError keeps only error diagnostics, with their source line
func diagError(diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		msgs = append(msgs, fmt.Sprintf("line %d: %s: %s", line, diag.Summary, diag.Detail))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
