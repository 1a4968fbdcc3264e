// Package types - Ratio resolution types
package types

import (
	"github.com/shopspring/decimal"
)

// ResolutionPath records which step of the fallback chain produced a ratio
type ResolutionPath string

const (
	PathDirect          ResolutionPath = "direct"
	PathProxy           ResolutionPath = "proxy"
	PathRegionalAverage ResolutionPath = "regional-average"
	PathGDPEstimate     ResolutionPath = "gdp-estimate"
	PathCrossSource     ResolutionPath = "cross-source"
	PathUnresolved      ResolutionPath = "unresolved"
)

// String returns the string representation
func (p ResolutionPath) String() string {
	return string(p)
}

// ResolutionResult is the ratio resolved for one (territory, indicator) pair
type ResolutionResult struct {
	// Territory is the requested territory
	Territory Territory `json:"territory"`

	// Indicator is the requested indicator
	Indicator Indicator `json:"indicator"`

	// Source is the indicator whose data produced the ratio.
	// It differs from Indicator only on the cross-source path.
	Source Indicator `json:"source,omitempty"`

	// Ratio is the PPP ratio; zero when unresolved
	Ratio decimal.Decimal `json:"ratio"`

	// Path is the resolution step that succeeded
	Path ResolutionPath `json:"path"`

	// Via names the proxy territory or region group used, if any
	Via string `json:"via,omitempty"`

	// FallbackPath is the step that succeeded on the primary indicator
	// when Path is PathCrossSource
	FallbackPath ResolutionPath `json:"fallback_path,omitempty"`
}

// Resolved reports whether a ratio was found
func (r ResolutionResult) Resolved() bool {
	return r.Path != PathUnresolved && r.Path != ""
}

// Provenance returns a short human-readable description of the path
func (r ResolutionResult) Provenance() string {
	s := string(r.Path)
	if r.Path == PathCrossSource {
		s += "(" + string(r.Source) + ":" + string(r.FallbackPath) + ")"
	}
	if r.Via != "" {
		s += " via " + r.Via
	}
	return s
}
