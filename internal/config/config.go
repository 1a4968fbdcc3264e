// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
	"ppp-pricing/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Reference contains the anchor of every ratio
	Reference ReferenceConfig `json:"reference" yaml:"reference"`

	// Indicators contains indicator dataset settings
	Indicators IndicatorsConfig `json:"indicators" yaml:"indicators"`

	// RegistryPath is an HCL fallback registry; empty uses the built-in one
	RegistryPath string `json:"registry_path,omitempty" yaml:"registry_path,omitempty"`

	// FX contains currency conversion settings
	FX FXConfig `json:"fx" yaml:"fx"`

	// Storefront contains price point settings
	Storefront StorefrontConfig `json:"storefront" yaml:"storefront"`

	// Engine contains quoting engine settings
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// ReferenceConfig is the territory and currency of the base price
type ReferenceConfig struct {
	Territory types.Territory `json:"territory" yaml:"territory"`
	Currency  types.Currency  `json:"currency" yaml:"currency"`
}

// IndicatorsConfig contains indicator dataset settings
type IndicatorsConfig struct {
	// Primary is the indicator every other one falls back to
	Primary types.Indicator `json:"primary" yaml:"primary"`

	// BigMac is the Big Mac index CSV
	BigMac BigMacConfig `json:"bigmac" yaml:"bigmac"`

	// NetflixPath is a Netflix index CSV; empty uses the built-in table
	NetflixPath string `json:"netflix_path,omitempty" yaml:"netflix_path,omitempty"`
}

// BigMacConfig locates the Big Mac dataset
type BigMacConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// PriceColumn is dollar_price or local_price
	PriceColumn string `json:"price_column" yaml:"price_column"`
}

// FXConfig contains currency conversion settings
type FXConfig struct {
	// RatesPath is an exchange rate JSON document
	// Targets are converted into the currency of each territory's price
	// points; without rates only reference-currency territories are priced.
	RatesPath string `json:"rates_path,omitempty" yaml:"rates_path,omitempty"`
}

// StorefrontConfig contains price point settings
type StorefrontConfig struct {
	// PricePointsPath is a price point catalog snapshot; empty uses a .99 ladder
	PricePointsPath string `json:"price_points_path,omitempty" yaml:"price_points_path,omitempty"`
}

// EngineConfig contains quoting engine settings
type EngineConfig struct {
	// Workers bounds parallel resolution and quoting
	Workers int `json:"workers" yaml:"workers"`

	// Cache memoizes resolved ratios
	Cache bool `json:"cache" yaml:"cache"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color" yaml:"no_color"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Reference: ReferenceConfig{
			Territory: "US",
			Currency:  types.CurrencyUSD,
		},
		Indicators: IndicatorsConfig{
			Primary: types.IndicatorBigMac,
			BigMac: BigMacConfig{
				PriceColumn: "dollar_price",
			},
		},
		Engine: EngineConfig{
			Workers: 4,
			Cache:   true,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the per-user configuration file
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".ppp-pricing", "config.yaml")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load loads configuration from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid configuration file", err).
			WithContext("path", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that have a closed set of values
func (c *Config) Validate() error {
	if !c.Indicators.Primary.IsValid() {
		return errors.Newf(errors.TypeConfig, "unknown primary indicator %q", c.Indicators.Primary)
	}
	if c.Reference.Territory == "" {
		return errors.Config("reference territory is required")
	}
	if c.Reference.Currency == "" {
		return errors.Config("reference currency is required")
	}
	switch c.Indicators.BigMac.PriceColumn {
	case "", "dollar_price", "local_price":
	default:
		return errors.Newf(errors.TypeConfig, "unknown Big Mac price column %q", c.Indicators.BigMac.PriceColumn)
	}
	if c.Engine.Workers < 0 {
		return errors.Config("engine workers must not be negative")
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := c.Marshal(isYAML(path))
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Marshal encodes the configuration as YAML or indented JSON
func (c *Config) Marshal(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(c)
	}
	return json.MarshalIndent(c, "", "  ")
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
