package registry

import (
	"github.com/shopspring/decimal"

	"ppp-pricing/core/types"
)

// eurozone lists the territories priced in EUR, microstates included
var eurozone = []types.Territory{
	"AT", "BE", "NL", "FI", "IE", "PT", "GR", "LU", "MT", "CY",
	"SI", "SK", "EE", "LV", "LT", "HR", "DE", "FR", "IT", "ES",
	"AD", "MC", "SM",
}

// Default returns the built-in registry
func Default() *Registry {
	r := New()

	// Big Mac: neighbours and similar economies with survey data. Territories
	// with a GDP estimate get no proxy; the estimate is what they resolve to.
	for _, e := range []ProxyEdge{
		{"LI", "CH"}, {"IS", "NO"},
		{"IM", "GB"}, {"JE", "GB"}, {"GG", "GB"},
		{"NC", "AU"}, {"PF", "AU"},
		{"BM", "CA"}, {"MO", "HK"},
		{"AD", "ES"}, {"MC", "FR"}, {"SM", "IT"},
	} {
		r.AddProxy(types.IndicatorBigMac, e.From, e.To)
	}
	r.AddRegion(types.IndicatorBigMac, "eurozone", eurozone...)

	// Netflix: Caribbean markets follow Canada
	for _, e := range []ProxyEdge{
		{"PA", "CR"},
		{"BS", "CA"}, {"BB", "CA"}, {"TT", "CA"}, {"AG", "CA"},
		{"KN", "CA"}, {"LC", "CA"}, {"VC", "CA"},
		{"SC", "ZA"}, {"BN", "SG"},
		{"LI", "CH"}, {"IS", "NO"},
	} {
		r.AddProxy(types.IndicatorNetflix, e.From, e.To)
	}
	r.AddRegion(types.IndicatorNetflix, "eurozone", eurozone...)

	// Netflix regional price levels, used when the proxy has no entry either
	for _, e := range []struct {
		t     types.Territory
		ratio string
	}{
		{"AG", "0.52"}, {"KN", "0.52"}, {"LC", "0.52"}, {"VC", "0.52"},
		{"BS", "0.65"}, {"BB", "0.65"}, {"TT", "0.65"},
		{"PA", "0.52"},
		{"BH", "0.84"}, {"OM", "0.84"},
	} {
		r.SetSourceEstimate(types.IndicatorNetflix, e.t, decimal.RequireFromString(e.ratio))
	}

	// GDP per capita (PPP) estimates for high-income markets without survey data
	for _, e := range []struct {
		t     types.Territory
		ratio string
	}{
		{"PA", "1.15"}, {"BS", "1.25"}, {"BB", "1.10"}, {"TT", "1.05"},
		{"AG", "1.15"}, {"KN", "1.12"}, {"LC", "1.10"}, {"VC", "1.08"},
		{"SC", "1.20"}, {"BN", "1.18"},
	} {
		r.SetEstimate(e.t, decimal.RequireFromString(e.ratio))
	}
	return r
}
