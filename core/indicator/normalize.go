package indicator

import (
	"strings"

	"ppp-pricing/core/types"
)

// Match ranks how a raw name was recognised. Higher ranks win conflicts.
type Match int

const (
	// MatchNone means the name is not a known territory
	MatchNone Match = iota

	// MatchAlias means the name was an alpha-3 code or a country name
	MatchAlias

	// MatchCanonical means the name already was the alpha-2 code
	MatchCanonical
)

// Normalizer maps raw dataset names onto canonical territory codes.
// Many raw variants may map to one code.
type Normalizer struct {
	aliases map[string]types.Territory
	known   map[types.Territory]bool
}

// NewNormalizer creates a normalizer with the built-in alias table
func NewNormalizer() *Normalizer {
	n := &Normalizer{
		aliases: make(map[string]types.Territory, len(alpha3)+len(countryNames)),
		known:   make(map[types.Territory]bool, len(alpha3)),
	}
	for a3, t := range alpha3 {
		n.aliases[a3] = t
		n.known[t] = true
	}
	for name, t := range countryNames {
		n.aliases[strings.ToUpper(name)] = t
	}
	return n
}

// Canonical returns the territory code for raw and how it was recognised
func (n *Normalizer) Canonical(raw string) (types.Territory, Match) {
	k := key(raw)
	if k == "" {
		return "", MatchNone
	}
	if isAlpha2(k) && n.known[types.Territory(k)] {
		return types.Territory(k), MatchCanonical
	}
	if t, ok := n.aliases[k]; ok {
		return t, MatchAlias
	}
	return "", MatchNone
}

// Territory is Canonical without the match rank
func (n *Normalizer) Territory(raw string) (types.Territory, bool) {
	t, m := n.Canonical(raw)
	return t, m != MatchNone
}

func key(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), " "))
}

func isAlpha2(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// alpha3 maps ISO 3166-1 alpha-3 codes (Big Mac index, storefront APIs)
// to the alpha-2 codes used as territory identifiers.
var alpha3 = map[string]types.Territory{
	"USA": "US", "GBR": "GB", "CAN": "CA", "AUS": "AU", "NZL": "NZ",
	"DEU": "DE", "FRA": "FR", "ITA": "IT", "ESP": "ES", "NLD": "NL",
	"BEL": "BE", "CHE": "CH", "AUT": "AT", "SWE": "SE", "NOR": "NO",
	"DNK": "DK", "FIN": "FI", "IRL": "IE", "PRT": "PT", "GRC": "GR",
	"POL": "PL", "CZE": "CZ", "HUN": "HU", "ROU": "RO", "BGR": "BG",
	"HRV": "HR", "SVK": "SK", "SVN": "SI", "EST": "EE", "LVA": "LV",
	"LTU": "LT", "LUX": "LU", "MLT": "MT", "CYP": "CY", "ISL": "IS",
	"LIE": "LI", "AND": "AD", "MCO": "MC", "SMR": "SM", "JPN": "JP",
	"CHN": "CN", "KOR": "KR", "IND": "IN", "BRA": "BR", "MEX": "MX",
	"ARG": "AR", "CHL": "CL", "COL": "CO", "PER": "PE", "CRI": "CR",
	"URY": "UY", "ZAF": "ZA", "SGP": "SG", "MYS": "MY", "THA": "TH",
	"PHL": "PH", "IDN": "ID", "VNM": "VN", "TWN": "TW", "HKG": "HK",
	"MAC": "MO", "TUR": "TR", "RUS": "RU", "ISR": "IL", "ARE": "AE",
	"SAU": "SA", "QAT": "QA", "KWT": "KW", "BHR": "BH", "OMN": "OM",
	"BRN": "BN", "PAN": "PA", "BHS": "BS", "BRB": "BB", "TTO": "TT",
	"ATG": "AG", "KNA": "KN", "LCA": "LC", "VCT": "VC", "SYC": "SC",
	"MUS": "MU", "EGY": "EG", "NGA": "NG", "KEN": "KE", "PAK": "PK",
	"UKR": "UA", "JOR": "JO", "LBN": "LB", "AZE": "AZ", "MDA": "MD",
	"GTM": "GT", "HND": "HN", "NIC": "NI", "VEN": "VE", "LKA": "LK",
	"BMU": "BM", "NCL": "NC", "PYF": "PF", "IMN": "IM", "JEY": "JE",
	"GGY": "GG",
}

// countryNames covers the spellings used by the Big Mac "name" column
var countryNames = map[string]types.Territory{
	"United States":        "US",
	"Britain":              "GB",
	"United Kingdom":       "GB",
	"UK":                   "GB",
	"Canada":               "CA",
	"Australia":            "AU",
	"New Zealand":          "NZ",
	"Switzerland":          "CH",
	"Sweden":               "SE",
	"Norway":               "NO",
	"Denmark":              "DK",
	"Poland":               "PL",
	"Czech Republic":       "CZ",
	"Czechia":              "CZ",
	"Hungary":              "HU",
	"Romania":              "RO",
	"Japan":                "JP",
	"China":                "CN",
	"South Korea":          "KR",
	"India":                "IN",
	"Brazil":               "BR",
	"Mexico":               "MX",
	"Argentina":            "AR",
	"Chile":                "CL",
	"Colombia":             "CO",
	"Peru":                 "PE",
	"Costa Rica":           "CR",
	"Uruguay":              "UY",
	"South Africa":         "ZA",
	"Singapore":            "SG",
	"Malaysia":             "MY",
	"Thailand":             "TH",
	"Philippines":          "PH",
	"Indonesia":            "ID",
	"Vietnam":              "VN",
	"Taiwan":               "TW",
	"Hong Kong":            "HK",
	"Turkey":               "TR",
	"Russia":               "RU",
	"Israel":               "IL",
	"UAE":                  "AE",
	"United Arab Emirates": "AE",
	"Saudi Arabia":         "SA",
	"Qatar":                "QA",
	"Kuwait":               "KW",
	"Bahrain":              "BH",
	"Oman":                 "OM",
	"Egypt":                "EG",
	"Pakistan":             "PK",
	"Ukraine":              "UA",
}
