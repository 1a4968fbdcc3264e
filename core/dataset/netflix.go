package dataset

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"ppp-pricing/core/indicator"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// Netflix reads Netflix standard plan prices. Without a file the built-in
// price list is used.
type Netflix struct{}

// ReadFile reads a Netflix CSV file. An empty path yields the built-in list.
func (n Netflix) ReadFile(path string) ([]indicator.RawRow, error) {
	if path == "" {
		return n.Builtin(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open netflix data: %w", err)
	}
	defer f.Close()
	return n.Read(f)
}

// Read accepts either country_code,price_usd or country_code,price,currency
func (n Netflix) Read(r io.Reader) ([]indicator.RawRow, error) {
	records, header, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	codeIdx, err := header.require("country_code")
	if err != nil {
		return nil, err
	}

	priceIdx, inUSD := header["price_usd"]
	currencyIdx := -1
	if !inUSD {
		if priceIdx, err = header.require("price"); err != nil {
			return nil, err
		}
		if currencyIdx, err = header.require("currency"); err != nil {
			return nil, err
		}
	}

	rows := make([]indicator.RawRow, 0, len(records))
	for line, rec := range records {
		raw := field(rec, priceIdx)
		if raw == "" {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Parsing(fmt.Sprintf("line %d: invalid price %q", line+2, raw), err)
		}
		cur := types.CurrencyUSD
		if currencyIdx >= 0 {
			cur = types.Currency(strings.ToUpper(field(rec, currencyIdx)))
		}
		rows = append(rows, indicator.RawRow{Name: field(rec, codeIdx), LocalPrice: price, Currency: cur})
	}
	return rows, nil
}

// Builtin returns the curated Standard plan prices in USD
func (Netflix) Builtin() []indicator.RawRow {
	rows := make([]indicator.RawRow, 0, len(netflixStandardUSD))
	for _, p := range netflixStandardUSD {
		rows = append(rows, indicator.RawRow{
			Name:       p.code,
			LocalPrice: decimal.RequireFromString(p.price),
			Currency:   types.CurrencyUSD,
		})
	}
	return rows
}

type listPrice struct {
	code  string
	price string
}

// Approximate public Standard plan prices, converted to USD.
var netflixStandardUSD = []listPrice{
	{"US", "15.49"}, {"GB", "13.99"}, {"CA", "16.49"}, {"AU", "16.99"},
	{"DE", "12.99"}, {"FR", "13.99"}, {"IT", "12.99"}, {"ES", "12.99"},
	{"NL", "12.99"}, {"BE", "12.99"}, {"CH", "19.90"}, {"AT", "12.99"},
	{"SE", "13.99"}, {"NO", "13.99"}, {"DK", "13.99"}, {"FI", "12.99"},
	{"IE", "13.99"}, {"PT", "9.99"}, {"GR", "9.99"}, {"PL", "9.99"},
	{"CZ", "9.99"}, {"HU", "9.99"}, {"RO", "9.99"}, {"BG", "9.99"},
	{"HR", "9.99"}, {"SK", "9.99"}, {"SI", "9.99"}, {"EE", "9.99"},
	{"LV", "9.99"}, {"LT", "9.99"}, {"JP", "12.99"}, {"CN", "7.99"},
	{"KR", "12.99"}, {"IN", "7.99"}, {"BR", "7.99"}, {"MX", "7.99"},
	{"AR", "7.99"}, {"CL", "7.99"}, {"CO", "7.99"}, {"PE", "7.99"},
	{"CR", "7.99"}, {"UY", "7.99"}, {"ZA", "7.99"}, {"NZ", "16.99"},
	{"SG", "12.99"}, {"MY", "7.99"}, {"TH", "7.99"}, {"PH", "7.99"},
	{"ID", "7.99"}, {"VN", "7.99"}, {"TW", "12.99"}, {"HK", "12.99"},
	{"TR", "7.99"}, {"RU", "7.99"}, {"IL", "12.99"}, {"AE", "12.99"},
	{"SA", "12.99"}, {"QA", "12.99"}, {"KW", "12.99"}, {"BH", "12.99"},
	{"OM", "12.99"}, {"EG", "7.99"}, {"NG", "7.99"}, {"KE", "7.99"},
}
