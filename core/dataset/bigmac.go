// Package dataset reads PPP indicator datasets into raw indicator rows.
// Downloading the datasets is not this package's concern; it reads files
// or readers that already hold the data.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"ppp-pricing/core/indicator"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

// PriceColumn selects which Big Mac price column feeds the rows
type PriceColumn string

const (
	// DollarPrice uses the dataset's own USD conversion (dollar_price)
	DollarPrice PriceColumn = "dollar_price"

	// LocalPrice uses local_price in currency_code, converted by the builder
	LocalPrice PriceColumn = "local_price"
)

// BigMac reads The Economist's big-mac-full-index.csv layout.
// Only the rows of the latest date are returned.
type BigMac struct {
	Column PriceColumn
}

// ReadFile reads a Big Mac CSV file
func (b BigMac) ReadFile(path string) ([]indicator.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open big mac data: %w", err)
	}
	defer f.Close()
	return b.Read(f)
}

// Read reads Big Mac CSV data from r
func (b BigMac) Read(r io.Reader) ([]indicator.RawRow, error) {
	column := b.Column
	if column == "" {
		column = DollarPrice
	}

	records, header, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	dateIdx, err := header.require("date")
	if err != nil {
		return nil, err
	}
	priceIdx, err := header.require(string(column))
	if err != nil {
		return nil, err
	}
	nameIdx, hasISO := header["iso_a3"]
	if !hasISO {
		if nameIdx, err = header.require("name"); err != nil {
			return nil, err
		}
	}
	currencyIdx := -1
	if column == LocalPrice {
		if currencyIdx, err = header.require("currency_code"); err != nil {
			return nil, err
		}
	}

	// ISO dates compare lexically
	latest := ""
	for _, rec := range records {
		if d := field(rec, dateIdx); d > latest {
			latest = d
		}
	}

	var rows []indicator.RawRow
	for line, rec := range records {
		if field(rec, dateIdx) != latest {
			continue
		}
		raw := field(rec, priceIdx)
		if raw == "" || strings.EqualFold(raw, "NA") {
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Parsing(fmt.Sprintf("line %d: invalid %s %q", line+2, column, raw), err)
		}
		cur := types.CurrencyUSD
		if currencyIdx >= 0 {
			cur = types.Currency(strings.ToUpper(field(rec, currencyIdx)))
		}
		rows = append(rows, indicator.RawRow{
			Name:       field(rec, nameIdx),
			LocalPrice: price,
			Currency:   cur,
		})
	}
	return rows, nil
}

// columns maps lower-case header names to their index
type columns map[string]int

func (c columns) require(name string) (int, error) {
	idx, ok := c[name]
	if !ok {
		return 0, errors.Newf(errors.TypeParsing, "missing column %q", name)
	}
	return idx, nil
}

func readCSV(r io.Reader) ([][]string, columns, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Parsing("invalid CSV", err)
	}
	if len(all) == 0 {
		return nil, nil, errors.Newf(errors.TypeParsing, "empty CSV")
	}

	header := make(columns, len(all[0]))
	for i, h := range all[0] {
		header[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return all[1:], header, nil
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
