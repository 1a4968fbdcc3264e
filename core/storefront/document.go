package storefront

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ppp-pricing/core/indicator"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
	"ppp-pricing/internal/logging"
)

// Queries into a price point snapshot in App Store Connect document shape:
//
//	{
//	  "data": [
//	    {"type": "subscriptionPricePoints", "id": "pp-usa-499",
//	     "attributes": {"customerPrice": "4.99"},
//	     "relationships": {"territory": {"data": {"type": "territories", "id": "USA"}}}},
//	    {"type": "subscriptionPrices", "id": "sp-usa",
//	     "attributes": {"startDate": null, "preserved": false},
//	     "relationships": {"subscriptionPricePoint": {"data": {"id": "pp-usa-499"}}}}
//	  ],
//	  "included": [
//	    {"type": "territories", "id": "USA", "attributes": {"currency": "USD"}}
//	  ]
//	}
const (
	pathPricePoints = `$.data[?(@.type == "subscriptionPricePoints")]`
	pathPrices      = `$.data[?(@.type == "subscriptionPrices")]`
	pathTerritories = `$.included[?(@.type == "territories")]`

	pathID             = `$.id`
	pathCustomerPrice  = `$.attributes.customerPrice`
	pathPointTerritory = `$.relationships.territory.data.id`
	pathCurrency       = `$.attributes.currency`
	pathStartDate      = `$.attributes.startDate`
	pathPreserved      = `$.attributes.preserved`
	pathPricePointRef  = `$.relationships.subscriptionPricePoint.data.id`
)

// LoadCatalog reads a price point snapshot file
func LoadCatalog(path string, n *indicator.Normalizer) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeNotFound, "failed to read price point catalog", err).
			WithContext("path", path)
	}
	c, err := ParseCatalog(data, n)
	if err != nil {
		return nil, err
	}
	logging.Named("storefront").Debug("Loaded price point catalog",
		zap.String("path", path),
		zap.Int("territories", c.Len()))
	return c, nil
}

// ParseCatalog builds a catalog from a snapshot document. Territory ids may
// be alpha-2 or alpha-3 codes. Points with an unreadable price or an unknown
// territory are skipped.
func ParseCatalog(data []byte, n *indicator.Normalizer) (*Catalog, error) {
	if n == nil {
		n = indicator.NewNormalizer()
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Parsing("invalid price point catalog", err)
	}

	c := NewCatalog()
	for _, item := range query(pathTerritories, doc) {
		t, ok := n.Territory(str(pathID, item))
		if !ok {
			continue
		}
		if cur := strings.ToUpper(str(pathCurrency, item)); cur != "" {
			c.SetCurrency(t, types.Currency(cur))
		}
	}

	points, err := jsonpath.Get(pathPricePoints, doc)
	if err != nil {
		return nil, errors.Parsing("price point catalog has no data", err)
	}
	owner := make(map[string]types.Territory)
	skipped := 0
	for _, item := range list(points) {
		id := str(pathID, item)
		t, ok := n.Territory(str(pathPointTerritory, item))
		if !ok || id == "" {
			skipped++
			continue
		}
		price, err := number(get(pathCustomerPrice, item))
		if err != nil {
			skipped++
			continue
		}
		c.Add(t, types.PricePoint{ID: id, Price: price})
		owner[id] = t
	}

	for _, item := range query(pathPrices, doc) {
		if get(pathStartDate, item) != nil {
			continue
		}
		if preserved, _ := get(pathPreserved, item).(bool); preserved {
			continue
		}
		id := str(pathPricePointRef, item)
		if t, ok := owner[id]; ok {
			_ = c.SetCurrent(t, id)
		}
	}

	if skipped > 0 {
		logging.Named("storefront").Debug("Skipped unusable price points", zap.Int("count", skipped))
	}
	return c, nil
}

func get(path string, obj any) any {
	v, err := jsonpath.Get(path, obj)
	if err != nil {
		return nil
	}
	return v
}

func query(path string, obj any) []any {
	return list(get(path, obj))
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func str(path string, obj any) string {
	switch v := get(path, obj).(type) {
	case string:
		return v
	case float64:
		return decimal.NewFromFloat(v).String()
	default:
		return ""
	}
}

// number reads a price that may be encoded as a JSON string or number
func number(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		return decimal.NewFromFloat(x), nil
	default:
		return decimal.Zero, fmt.Errorf("unexpected price %v", v)
	}
}
