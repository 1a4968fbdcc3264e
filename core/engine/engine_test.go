package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"ppp-pricing/core/fx"
	"ppp-pricing/core/indicator"
	"ppp-pricing/core/registry"
	"ppp-pricing/core/resolver"
	"ppp-pricing/core/storefront"
	"ppp-pricing/core/types"
	"ppp-pricing/internal/errors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	reg := registry.New().
		AddProxy(types.IndicatorBigMac, "LI", "CH").
		SetEstimate("QQ", d("0.5"))
	r := resolver.New(reg, types.IndicatorBigMac)

	rows := []indicator.RawRow{
		{Name: "US", LocalPrice: d("5"), Currency: types.CurrencyUSD},
		{Name: "CR", LocalPrice: d("2.75"), Currency: types.CurrencyUSD},
		{Name: "DE", LocalPrice: d("4"), Currency: types.CurrencyUSD},
		{Name: "GB", LocalPrice: d("4"), Currency: types.CurrencyUSD},
		{Name: "CH", LocalPrice: d("7"), Currency: types.CurrencyUSD},
	}
	table, err := indicator.BuildTable(types.IndicatorBigMac, rows, nil, indicator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	r.SetTable(table)
	return r
}

func newCatalog(t *testing.T) *storefront.Catalog {
	t.Helper()
	c := storefront.NewCatalog()
	add := func(terr types.Territory, cur types.Currency, prices ...string) {
		c.SetCurrency(terr, cur)
		for _, p := range prices {
			c.Add(terr, types.PricePoint{ID: string(terr) + "-" + p, Price: d(p)})
		}
	}
	add("US", types.CurrencyUSD, "8.99", "9.99", "10.99")
	add("CR", types.CurrencyUSD, "4.99", "5.99", "6.99")
	add("DE", types.CurrencyEUR, "2.99", "3.99", "4.99")
	add("GB", types.CurrencyGBP, "2.99", "3.99")
	add("LI", types.CurrencyUSD, "12.99", "13.99", "14.99")
	add("ZZ", types.CurrencyUSD, "1.99")
	if err := c.SetCurrent("US", "US-9.99"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCurrent("CR", "CR-6.99"); err != nil {
		t.Fatal(err)
	}
	return c
}

func newEngine(t *testing.T, cfg Config, conv fx.Converter) *Engine {
	return NewEngine(newResolver(t), newCatalog(t), conv, cfg)
}

func TestQuoteEndToEnd(t *testing.T) {
	e := newEngine(t, DefaultConfig(), nil)

	q, err := e.Quote(d("9.99"), "CR", types.IndicatorBigMac)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Resolution.Path != types.PathDirect || !q.Resolution.Ratio.Equal(d("0.55")) {
		t.Errorf("resolution = %+v", q.Resolution)
	}
	if !q.Target.Equal(d("5.4945")) {
		t.Errorf("target = %s, want 5.4945", q.Target)
	}
	if !q.Matched.Price.Equal(d("5.99")) || q.Matched.ID != "CR-5.99" {
		t.Errorf("matched = %+v, want 5.99", q.Matched)
	}
	if !q.Changed || q.Current == nil || q.Current.ID != "CR-6.99" {
		t.Errorf("current = %+v, changed = %v", q.Current, q.Changed)
	}
}

func TestQuoteReferenceKeepsBasePrice(t *testing.T) {
	e := newEngine(t, DefaultConfig(), nil)

	q, err := e.Quote(d("9.99"), "US", types.IndicatorBigMac)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Resolution.Ratio.Equal(decimal.NewFromInt(1)) || !q.Target.Equal(d("9.99")) {
		t.Errorf("reference quote = %+v", q)
	}
	if q.Changed {
		t.Error("reference price must be unchanged")
	}
}

func TestQuoteProxyAndCrossSource(t *testing.T) {
	e := newEngine(t, DefaultConfig(), nil)

	q, err := e.Quote(d("9.99"), "LI", types.IndicatorBigMac)
	if err != nil {
		t.Fatal(err)
	}
	// 9.99 * 1.4 = 13.986
	if q.Resolution.Path != types.PathProxy || !q.Matched.Price.Equal(d("13.99")) {
		t.Errorf("LI quote = %+v", q)
	}

	// no netflix table is installed, so netflix falls back to big mac
	q, err = e.Quote(d("9.99"), "CR", types.IndicatorNetflix)
	if err != nil {
		t.Fatal(err)
	}
	if q.Resolution.Path != types.PathCrossSource || q.Resolution.Source != types.IndicatorBigMac {
		t.Errorf("netflix CR resolution = %+v", q.Resolution)
	}
}

func TestQuoteConvertsToPointCurrency(t *testing.T) {
	rates := fx.NewRateTable(types.CurrencyUSD)
	if err := rates.Set(types.CurrencyEUR, d("1.2")); err != nil {
		t.Fatal(err)
	}

	// 5 * 0.8 = 4.00 USD = 4.80 EUR
	e := newEngine(t, DefaultConfig(), rates)
	q, err := e.Quote(d("5"), "DE", types.IndicatorBigMac)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Target.Equal(d("4")) || !q.LocalTarget.Equal(d("4.8")) {
		t.Errorf("target %s, local %s", q.Target, q.LocalTarget)
	}
	if !q.Matched.Price.Equal(d("4.99")) || q.Currency != types.CurrencyEUR {
		t.Errorf("matched %s %s, want 4.99 EUR", q.Matched.Price, q.Currency)
	}

	// reference currency points are matched unconverted
	q, err = e.Quote(d("9.99"), "CR", types.IndicatorBigMac)
	if err != nil {
		t.Fatal(err)
	}
	if !q.LocalTarget.Equal(q.Target) || q.Currency != types.CurrencyUSD {
		t.Errorf("CR local %s, target %s, currency %s", q.LocalTarget, q.Target, q.Currency)
	}

	// no GBP rate
	if _, err := e.Quote(d("5"), "GB", types.IndicatorBigMac); !errors.IsType(err, errors.TypeConversion) {
		t.Errorf("GB error = %v, want conversion error", err)
	}
}

func TestQuoteNeverMatchesAcrossCurrencies(t *testing.T) {
	reg := registry.New().SetEstimate("JP", d("0.8"))
	res := resolver.New(reg, types.IndicatorBigMac)
	table, err := indicator.BuildTable(types.IndicatorBigMac,
		[]indicator.RawRow{{Name: "US", LocalPrice: d("5"), Currency: types.CurrencyUSD}},
		nil, indicator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	res.SetTable(table)

	catalog := storefront.NewCatalog()
	catalog.SetCurrency("JP", "JPY")
	for _, p := range []string{"160", "800", "1500"} {
		catalog.Add("JP", types.PricePoint{ID: "JP-" + p, Price: d(p)})
	}

	// without rates a USD target is never compared with JPY points
	_, err = NewEngine(res, catalog, nil, DefaultConfig()).Quote(d("9.99"), "JP", types.IndicatorBigMac)
	if !errors.IsType(err, errors.TypeConversion) {
		t.Fatalf("error = %v, want conversion error", err)
	}

	rates := fx.NewRateTable(types.CurrencyUSD)
	if err := rates.Set("JPY", d("150")); err != nil {
		t.Fatal(err)
	}
	// 9.99 * 0.8 = 7.992 USD = 1198.8 JPY
	q, err := NewEngine(res, catalog, rates, DefaultConfig()).Quote(d("9.99"), "JP", types.IndicatorBigMac)
	if err != nil {
		t.Fatal(err)
	}
	if !q.LocalTarget.Equal(d("1198.8")) || !q.Matched.Price.Equal(d("1500")) {
		t.Errorf("JP local %s matched %s, want 1198.8 and 1500", q.LocalTarget, q.Matched.Price)
	}
}

func TestQuoteRejectsNonPositiveBase(t *testing.T) {
	e := newEngine(t, DefaultConfig(), nil)
	for _, base := range []string{"0", "-9.99"} {
		if _, err := e.Quote(d(base), "CR", types.IndicatorBigMac); !errors.IsType(err, errors.TypeInvalidInput) {
			t.Errorf("Quote(%s) error = %v", base, err)
		}
	}
}

func TestPlan(t *testing.T) {
	e := newEngine(t, DefaultConfig(), nil)

	report, err := e.Plan(Request{
		BasePrice:   d("9.99"),
		Indicator:   types.IndicatorBigMac,
		Territories: []types.Territory{"US", "ZZ", "CR", "QQ", "LI"},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	var quoted []types.Territory
	for _, q := range report.Quotes {
		quoted = append(quoted, q.Territory)
	}
	if len(quoted) != 3 || quoted[0] != "US" || quoted[1] != "CR" || quoted[2] != "LI" {
		t.Fatalf("quoted = %v", quoted)
	}

	if len(report.Skipped) != 2 {
		t.Fatalf("skipped = %+v", report.Skipped)
	}
	if s := report.Skipped[0]; s.Territory != "ZZ" || s.Reason != ReasonUnresolved || s.Path != types.PathUnresolved {
		t.Errorf("ZZ skip = %+v", s)
	}
	// QQ resolves through its estimate but has no price points
	if s := report.Skipped[1]; s.Territory != "QQ" || s.Reason != ReasonNoPricePoint {
		t.Errorf("QQ skip = %+v", s)
	}

	counts := report.PathCounts()
	if counts[types.PathDirect] != 2 || counts[types.PathProxy] != 1 {
		t.Errorf("path counts = %v", counts)
	}
	if changes := report.Changes(); len(changes) != 2 {
		t.Errorf("changes = %d, want 2 (CR and LI)", len(changes))
	}
	if report.RunID.String() == "" || report.Reference != "US" {
		t.Errorf("report metadata = %+v", report)
	}
}

func TestPlanAllTerritories(t *testing.T) {
	e := newEngine(t, DefaultConfig(), nil)
	report, err := e.Plan(Request{BasePrice: d("9.99"), Indicator: types.IndicatorBigMac})
	if err != nil {
		t.Fatal(err)
	}
	// catalog lists CR DE GB LI US ZZ. Without rates DE and GB cannot be
	// priced in their currency; ZZ is unresolved.
	if len(report.Quotes) != 3 || len(report.Skipped) != 3 {
		t.Fatalf("quoted %d, skipped %+v", len(report.Quotes), report.Skipped)
	}
	want := []struct {
		territory types.Territory
		reason    string
	}{
		{"DE", ReasonConversion},
		{"GB", ReasonConversion},
		{"ZZ", ReasonUnresolved},
	}
	for i, w := range want {
		if s := report.Skipped[i]; s.Territory != w.territory || s.Reason != w.reason {
			t.Errorf("skipped[%d] = %+v, want %s %s", i, s, w.territory, w.reason)
		}
	}
}

func TestPlanRejectsInvalidRequest(t *testing.T) {
	e := newEngine(t, DefaultConfig(), nil)
	tests := map[string]Request{
		"zero base":         {BasePrice: decimal.Zero, Indicator: types.IndicatorBigMac},
		"negative base":     {BasePrice: d("-1"), Indicator: types.IndicatorBigMac},
		"unknown indicator": {BasePrice: d("9.99"), Indicator: "cpi"},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := e.Plan(req); !errors.IsType(err, errors.TypeInvalidInput) {
				t.Errorf("error = %v, want invalid input", err)
			}
		})
	}

	ladder := NewEngine(newResolver(t), storefront.NewLadder(types.CurrencyUSD), nil, DefaultConfig())
	if _, err := ladder.Plan(Request{BasePrice: d("9.99"), Indicator: types.IndicatorBigMac}); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Errorf("ladder without territories error = %v", err)
	}
}

func TestPlanInputHash(t *testing.T) {
	req := Request{
		BasePrice:   d("9.99"),
		Indicator:   types.IndicatorBigMac,
		Territories: []types.Territory{"US", "CR"},
	}
	first, err := newEngine(t, DefaultConfig(), nil).Plan(req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newEngine(t, DefaultConfig(), nil).Plan(req)
	if err != nil {
		t.Fatal(err)
	}
	if first.RunID == second.RunID {
		t.Error("run IDs must differ between runs")
	}
	if first.InputHash == "" || first.InputHash != second.InputHash {
		t.Errorf("input hashes %q and %q must match", first.InputHash, second.InputHash)
	}

	req.BasePrice = d("19.99")
	third, err := newEngine(t, DefaultConfig(), nil).Plan(req)
	if err != nil {
		t.Fatal(err)
	}
	if third.InputHash == first.InputHash {
		t.Error("a different base price must change the input hash")
	}
}
