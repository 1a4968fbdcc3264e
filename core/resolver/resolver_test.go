package resolver

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"ppp-pricing/core/indicator"
	"ppp-pricing/core/registry"
	"ppp-pricing/core/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func buildTable(t *testing.T, ind types.Indicator, prices map[string]string) *indicator.Table {
	t.Helper()
	rows := make([]indicator.RawRow, 0, len(prices))
	for name, p := range prices {
		rows = append(rows, indicator.RawRow{Name: name, LocalPrice: dec(p), Currency: types.CurrencyUSD})
	}
	table, err := indicator.BuildTable(ind, rows, nil, indicator.DefaultOptions())
	if err != nil {
		t.Fatalf("BuildTable(%s): %v", ind, err)
	}
	return table
}

// fixture: Big Mac is primary; Netflix has a few territories of its own
func newFixture(t *testing.T, reg *registry.Registry, opts ...Option) *Resolver {
	t.Helper()
	if reg == nil {
		reg = registry.New()
	}
	r := New(reg, types.IndicatorBigMac, opts...)
	r.SetTable(buildTable(t, types.IndicatorBigMac, map[string]string{
		"US": "5.00", "CR": "2.50", "CH": "7.00", "DE": "4.00", "FR": "4.50", "GB": "4.00", "BN": "6.00",
	}))
	r.SetTable(buildTable(t, types.IndicatorNetflix, map[string]string{
		"US": "10", "DE": "9", "JP": "8",
	}))
	return r
}

func assertResult(t *testing.T, got types.ResolutionResult, path types.ResolutionPath, ratio string, via string) {
	t.Helper()
	if got.Path != path {
		t.Fatalf("%s/%s path = %s, want %s (%+v)", got.Territory, got.Indicator, got.Path, path, got)
	}
	if ratio != "" && !got.Ratio.Equal(dec(ratio)) {
		t.Errorf("%s/%s ratio = %s, want %s", got.Territory, got.Indicator, got.Ratio, ratio)
	}
	if got.Via != via {
		t.Errorf("%s/%s via = %q, want %q", got.Territory, got.Indicator, got.Via, via)
	}
}

func TestDirectEntriesResolveDirectly(t *testing.T) {
	r := newFixture(t, nil)
	table, _ := r.Table(types.IndicatorBigMac)
	for _, territory := range table.Territories() {
		res := r.Resolve(territory, types.IndicatorBigMac)
		want, _ := table.Ratio(territory)
		assertResult(t, res, types.PathDirect, "", "")
		if !res.Ratio.Equal(want) {
			t.Errorf("%s ratio = %s, want %s", territory, res.Ratio, want)
		}
		if res.Source != types.IndicatorBigMac || !res.Resolved() {
			t.Errorf("%s: unexpected provenance %+v", territory, res)
		}
	}
	assertResult(t, r.Resolve("CH", types.IndicatorBigMac), types.PathDirect, "1.4", "")
}

func TestReferenceTerritoryIsOne(t *testing.T) {
	r := newFixture(t, nil)
	for _, ind := range types.AllIndicators() {
		assertResult(t, r.Resolve("US", ind), types.PathDirect, "1", "")
	}
}

func TestProxyUsesFirstDirectlyResolvingEdge(t *testing.T) {
	reg := registry.New().
		AddProxy(types.IndicatorBigMac, "LI", "CH").
		AddProxy(types.IndicatorBigMac, "PA", "ZZ").
		AddProxy(types.IndicatorBigMac, "PA", "CR").
		AddProxy(types.IndicatorBigMac, "IM", "GB").
		AddProxy(types.IndicatorBigMac, "IM", "FR")
	r := newFixture(t, reg)

	assertResult(t, r.Resolve("LI", types.IndicatorBigMac), types.PathProxy, "1.4", "CH")
	assertResult(t, r.Resolve("PA", types.IndicatorBigMac), types.PathProxy, "0.5", "CR")
	assertResult(t, r.Resolve("IM", types.IndicatorBigMac), types.PathProxy, "0.8", "GB")
}

func TestProxyChainsAreNotFollowed(t *testing.T) {
	reg := registry.New().
		AddProxy(types.IndicatorBigMac, "LI", "CH").
		AddProxy(types.IndicatorBigMac, "XA", "LI")
	r := newFixture(t, reg)

	assertResult(t, r.Resolve("XA", types.IndicatorBigMac), types.PathUnresolved, "", "")
}

func TestProxyCyclesTerminate(t *testing.T) {
	reg := registry.New().
		AddProxy(types.IndicatorBigMac, "XA", "XB").
		AddProxy(types.IndicatorBigMac, "XB", "XA")
	r := newFixture(t, reg)

	assertResult(t, r.Resolve("XA", types.IndicatorBigMac), types.PathUnresolved, "", "")
}

func TestRegionalAverageUsesDirectMembersOnly(t *testing.T) {
	reg := registry.New().
		AddRegion(types.IndicatorBigMac, "eurozone", "DE", "FR", "AT", "IT")
	r := newFixture(t, reg)

	// mean of DE 0.8 and FR 0.9; IT has no entry and is ignored
	assertResult(t, r.Resolve("AT", types.IndicatorBigMac), types.PathRegionalAverage, "0.85", "eurozone")
	// members with their own entry still resolve directly
	assertResult(t, r.Resolve("DE", types.IndicatorBigMac), types.PathDirect, "0.8", "")
}

func TestRegionalAverageWithoutDirectMembersFallsThrough(t *testing.T) {
	reg := registry.New().
		AddRegion(types.IndicatorBigMac, "caribbean", "BS", "BB", "TT").
		SetEstimate("BS", dec("1.25"))
	r := newFixture(t, reg)

	assertResult(t, r.Resolve("BS", types.IndicatorBigMac), types.PathGDPEstimate, "1.25", "")
	assertResult(t, r.Resolve("BB", types.IndicatorBigMac), types.PathUnresolved, "", "")
}

func TestRegionalAverageTriesGroupsInOrder(t *testing.T) {
	reg := registry.New().
		AddRegion(types.IndicatorBigMac, "empty", "AT", "LI").
		AddRegion(types.IndicatorBigMac, "dach", "AT", "DE", "CH")
	r := newFixture(t, reg)

	// (0.8 + 1.4) / 2
	assertResult(t, r.Resolve("AT", types.IndicatorBigMac), types.PathRegionalAverage, "1.1", "dach")
}

func TestPrecedenceProxyBeforeRegionBeforeEstimate(t *testing.T) {
	reg := registry.New().
		AddProxy(types.IndicatorBigMac, "MC", "FR").
		AddRegion(types.IndicatorBigMac, "eurozone", "MC", "DE", "FR").
		SetEstimate("MC", dec("2")).
		AddRegion(types.IndicatorBigMac, "eurozone2", "SM", "DE", "FR").
		SetEstimate("SM", dec("2"))
	r := newFixture(t, reg)

	assertResult(t, r.Resolve("MC", types.IndicatorBigMac), types.PathProxy, "0.9", "FR")
	assertResult(t, r.Resolve("SM", types.IndicatorBigMac), types.PathRegionalAverage, "0.85", "eurozone2")
}

func TestCrossSourceFallback(t *testing.T) {
	reg := registry.New().AddProxy(types.IndicatorBigMac, "LI", "CH")
	r := newFixture(t, reg)

	res := r.Resolve("CH", types.IndicatorNetflix)
	assertResult(t, res, types.PathCrossSource, "1.4", "")
	if res.Source != types.IndicatorBigMac || res.FallbackPath != types.PathDirect || res.Indicator != types.IndicatorNetflix {
		t.Errorf("unexpected provenance %+v", res)
	}

	// the whole primary chain is reused, not only direct lookups
	res = r.Resolve("LI", types.IndicatorNetflix)
	assertResult(t, res, types.PathCrossSource, "1.4", "CH")
	if res.FallbackPath != types.PathProxy {
		t.Errorf("fallback path = %s, want proxy", res.FallbackPath)
	}
}

func TestCrossSourceOnlyAfterLocalChainFails(t *testing.T) {
	reg := registry.New().SetEstimate("BN", dec("1.18"))
	r := newFixture(t, reg)

	// Big Mac has BN directly, but the Netflix chain already succeeds at step 4
	res := r.Resolve("BN", types.IndicatorNetflix)
	assertResult(t, res, types.PathGDPEstimate, "1.18", "")
	if res.Source != types.IndicatorNetflix {
		t.Errorf("source = %s, want netflix", res.Source)
	}
}

func TestPrimaryNeverFallsBack(t *testing.T) {
	r := newFixture(t, nil)

	// JP only exists in the non-primary table
	assertResult(t, r.Resolve("JP", types.IndicatorBigMac), types.PathUnresolved, "", "")
	assertResult(t, r.Resolve("JP", types.IndicatorNetflix), types.PathDirect, "0.8", "")
}

func TestUnresolved(t *testing.T) {
	r := newFixture(t, nil)
	res := r.Resolve("ZZ", types.IndicatorNetflix)
	assertResult(t, res, types.PathUnresolved, "", "")
	if res.Resolved() || !res.Ratio.IsZero() {
		t.Errorf("unresolved result must carry no ratio: %+v", res)
	}
}

func TestMissingTableStillFallsBack(t *testing.T) {
	r := New(registry.New().SetEstimate("PA", dec("1.15")), types.IndicatorBigMac)
	r.SetTable(buildTable(t, types.IndicatorBigMac, map[string]string{"US": "5", "DE": "4"}))

	assertResult(t, r.Resolve("PA", types.IndicatorNetflix), types.PathGDPEstimate, "1.15", "")
	res := r.Resolve("DE", types.IndicatorNetflix)
	assertResult(t, res, types.PathCrossSource, "0.8", "")
}

func TestCacheInvalidatedOnRebuild(t *testing.T) {
	r := newFixture(t, nil, WithCache())
	assertResult(t, r.Resolve("DE", types.IndicatorBigMac), types.PathDirect, "0.8", "")
	assertResult(t, r.Resolve("DE", types.IndicatorBigMac), types.PathDirect, "0.8", "")
	if r.cache.len() != 1 {
		t.Fatalf("cache len = %d, want 1", r.cache.len())
	}

	r.SetTable(buildTable(t, types.IndicatorBigMac, map[string]string{"US": "5", "DE": "2.5"}))
	if r.cache.len() != 0 {
		t.Fatalf("cache must be empty after rebuild, len = %d", r.cache.len())
	}
	assertResult(t, r.Resolve("DE", types.IndicatorBigMac), types.PathDirect, "0.5", "")
}

func TestResolveAllKeepsOrder(t *testing.T) {
	reg := registry.New().AddProxy(types.IndicatorBigMac, "LI", "CH")
	r := newFixture(t, reg, WithWorkers(3), WithCache())

	territories := []types.Territory{"US", "LI", "ZZ", "DE", "JP", "CH", "FR", "GB", "CR"}
	results := r.ResolveAll(territories, types.IndicatorBigMac)
	if len(results) != len(territories) {
		t.Fatalf("got %d results", len(results))
	}
	for i, res := range results {
		if res.Territory != territories[i] {
			t.Errorf("result %d is %s, want %s", i, res.Territory, territories[i])
		}
		if want := r.Resolve(territories[i], types.IndicatorBigMac); !reflect.DeepEqual(res, want) {
			t.Errorf("%s: parallel %+v != sequential %+v", territories[i], res, want)
		}
	}
}

func TestStrategiesOrder(t *testing.T) {
	r := New(nil, types.IndicatorBigMac)
	want := []types.ResolutionPath{
		types.PathDirect, types.PathProxy, types.PathRegionalAverage, types.PathGDPEstimate, types.PathCrossSource,
	}
	if got := r.Strategies(); !reflect.DeepEqual(got, want) {
		t.Errorf("Strategies = %v, want %v", got, want)
	}
}

func TestDefaultRegistryBigMacEstimatesOutrankProxies(t *testing.T) {
	r := New(registry.Default(), types.IndicatorBigMac)
	r.SetTable(buildTable(t, types.IndicatorBigMac, map[string]string{
		"USA": "5.69", "CRI": "4.50", "SGP": "4.90", "CHE": "8.17",
	}))

	// CR and SG have data, yet PA and BN keep their GDP estimates
	assertResult(t, r.Resolve("PA", types.IndicatorBigMac), types.PathGDPEstimate, "1.15", "")
	assertResult(t, r.Resolve("BN", types.IndicatorBigMac), types.PathGDPEstimate, "1.18", "")
	assertResult(t, r.Resolve("AG", types.IndicatorBigMac), types.PathGDPEstimate, "1.15", "")
	// territories without an estimate still use their proxy
	res := r.Resolve("LI", types.IndicatorBigMac)
	if res.Path != types.PathProxy || res.Via != "CH" {
		t.Errorf("LI = %+v", res)
	}
}

func TestDefaultRegistryNetflixEstimates(t *testing.T) {
	r := New(registry.Default(), types.IndicatorBigMac)
	r.SetTable(buildTable(t, types.IndicatorNetflix, map[string]string{"US": "15.49"}))

	// no Canada entry to proxy, so netflix's own regional levels apply
	for territory, want := range map[types.Territory]string{
		"AG": "0.52", "KN": "0.52", "LC": "0.52", "VC": "0.52", "PA": "0.52",
		"BS": "0.65", "BB": "0.65", "TT": "0.65",
		"BH": "0.84", "OM": "0.84",
	} {
		res := r.Resolve(territory, types.IndicatorNetflix)
		assertResult(t, res, types.PathGDPEstimate, want, "")
		if res.Source != types.IndicatorNetflix {
			t.Errorf("%s source = %s", territory, res.Source)
		}
	}
	// SC has no netflix level and uses the shared estimate
	assertResult(t, r.Resolve("SC", types.IndicatorNetflix), types.PathGDPEstimate, "1.20", "")

	r.SetTable(buildTable(t, types.IndicatorNetflix, map[string]string{"US": "15.49", "CA": "16.49"}))
	assertResult(t, r.Resolve("AG", types.IndicatorNetflix), types.PathProxy, "", "CA")
}

func TestDefaultRegistryEuroMembersAverageMemberRows(t *testing.T) {
	r := New(registry.Default(), types.IndicatorBigMac)
	r.SetTable(buildTable(t, types.IndicatorBigMac, map[string]string{
		"USA": "5", "DEU": "4", "FRA": "4.5", "EUZ": "3",
	}))

	// the EUZ aggregate row is ignored; LU and MT get the mean of the
	// eurozone members with their own rows: (0.8 + 0.9) / 2
	for _, territory := range []types.Territory{"LU", "MT"} {
		assertResult(t, r.Resolve(territory, types.IndicatorBigMac), types.PathRegionalAverage, "0.85", "eurozone")
	}
	// microstates keep their proxy
	assertResult(t, r.Resolve("MC", types.IndicatorBigMac), types.PathProxy, "0.9", "FR")
}
