package pipeline

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/statement"
)

func loadSample(t *testing.T) *statement.Set {
	t.Helper()
	set, err := statement.LoadFile("../statement/testdata/sample.json")
	if err != nil {
		t.Fatalf("Failed to load sample: %v", err)
	}
	return set
}

func TestCompute_WorkedExampleWithoutStatements(t *testing.T) {
	res, err := Compute(nil, assumption.Defaults())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if res.Ratios != nil || res.Opening != nil || res.Statements != nil || res.FinancialRatios != nil {
		t.Error("Expected the statement-driven sections to be empty without statements")
	}
	if math.Abs(res.WACC.WACC-0.14167350907519446) > 1e-12 {
		t.Errorf("Expected WACC 0.141674, got %f", res.WACC.WACC)
	}
	if math.Abs(res.Valuation.EnterpriseValue.V-25191212.810627155) > 1e-4 {
		t.Errorf("Expected EV 25191212.81, got %f", res.Valuation.EnterpriseValue.V)
	}
	if res.Sensitivity.Center() != res.Valuation.IntrinsicValuePerShare {
		t.Error("Sensitivity center should equal the base intrinsic value")
	}
	if !res.CapitalStructure.Available || res.CapitalStructure.Optimal() == nil {
		t.Error("Expected a capital structure optimum")
	}
}

func TestCompute_InvalidAssumptions(t *testing.T) {
	a := assumption.Defaults()
	a.TaxRate = 1.2
	if _, err := Compute(nil, a); !errors.Is(err, assumption.ErrInvalidAssumption) {
		t.Errorf("Expected ErrInvalidAssumption, got %v", err)
	}
}

func TestCompute_UnsetHorizon(t *testing.T) {
	a := assumption.Defaults()
	a.ProjectionYears = 0

	res, err := Compute(nil, a)
	if err != nil {
		t.Fatalf("Unset horizon should fall back to the default: %v", err)
	}
	if len(res.FCFF) != assumption.DefaultProjectionYears {
		t.Errorf("Expected %d FCFF years, got %d", assumption.DefaultProjectionYears, len(res.FCFF))
	}
	if math.Abs(res.Valuation.EnterpriseValue.V-25191212.810627155) > 1e-4 {
		t.Errorf("Expected the worked-example EV, got %f", res.Valuation.EnterpriseValue.V)
	}
}

func TestCompute_BusinessRuleIsNotAnError(t *testing.T) {
	a := assumption.Defaults()
	a.TerminalGrowthRate = 0.5

	res, err := Compute(nil, a)
	if err != nil {
		t.Fatalf("WACC <= g should not be an error: %v", err)
	}
	if res.Valuation.Valid || res.Valuation.EnterpriseValue.Valid {
		t.Error("Expected an invalid valuation")
	}
	if res.Sensitivity.Center().Valid {
		t.Error("Expected an invalid center cell")
	}
}

func TestCompute_WithStatements(t *testing.T) {
	set := loadSample(t)
	a := SeedAssumptions(set)

	res, err := Compute(set, a)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.CompanyName != "한빛정밀" {
		t.Errorf("Unexpected company %q", res.CompanyName)
	}
	if res.Ratios == nil || len(res.Ratios.Years) != 3 {
		t.Fatalf("Expected 3 trailing ratio years, got %+v", res.Ratios)
	}
	if len(res.Statements) != 5 || res.Statements[0].FiscalYear != "2024" {
		t.Errorf("Expected detailed projection from 2024, got %d years", len(res.Statements))
	}
	if res.FinancialRatios == nil || len(res.FinancialRatios.Years) != 4 {
		t.Error("Expected financial ratios for every statement year")
	}
	if !res.Valuation.Valid {
		t.Errorf("Expected a valid valuation, got %q", res.Valuation.Reason)
	}
}

func TestCompute_NonFiniteCellsStaySerializable(t *testing.T) {
	doc := `{
		"incomeStatement": [
			{"계정과목": "매출액", "2022": 1000, "2023": "NaN"},
			{"계정과목": "영업이익", "2022": 100, "2023": "Infinity"}
		],
		"balanceSheet": [
			{"계정과목": "유형자산", "2022": "NaN", "2023": "NaN"},
			{"계정과목": "현금및현금성자산", "2022": 50, "2023": 60}
		]
	}`
	set, err := statement.Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	res, err := Compute(set, SeedAssumptions(set))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if res.Opening.BalanceSheet.NetPPE != 0 {
		t.Errorf("Expected NaN PPE to open at 0, got %f", res.Opening.BalanceSheet.NetPPE)
	}
	for _, y := range res.Statements {
		if math.IsNaN(y.BalanceSheet.Cash) || math.IsInf(y.BalanceSheet.Cash, 0) {
			t.Fatalf("Year %s: non-finite cash plug", y.FiscalYear)
		}
	}
	if _, err := json.Marshal(res); err != nil {
		t.Errorf("Result should serialize, got %v", err)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a := assumption.Defaults()
	first, _ := Compute(nil, a)
	for i := 0; i < 5; i++ {
		next, _ := Compute(nil, a)
		if next.Valuation.EnterpriseValue != first.Valuation.EnterpriseValue ||
			next.CapitalStructure.OptimalIndex != first.CapitalStructure.OptimalIndex ||
			next.Sensitivity.At(0, 0) != first.Sensitivity.At(0, 0) {
			t.Fatal("Repeated runs produced different results")
		}
	}
}

func TestSeedAssumptions_Sample(t *testing.T) {
	a := SeedAssumptions(loadSample(t))

	checks := []struct {
		name      string
		got, want float64
	}{
		{"base revenue", a.BaseRevenue, 1500},
		{"market value of equity", a.MarketValueOfEquity, 700},
		{"total debt", a.TotalDebt, 300},
		{"cash", a.CashAndEquivalents, 150},
		{"growth", a.RevenueGrowthRate, (0.25 + 0.2 + 0.25) / 3},
		{"ebit margin", a.EBITMargin, 0.15},
		{"depreciation", a.DepreciationRate, 0.06},
		{"capex", a.CapexRate, (0.11 + 112.0/1200 + 0.1) / 3},
		{"interest", a.CostOfDebt, (0.048 + 0.05 + 0.06) / 3},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, c.got)
		}
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Seeded assumptions should validate: %v", err)
	}
}

func TestSeedAssumptions_Fallbacks(t *testing.T) {
	if a := SeedAssumptions(nil); a != assumption.Defaults() {
		t.Error("Expected defaults without statements")
	}

	// A single year gives zero growth and zero operating history.
	set, err := statement.Load([]byte(`{
		"incomeStatement": [{"계정과목": "매출액", "2023": 1000}],
		"balanceSheet": [{"계정과목": "자본", "2023": 400}]
	}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	a := SeedAssumptions(set)
	if a.RevenueGrowthRate != FallbackGrowthRate || a.EBITMargin != FallbackEBITMargin ||
		a.DepreciationRate != FallbackDepreciationRate || a.CapexRate != FallbackCapexRate ||
		a.NWCRate != FallbackNWCRate || a.CostOfDebt != FallbackCostOfDebt {
		t.Errorf("Expected every fallback, got %+v", a)
	}
	if a.BaseRevenue != 1000 || a.MarketValueOfEquity != 400 || a.TotalDebt != 0 {
		t.Errorf("Unexpected seeded balances %+v", a)
	}
}
