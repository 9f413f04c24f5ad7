package projection

import (
	"math"
	"testing"

	"dcf_valuation/pkg/core/assumption"
)

func TestProjectFCFF_WorkedExample(t *testing.T) {
	years := ProjectFCFF(assumption.Defaults())
	if len(years) != 5 {
		t.Fatalf("Expected 5 years, got %d", len(years))
	}

	want := []float64{2284583.25, 2581579.0725, 2917184.351925, 3296418.31767525, 3724952.698973031}
	for i, y := range years {
		if math.Abs(y.FCFF-want[i]) > 1e-6 {
			t.Errorf("Year %d: expected FCFF %f, got %f", y.Year, want[i], y.FCFF)
		}
	}

	y1 := years[0]
	if math.Abs(y1.Revenue-34001700) > 1e-6 {
		t.Errorf("Expected year 1 revenue 34001700, got %f", y1.Revenue)
	}
	if math.Abs(y1.NOPAT-3825191.25) > 1e-6 {
		t.Errorf("Expected NOPAT 3825191.25, got %f", y1.NOPAT)
	}
	if math.Abs(y1.NWCChange-860574) > 1e-6 {
		t.Errorf("Expected NWC change 860574, got %f", y1.NWCChange)
	}

	cfs := CashFlows(years)
	if len(cfs) != 5 || cfs[4] != years[4].FCFF {
		t.Errorf("CashFlows does not match series: %v", cfs)
	}
}

func TestProjectFCFF_Horizon(t *testing.T) {
	a := assumption.Defaults()
	a.ProjectionYears = 10
	if got := len(ProjectFCFF(a)); got != 10 {
		t.Errorf("Expected 10 years, got %d", got)
	}

	a.ProjectionYears = 0
	if got := len(ProjectFCFF(a)); got != 5 {
		t.Errorf("Expected default horizon of 5, got %d", got)
	}
}

func TestProjectFCFF_DivergesFromDetailedModel(t *testing.T) {
	// Both models share inputs but compute cash flow differently.
	a := assumption.Defaults()
	opening := Opening{Revenue: a.BaseRevenue, BalanceSheet: BalanceSheet{TotalDebt: a.TotalDebt, Cash: a.CashAndEquivalents}}
	detailed := ProjectStatements(opening, a, nil)
	light := ProjectFCFF(a)

	if math.Abs(detailed[0].IncomeStatement.Revenue-light[0].Revenue) > 1e-6 {
		t.Errorf("Year 1 revenue should agree: %f vs %f", detailed[0].IncomeStatement.Revenue, light[0].Revenue)
	}
	implied := detailed[0].CashFlow.NetChangeInCash
	if math.Abs(implied-light[0].FCFF) < 1e-6 {
		t.Errorf("Expected the detailed cash flow to differ from FCFF, both %f", implied)
	}
}
