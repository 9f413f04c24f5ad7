package projection_test

import (
	"math"
	"testing"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/core/ratio"
	"dcf_valuation/pkg/core/statement"
)

func sampleRatios() *ratio.HistoricalRatios {
	return &ratio.HistoricalRatios{
		AvgGrossMargin:        0.4,
		AvgRdShareOfOpex:      0.2,
		AvgInterestIncomeRate: 0.01,
		AvgOtherExpenseRate:   0.005,
		ReceivablesToRevenue:  0.1,
		InventoryToRevenue:    0.08,
		PayablesToRevenue:     0.06,
	}
}

func sampleOpening() projection.Opening {
	return projection.Opening{
		BaseYear: "2023",
		Revenue:  1000,
		BalanceSheet: projection.BalanceSheet{
			Cash:                       100,
			Receivables:                100,
			Inventory:                  80,
			OtherCurrentAssets:         30,
			NetPPE:                     500,
			OtherNonCurrentAssets:      70,
			Payables:                   60,
			OtherCurrentLiabilities:    50,
			TotalDebt:                  300,
			OtherNonCurrentLiabilities: 60,
			CapitalStock:               200,
			RetainedEarnings:           190,
			AccumulatedOCI:             20,
		},
	}
}

func TestProjectStatements_Balancing(t *testing.T) {
	a := assumption.Defaults()
	a.BaseRevenue = 1000
	a.TotalDebt = 300

	years := projection.ProjectStatements(sampleOpening(), a, sampleRatios())
	if len(years) != 5 {
		t.Fatalf("Expected 5 projection years, got %d", len(years))
	}

	for _, y := range years {
		bs := y.BalanceSheet
		if math.Abs(bs.Check) > 1e-6 {
			t.Errorf("Year %d: balance sheet does not balance, check = %f", y.Year, bs.Check)
		}
		if math.Abs(bs.TotalAssets-(bs.TotalLiabilities+bs.TotalEquity)) > 1e-6 {
			t.Errorf("Year %d: assets %f != L+E %f", y.Year, bs.TotalAssets, bs.TotalLiabilities+bs.TotalEquity)
		}
	}

	if years[0].FiscalYear != "2024" || years[4].FiscalYear != "2028" {
		t.Errorf("Unexpected fiscal years %s..%s", years[0].FiscalYear, years[4].FiscalYear)
	}
}

func TestProjectStatements_IncomeStatement(t *testing.T) {
	a := assumption.Defaults()
	a.BaseRevenue = 1000
	a.TotalDebt = 300
	a.RevenueGrowthRate = 0.10
	a.EBITMargin = 0.15
	a.CostOfDebt = 0.05
	a.TaxRate = 0.25

	y1 := projection.ProjectStatements(sampleOpening(), a, sampleRatios())[0]
	is := y1.IncomeStatement

	checks := []struct {
		name      string
		got, want float64
	}{
		{"revenue", is.Revenue, 1100},
		{"gross profit", is.GrossProfit, 440},
		{"cogs", is.COGS, 660},
		{"ebit", is.EBIT, 165},
		{"rnd", is.RnD, 55},  // (440 - 165) × 0.2
		{"sga", is.SGA, 220}, // remainder of opex
		{"interest income", is.InterestIncome, 11},
		{"interest expense", is.InterestExpense, 15}, // 300 × 5%
		{"other expenses", is.OtherExpenses, 5.5},
		{"ebt", is.EBT, 155.5},
		{"taxes", is.Taxes, 38.875},
		{"net income", is.NetIncome, 116.625},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, c.got)
		}
	}

	bs := y1.BalanceSheet
	if math.Abs(bs.NetPPE-(500+1100*a.CapexRate-1100*a.DepreciationRate)) > 1e-9 {
		t.Errorf("Unexpected net PPE %f", bs.NetPPE)
	}
	if math.Abs(bs.RetainedEarnings-(190+116.625)) > 1e-9 {
		t.Errorf("Unexpected retained earnings %f", bs.RetainedEarnings)
	}
	if bs.CapitalStock != 200 || bs.AccumulatedOCI != 20 || bs.TotalDebt != 300 {
		t.Errorf("Capital stock, OCI and debt should be held constant: %+v", bs)
	}
	if math.Abs(bs.OtherCurrentAssets-33) > 1e-9 {
		t.Errorf("Other current assets should grow at g, got %f", bs.OtherCurrentAssets)
	}

	// Revenue compounds year over year.
	years := projection.ProjectStatements(sampleOpening(), a, sampleRatios())
	if math.Abs(years[2].IncomeStatement.Revenue-1331) > 1e-9 {
		t.Errorf("Expected year 3 revenue 1331, got %f", years[2].IncomeStatement.Revenue)
	}
}

func TestProjectStatements_NoNegativeTax(t *testing.T) {
	a := assumption.Defaults()
	a.BaseRevenue = 1000
	a.EBITMargin = -0.2

	for _, y := range projection.ProjectStatements(sampleOpening(), a, sampleRatios()) {
		if y.IncomeStatement.Taxes != 0 {
			t.Errorf("Year %d: expected zero tax on a loss, got %f", y.Year, y.IncomeStatement.Taxes)
		}
		if y.IncomeStatement.NetIncome != y.IncomeStatement.EBT {
			t.Errorf("Year %d: net income should equal EBT on a loss", y.Year)
		}
	}
}

func TestProjectStatements_CashFlowGap(t *testing.T) {
	a := assumption.Defaults()
	a.BaseRevenue = 1000
	a.TotalDebt = 300

	years := projection.ProjectStatements(sampleOpening(), a, sampleRatios())
	for i := 1; i < len(years); i++ {
		prev, cur := years[i-1].BalanceSheet, years[i].BalanceSheet
		cf := years[i].CashFlow

		if cf.CFI != -cf.Capex {
			t.Errorf("Year %d: CFI should equal -capex", years[i].Year)
		}
		if math.Abs(cf.NetChangeInCash-(cf.CFO+cf.CFI+cf.CFF)) > 1e-9 {
			t.Errorf("Year %d: net change does not sum", years[i].Year)
		}

		// The derived statement omits other current items, which is exactly the gap.
		want := (cur.OtherCurrentAssets - prev.OtherCurrentAssets) - (cur.OtherCurrentLiabilities - prev.OtherCurrentLiabilities)
		if math.Abs(years[i].CashFlowGap-want) > 1e-6 {
			t.Errorf("Year %d: expected gap %f, got %f", years[i].Year, want, years[i].CashFlowGap)
		}
	}
}

func TestOpeningBalances_Sample(t *testing.T) {
	set, err := statement.LoadFile("../../statement/testdata/sample.json")
	if err != nil {
		t.Fatalf("Failed to load sample: %v", err)
	}
	r := ratio.Extract(set)

	a := assumption.Defaults()
	a.BaseRevenue = 1500
	a.CashAndEquivalents = 150
	a.TotalDebt = 300

	o := projection.OpeningBalances(set, a, r)
	bs := o.BalanceSheet

	checks := []struct {
		name      string
		got, want float64
	}{
		{"net ppe", bs.NetPPE, 600},
		{"other current assets", bs.OtherCurrentAssets, 30},
		{"other current liabilities", bs.OtherCurrentLiabilities, 50},
		{"other non-current assets", bs.OtherNonCurrentAssets, 70},
		{"other non-current liabilities", bs.OtherNonCurrentLiabilities, 60},
		{"capital stock", bs.CapitalStock, 200},
		{"retained earnings", bs.RetainedEarnings, 480},
		{"oci", bs.AccumulatedOCI, 20},
		{"cash", bs.Cash, 150},
		{"debt", bs.TotalDebt, 300},
		{"receivables", bs.Receivables, 150},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, c.got)
		}
	}
	if o.BaseYear != "2023" || o.Revenue != 1500 {
		t.Errorf("Unexpected opening header: %+v", o)
	}
}

func TestOpeningBalances_NilSet(t *testing.T) {
	o := projection.OpeningBalances(nil, assumption.Defaults(), nil)
	if o.BaseYear != "" || o.BalanceSheet.NetPPE != 0 {
		t.Errorf("Expected empty opening without statements, got %+v", o)
	}
	years := projection.ProjectStatements(o, assumption.Defaults(), nil)
	if len(years) != 5 || years[0].FiscalYear != "" {
		t.Errorf("Expected unlabeled projection, got %d years", len(years))
	}
}
