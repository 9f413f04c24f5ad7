// Package projection builds the forward models of the valuation:
// an articulated three-statement model (ProjectStatements) and a
// lightweight FCFF series (ProjectFCFF). The two share inputs but are
// computed independently and may disagree.
package projection

import (
	"math"
	"strconv"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/calc"
	"dcf_valuation/pkg/core/ratio"
	"dcf_valuation/pkg/core/statement"
)

// DriversFromRatios picks the detailed-model drivers out of the historical ratios.
// A nil ratio set yields zero drivers.
func DriversFromRatios(r *ratio.HistoricalRatios) Drivers {
	if r == nil {
		return Drivers{}
	}
	return Drivers{
		GrossMargin:        r.AvgGrossMargin,
		RdShareOfOpex:      r.AvgRdShareOfOpex,
		InterestIncomeRate: r.AvgInterestIncomeRate,
		OtherExpenseRate:   r.AvgOtherExpenseRate,
		ReceivablesRatio:   r.ReceivablesToRevenue,
		InventoryRatio:     r.InventoryToRevenue,
		PayablesRatio:      r.PayablesToRevenue,
	}
}

// OpeningBalances builds the year-0 balance sheet from the latest statement year.
//
// Revenue, cash and debt come from the assumptions; working-capital items are
// base revenue × historical ratio; the "other" buckets are residuals:
//
//	other current assets        = current assets - cash group - AR - inventory
//	other current liabilities   = current liabilities - AP - ST borrowings
//	other non-current assets    = non-current assets - net PPE - investments
//	other non-current liabs     = non-current liabilities - bonds - LT borrowings
func OpeningBalances(set *statement.Set, a assumption.Assumptions, r *ratio.HistoricalRatios) Opening {
	d := DriversFromRatios(r)
	year := set.LatestYear()

	var bs *statement.Statement
	if set != nil {
		bs = set.BalanceSheet
	}
	get := func(key statement.AccountKey) float64 {
		return statement.GetLatestValue(bs, key, year)
	}
	sum := func(keys []statement.AccountKey) float64 {
		return statement.GetSumOfValuesForYears(bs, keys, []string{year})[0]
	}

	opening := BalanceSheet{
		Cash:        a.CashAndEquivalents,
		TotalDebt:   a.TotalDebt,
		Receivables: a.BaseRevenue * d.ReceivablesRatio,
		Inventory:   a.BaseRevenue * d.InventoryRatio,
		Payables:    a.BaseRevenue * d.PayablesRatio,

		NetPPE: get(statement.NetPPE),

		OtherCurrentAssets: get(statement.CurrentAssets) - sum(statement.CashGroup) -
			get(statement.Receivables) - get(statement.Inventory),
		OtherCurrentLiabilities: get(statement.CurrentLiabilities) - get(statement.Payables) -
			get(statement.ShortTermBorrowings),
		OtherNonCurrentAssets: get(statement.NonCurrentAssets) - get(statement.NetPPE) -
			sum(statement.InvestmentGroup),
		OtherNonCurrentLiabilities: get(statement.NonCurrentLiabilities) - get(statement.Bonds) -
			get(statement.LongTermBorrowings),

		CapitalStock:     get(statement.CapitalStock),
		RetainedEarnings: get(statement.RetainedEarnings),
		AccumulatedOCI:   get(statement.AccumulatedOCI),
	}
	opening.computeTotals()

	return Opening{
		BaseYear:     year,
		Revenue:      a.BaseRevenue,
		BalanceSheet: opening,
	}
}

// ProjectStatements rolls the opening balances forward for a.Horizon() years.
func ProjectStatements(opening Opening, a assumption.Assumptions, r *ratio.HistoricalRatios) []ProjectionYear {
	d := DriversFromRatios(r)
	n := a.Horizon()

	years := make([]ProjectionYear, 0, n)
	prevRevenue := opening.Revenue
	prevBS := opening.BalanceSheet

	for t := 1; t <= n; t++ {
		py := projectYear(prevRevenue, prevBS, a, d)
		py.Year = t
		py.FiscalYear = fiscalYearLabel(opening.BaseYear, t)

		years = append(years, py)
		prevRevenue = py.IncomeStatement.Revenue
		prevBS = py.BalanceSheet
	}
	return years
}

func fiscalYearLabel(base string, offset int) string {
	y, err := strconv.Atoi(base)
	if err != nil {
		return ""
	}
	return strconv.Itoa(y + offset)
}

// projectYear calculates T+1 from T.
func projectYear(prevRevenue float64, prevBS BalanceSheet, a assumption.Assumptions, d Drivers) ProjectionYear {
	// 1. Income Statement
	is := projectIncomeStatement(prevRevenue, prevBS, a, d)

	// 2. Balance Sheet (cash plug)
	depreciation := is.Revenue * a.DepreciationRate
	capex := is.Revenue * a.CapexRate
	bs := projectBalanceSheet(prevBS, is, depreciation, capex, a, d)

	// 3. Cash Flow
	cf := projectCashFlow(prevBS, bs, is.NetIncome, depreciation, capex)

	return ProjectionYear{
		IncomeStatement: is,
		BalanceSheet:    bs,
		CashFlow:        cf,
		CashFlowGap:     cf.NetChangeInCash - (bs.Cash - prevBS.Cash),
	}
}

// projectIncomeStatement
//
// FORMULA:
//
//	Revenue_t = Revenue_{t-1} × (1 + g)
//	GP        = Revenue × gross margin
//	EBIT      = Revenue × EBIT margin
//	OpEx      = GP - EBIT, split R&D (OpEx × R&D share) / SG&A (remainder)
//	EBT       = EBIT + interest income - interest expense - other expenses
//	Tax       = max(0, EBT × t)
func projectIncomeStatement(prevRevenue float64, prevBS BalanceSheet, a assumption.Assumptions, d Drivers) IncomeStatement {
	revenue := calc.ProjectFromGrowth(prevRevenue, a.RevenueGrowthRate)
	grossProfit := calc.ProjectFromRatio(revenue, d.GrossMargin)
	ebit := calc.ProjectFromRatio(revenue, a.EBITMargin)
	opex := grossProfit - ebit

	is := IncomeStatement{
		Revenue:         revenue,
		COGS:            revenue - grossProfit,
		GrossProfit:     grossProfit,
		RnD:             opex * d.RdShareOfOpex,
		SGA:             opex * (1 - d.RdShareOfOpex),
		EBIT:            ebit,
		InterestIncome:  calc.ProjectFromRatio(revenue, d.InterestIncomeRate),
		InterestExpense: prevBS.TotalDebt * a.CostOfDebt, // Debt held constant, no amortization
		OtherExpenses:   calc.ProjectFromRatio(revenue, d.OtherExpenseRate),
	}
	is.EBT = is.EBIT + is.InterestIncome - is.InterestExpense - is.OtherExpenses
	is.Taxes = math.Max(0, is.EBT*a.TaxRate)
	is.NetIncome = is.EBT - is.Taxes
	return is
}

// projectBalanceSheet rolls every non-cash line forward and solves cash as the plug.
func projectBalanceSheet(prevBS BalanceSheet, is IncomeStatement, depreciation, capex float64, a assumption.Assumptions, d Drivers) BalanceSheet {
	g := a.RevenueGrowthRate

	bs := BalanceSheet{
		// A. Working capital scales with revenue
		Receivables: calc.ProjectFromRatio(is.Revenue, d.ReceivablesRatio),
		Inventory:   calc.ProjectFromRatio(is.Revenue, d.InventoryRatio),
		Payables:    calc.ProjectFromRatio(is.Revenue, d.PayablesRatio),

		// B. Other buckets grow with revenue growth
		OtherCurrentAssets:         calc.ProjectFromGrowth(prevBS.OtherCurrentAssets, g),
		OtherNonCurrentAssets:      calc.ProjectFromGrowth(prevBS.OtherNonCurrentAssets, g),
		OtherCurrentLiabilities:    calc.ProjectFromGrowth(prevBS.OtherCurrentLiabilities, g),
		OtherNonCurrentLiabilities: calc.ProjectFromGrowth(prevBS.OtherNonCurrentLiabilities, g),

		// C. PP&E rollforward
		NetPPE: prevBS.NetPPE + capex - depreciation,

		// D. Financing
		TotalDebt:        a.TotalDebt,
		CapitalStock:     prevBS.CapitalStock,
		AccumulatedOCI:   prevBS.AccumulatedOCI,
		RetainedEarnings: prevBS.RetainedEarnings + is.NetIncome,
	}

	// E. The plug: Cash = (L + E) - non-cash assets
	nonCashAssets := bs.Receivables + bs.Inventory + bs.OtherCurrentAssets + bs.NetPPE + bs.OtherNonCurrentAssets
	liabilities := bs.Payables + bs.OtherCurrentLiabilities + bs.TotalDebt + bs.OtherNonCurrentLiabilities
	equity := bs.CapitalStock + bs.RetainedEarnings + bs.AccumulatedOCI
	bs.Cash = liabilities + equity - nonCashAssets

	bs.computeTotals()
	return bs
}

// projectCashFlow derives the cash-flow statement from balance-sheet deltas.
//
// FORMULA:
//
//	CFO = NI + Dep - Δ(AR + Inv) + ΔAP - ΔOtherNCA + ΔOtherNCL
//	CFI = -Capex
//	CFF = ΔDebt - buybacks - dividends
func projectCashFlow(prevBS, bs BalanceSheet, netIncome, depreciation, capex float64) CashFlowStatement {
	cf := CashFlowStatement{
		NetIncome:                          netIncome,
		Depreciation:                       depreciation,
		ChangeInOperatingAssets:            (bs.Receivables + bs.Inventory) - (prevBS.Receivables + prevBS.Inventory),
		ChangeInOperatingLiabilities:       bs.Payables - prevBS.Payables,
		ChangeInOtherNonCurrentAssets:      bs.OtherNonCurrentAssets - prevBS.OtherNonCurrentAssets,
		ChangeInOtherNonCurrentLiabilities: bs.OtherNonCurrentLiabilities - prevBS.OtherNonCurrentLiabilities,
		Capex:                              capex,
		ChangeInDebt:                       bs.TotalDebt - prevBS.TotalDebt,
	}

	cf.CFO = cf.NetIncome + cf.Depreciation - cf.ChangeInOperatingAssets + cf.ChangeInOperatingLiabilities -
		cf.ChangeInOtherNonCurrentAssets + cf.ChangeInOtherNonCurrentLiabilities
	cf.CFI = -cf.Capex
	cf.CFF = cf.ChangeInDebt - cf.ShareRepurchases - cf.Dividends
	cf.NetChangeInCash = cf.CFO + cf.CFI + cf.CFF
	return cf
}

func (bs *BalanceSheet) computeTotals() {
	bs.TotalAssets = bs.Cash + bs.Receivables + bs.Inventory + bs.OtherCurrentAssets + bs.NetPPE + bs.OtherNonCurrentAssets
	bs.TotalLiabilities = bs.Payables + bs.OtherCurrentLiabilities + bs.TotalDebt + bs.OtherNonCurrentLiabilities
	bs.TotalEquity = bs.CapitalStock + bs.RetainedEarnings + bs.AccumulatedOCI
	bs.Check = bs.TotalAssets - (bs.TotalLiabilities + bs.TotalEquity)
}
