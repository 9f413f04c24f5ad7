// Package ratio derives trailing historical ratios from resolved statements.
package ratio

import (
	"strconv"

	"dcf_valuation/pkg/core/calc"
	"dcf_valuation/pkg/core/statement"
)

// TrailingYears is the number of historical years ratios are averaged over.
const TrailingYears = 3

// HistoricalRatios holds per-year series over the trailing window and their averages.
type HistoricalRatios struct {
	Years      []string `json:"years"`
	AnchorYear string   `json:"anchor_year"`
	Complete   bool     `json:"complete"`

	RevenueGrowthRates []float64 `json:"revenue_growth_rates"`
	OperatingMargins   []float64 `json:"operating_margins"`
	NetMargins         []float64 `json:"net_margins"`
	DepreciationRates  []float64 `json:"depreciation_rates"`
	CapexRates         []float64 `json:"capex_rates"`
	NWCRates           []float64 `json:"nwc_rates"`
	InterestRates      []float64 `json:"interest_rates"`

	AvgRevenueGrowthRate float64 `json:"avg_revenue_growth_rate"`
	AvgOperatingMargin   float64 `json:"avg_operating_margin"`
	AvgNetMargin         float64 `json:"avg_net_margin"`
	AvgDepreciationRate  float64 `json:"avg_depreciation_rate"`
	AvgCapexRate         float64 `json:"avg_capex_rate"`
	AvgNWCRate           float64 `json:"avg_nwc_rate"`
	AvgInterestRate      float64 `json:"avg_interest_rate"`

	// Drivers of the detailed statement model
	AvgGrossMargin        float64 `json:"avg_gross_margin"`
	AvgRdShareOfOpex      float64 `json:"avg_rd_share_of_opex"`
	AvgInterestIncomeRate float64 `json:"avg_interest_income_rate"`
	AvgOtherExpenseRate   float64 `json:"avg_other_expense_rate"`
	ReceivablesToRevenue  float64 `json:"receivables_to_revenue"`
	InventoryToRevenue    float64 `json:"inventory_to_revenue"`
	PayablesToRevenue     float64 `json:"payables_to_revenue"`
}

// AnchorYear returns the year preceding the first trailing year, the base for growth and capex.
func AnchorYear(first string) string {
	y, err := strconv.Atoi(first)
	if err != nil {
		return ""
	}
	return strconv.Itoa(y - 1)
}

// Extract computes HistoricalRatios over the last TrailingYears of the income statement.
// Returns nil when the set has no years at all.
func Extract(set *statement.Set) *HistoricalRatios {
	years := set.TrailingYears(TrailingYears)
	if len(years) == 0 {
		return nil
	}
	return ExtractForYears(set, years)
}

// ExtractForYears computes ratios over an explicit year window.
//
// Per year i (with the anchor year as i-1):
//
//	growth       = (rev_i - rev_{i-1}) / rev_{i-1}
//	depreciation = IS depreciation + COGM depreciation
//	capex        = (netPPE_i - netPPE_{i-1}) + depreciation_i
//	nwc          = AR_i + Inv_i - AP_i
//	interestRate = interestExpense_i / (ST borrowings + bonds + LT borrowings)
//
// Every non-positive denominator yields 0. An empty window yields nil.
func ExtractForYears(set *statement.Set, years []string) *HistoricalRatios {
	if set == nil || len(years) == 0 {
		return nil
	}
	is, bs, cogm := set.IncomeStatement, set.BalanceSheet, set.CostOfGoodsManufactured

	anchor := AnchorYear(years[0])
	allYears := append([]string{anchor}, years...)
	n := len(years)

	allRevenues := statement.GetValuesForYears(is, statement.Revenue, allYears)
	revenues := allRevenues[1:]
	operatingIncomes := statement.GetValuesForYears(is, statement.OperatingIncome, years)
	netIncomes := statement.GetValuesForYears(is, statement.NetIncome, years)

	// Total depreciation = income statement + cost of goods manufactured (zero when absent)
	depIS := statement.GetValuesForYears(is, statement.Depreciation, years)
	depCOGM := statement.GetValuesForYears(cogm, statement.Depreciation, years)
	depreciation := make([]float64, n)
	for i := range years {
		depreciation[i] = depIS[i] + depCOGM[i]
	}

	allPPE := statement.GetValuesForYears(bs, statement.NetPPE, allYears)
	capex := make([]float64, n)
	for i := range years {
		capex[i] = allPPE[i+1] - allPPE[i] + depreciation[i]
	}

	receivables := statement.GetValuesForYears(bs, statement.Receivables, years)
	inventories := statement.GetValuesForYears(bs, statement.Inventory, years)
	payables := statement.GetValuesForYears(bs, statement.Payables, years)
	nwc := make([]float64, n)
	for i := range years {
		nwc[i] = receivables[i] + inventories[i] - payables[i]
	}

	growth := make([]float64, n)
	for i := range years {
		growth[i] = calc.PositiveDiv(allRevenues[i+1]-allRevenues[i], allRevenues[i])
	}

	interestExpenses := statement.GetValuesForYears(is, statement.InterestExpense, years)
	debts := statement.GetSumOfValuesForYears(bs, statement.InterestDebtGroup, years)
	interestRates := calc.RatesOver(interestExpenses, debts)

	r := &HistoricalRatios{
		Years:      years,
		AnchorYear: anchor,
		Complete:   n >= TrailingYears,

		RevenueGrowthRates: growth,
		OperatingMargins:   calc.RatesOver(operatingIncomes, revenues),
		NetMargins:         calc.RatesOver(netIncomes, revenues),
		DepreciationRates:  calc.RatesOver(depreciation, revenues),
		CapexRates:         calc.RatesOver(capex, revenues),
		NWCRates:           calc.RatesOver(nwc, revenues),
		InterestRates:      interestRates,
	}

	r.AvgRevenueGrowthRate = calc.MeanFinite(r.RevenueGrowthRates)
	r.AvgOperatingMargin = calc.MeanFinite(r.OperatingMargins)
	r.AvgNetMargin = calc.MeanFinite(r.NetMargins)
	r.AvgDepreciationRate = calc.MeanFinite(r.DepreciationRates)
	r.AvgCapexRate = calc.MeanFinite(r.CapexRates)
	r.AvgNWCRate = calc.MeanFinite(r.NWCRates)
	r.AvgInterestRate = calc.MeanFinite(r.InterestRates)

	// R&D share of operating expenses
	rd := statement.GetValuesForYears(is, statement.RnD, years)
	opex := statement.GetSumOfValuesForYears(is, statement.OperatingCostGroup, years)

	r.AvgGrossMargin = avgRate(statement.GetValuesForYears(is, statement.GrossProfit, years), revenues)
	r.AvgRdShareOfOpex = calc.MeanFinite(calc.RatesOver(rd, opex))
	r.AvgInterestIncomeRate = avgRate(statement.GetValuesForYears(is, statement.InterestIncome, years), revenues)
	r.AvgOtherExpenseRate = avgRate(statement.GetSumOfValuesForYears(is, statement.OtherExpenseGroup, years), revenues)
	r.ReceivablesToRevenue = avgRate(receivables, revenues)
	r.InventoryToRevenue = avgRate(inventories, revenues)
	r.PayablesToRevenue = avgRate(payables, revenues)

	return r
}

func avgRate(values, bases []float64) float64 {
	return calc.MeanFinite(calc.RatesOver(values, bases))
}
