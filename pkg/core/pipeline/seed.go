package pipeline

import (
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/ratio"
	"dcf_valuation/pkg/core/statement"
)

// Fallbacks used when a historical average is not positive.
const (
	FallbackGrowthRate       = 0.10
	FallbackEBITMargin       = 0.15
	FallbackDepreciationRate = 0.13
	FallbackCapexRate        = 0.15
	FallbackNWCRate          = 0.22
	FallbackCostOfDebt       = 0.045
)

// SeedAssumptions derives a starting parameter set from the latest statement year
// and the trailing ratio averages. Market inputs (rates, beta, shares) keep their defaults.
func SeedAssumptions(set *statement.Set) assumption.Assumptions {
	a := assumption.Defaults()
	year := set.LatestYear()
	if year == "" {
		return a
	}

	a.BaseRevenue = statement.GetLatestValue(set.IncomeStatement, statement.Revenue, year)
	// Book equity stands in for market value until a price is supplied.
	a.MarketValueOfEquity = statement.GetLatestValue(set.BalanceSheet, statement.TotalEquity, year)
	a.TotalDebt = statement.GetSumOfValuesForYears(set.BalanceSheet, statement.InterestDebtGroup, []string{year})[0]
	a.CashAndEquivalents = statement.GetSumOfValuesForYears(set.BalanceSheet, statement.CashGroup, []string{year})[0]
	a.AdditionalCashLikeAssets = 0

	r := ratio.Extract(set)
	if r == nil {
		return a
	}
	a.RevenueGrowthRate = positiveOr(r.AvgRevenueGrowthRate, FallbackGrowthRate)
	a.EBITMargin = positiveOr(r.AvgOperatingMargin, FallbackEBITMargin)
	a.DepreciationRate = positiveOr(r.AvgDepreciationRate, FallbackDepreciationRate)
	a.CapexRate = positiveOr(r.AvgCapexRate, FallbackCapexRate)
	a.NWCRate = positiveOr(r.AvgNWCRate, FallbackNWCRate)
	a.CostOfDebt = positiveOr(r.AvgInterestRate, FallbackCostOfDebt)
	return a
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
