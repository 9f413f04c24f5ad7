// Package analysis computes the historical financial-ratio trend that accompanies a valuation.
package analysis

import (
	"fmt"
	"math"
	"time"

	"dcf_valuation/pkg/core/calc"
	"dcf_valuation/pkg/core/statement"
)

// AnalysisEngine computes ratio trends from resolved statements.
type AnalysisEngine struct{}

// NewAnalysisEngine creates a new instance of the engine.
func NewAnalysisEngine() *AnalysisEngine {
	return &AnalysisEngine{}
}

// Analyze computes stability, profitability, activity and growth ratios for every
// statement year. Missing inputs and zero denominators give invalid values.
func (e *AnalysisEngine) Analyze(set *statement.Set) (*CompanyAnalysis, error) {
	if set == nil {
		return nil, fmt.Errorf("statement set is nil")
	}

	years := set.Years()
	result := &CompanyAnalysis{
		Company:      set.CompanyName,
		Years:        years,
		LastAnalyzed: time.Now(),
	}

	series := map[string][]YearValue{}
	add := func(name, year string, v calc.Value) {
		series[name] = append(series[name], YearValue{Year: year, Value: v})
	}

	for i, year := range years {
		y := snapshotFor(set, year)

		// 1. Stability
		add(MetricDebtToEquity, year, percent(ratioOf(y.totalLiabilities, y.totalEquity)))
		add(MetricInterestCoverage, year, ratioOf(y.operatingIncome, y.interestExpense))
		add(MetricBorrowingDependency, year, percent(ratioOf(present(y.borrowings), y.totalAssets)))

		// 2. Profitability
		add(MetricOperatingMargin, year, percent(ratioOf(y.operatingIncome, y.revenue)))
		add(MetricROE, year, percent(ratioOf(y.netIncome, y.totalEquity)))
		add(MetricROIC, year, percent(roic(y)))

		// 3. Activity
		add(MetricReceivablesTurnover, year, ratioOf(y.revenue, y.receivables))
		add(MetricInventoryTurnover, year, ratioOf(y.cogs, y.inventory))
		add(MetricAssetTurnover, year, ratioOf(y.revenue, y.totalAssets))

		// 4. Risk
		add(MetricAltmanZPrime, year, altmanZPrime(y))

		// 5. Growth (vs. prior statement year)
		if i == 0 {
			add(MetricAssetGrowth, year, calc.Invalid())
			add(MetricRevenueGrowth, year, calc.Invalid())
			add(MetricNetIncomeGrowth, year, calc.Invalid())
			continue
		}
		p := snapshotFor(set, years[i-1])
		add(MetricAssetGrowth, year, growth(y.totalAssets, p.totalAssets))
		add(MetricRevenueGrowth, year, growth(y.revenue, p.revenue))
		add(MetricNetIncomeGrowth, year, growth(y.netIncome, p.netIncome))
	}

	metric := func(name, unit string) Metric {
		return Metric{Name: name, Unit: unit, Values: series[name]}
	}

	result.Stability = []Metric{
		metric(MetricDebtToEquity, UnitPercent),
		metric(MetricInterestCoverage, UnitTimes),
		metric(MetricBorrowingDependency, UnitPercent),
	}
	result.Profitability = []Metric{
		metric(MetricOperatingMargin, UnitPercent),
		metric(MetricROE, UnitPercent),
		metric(MetricROIC, UnitPercent),
	}
	result.Activity = []Metric{
		metric(MetricReceivablesTurnover, UnitTimes),
		metric(MetricInventoryTurnover, UnitTimes),
		metric(MetricAssetTurnover, UnitTimes),
	}
	result.Growth = []Metric{
		metric(MetricAssetGrowth, UnitPercent),
		metric(MetricRevenueGrowth, UnitPercent),
		metric(MetricNetIncomeGrowth, UnitPercent),
	}
	result.Risk = []Metric{
		metric(MetricAltmanZPrime, UnitScore),
	}

	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// yearSnapshot holds one year's inputs; invalid fields were absent from the statements.
type yearSnapshot struct {
	revenue, cogs, operatingIncome, netIncome   calc.Value
	interestExpense, incomeBeforeTax, incomeTax calc.Value
	totalAssets, totalLiabilities, totalEquity  calc.Value
	cash, receivables, inventory                calc.Value
	currentAssets, currentLiabilities           calc.Value
	retainedEarnings                            calc.Value
	borrowings                                  float64
}

func snapshotFor(set *statement.Set, year string) yearSnapshot {
	is, bs := set.IncomeStatement, set.BalanceSheet
	get := func(s *statement.Statement, key statement.AccountKey) calc.Value {
		if v, ok := statement.Lookup(s, key, year); ok {
			return calc.Valid(v)
		}
		return calc.Invalid()
	}

	return yearSnapshot{
		revenue:          get(is, statement.Revenue),
		cogs:             get(is, statement.COGS),
		operatingIncome:  get(is, statement.OperatingIncome),
		netIncome:        get(is, statement.NetIncome),
		interestExpense:  get(is, statement.InterestExpense),
		incomeBeforeTax:  get(is, statement.IncomeBeforeTax),
		incomeTax:        get(is, statement.IncomeTax),
		totalAssets:      get(bs, statement.TotalAssets),
		totalLiabilities: get(bs, statement.TotalLiabilities),
		totalEquity:      get(bs, statement.TotalEquity),
		cash:             get(bs, statement.CashAndEquivalents),
		receivables:      get(bs, statement.Receivables),
		inventory:        get(bs, statement.Inventory),

		currentAssets:      get(bs, statement.CurrentAssets),
		currentLiabilities: get(bs, statement.CurrentLiabilities),
		retainedEarnings:   get(bs, statement.RetainedEarnings),
		// Missing borrowing lines count as zero debt.
		borrowings: statement.GetSumOfValuesForYears(bs, statement.InterestDebtGroup, []string{year})[0],
	}
}

func present(v float64) calc.Value {
	return calc.Valid(v)
}

// ratioOf is num/den, invalid when either side is missing or den == 0.
func ratioOf(num, den calc.Value) calc.Value {
	if !num.Valid || !den.Valid {
		return calc.Invalid()
	}
	return calc.NonZeroRatio(num.V, den.V)
}

func percent(v calc.Value) calc.Value {
	return v.Map(func(f float64) float64 { return f * 100 })
}

// growth is measured against |prior| so a loss turning into a profit reads positive.
func growth(current, prior calc.Value) calc.Value {
	if !current.Valid || !prior.Valid || prior.V == 0 {
		return calc.Invalid()
	}
	return calc.Valid((current.V - prior.V) / math.Abs(prior.V) * 100)
}

// roic = NOPAT / (equity + borrowings - cash), with NOPAT taxed at the effective rate.
//
// FORMULA: NOPAT = EBIT × (1 - tax / EBT)   (tax rate 0 when EBT <= 0)
func roic(y yearSnapshot) calc.Value {
	if !y.operatingIncome.Valid || !y.totalEquity.Valid || !y.cash.Valid {
		return calc.Invalid()
	}

	taxRate := 0.0
	if y.incomeBeforeTax.Valid && y.incomeBeforeTax.V > 0 && y.incomeTax.Valid {
		taxRate = y.incomeTax.V / y.incomeBeforeTax.V
	}
	nopat := y.operatingIncome.V * (1 - taxRate)
	investedCapital := y.totalEquity.V + y.borrowings - y.cash.V
	return calc.NonZeroRatio(nopat, investedCapital)
}

// altmanZPrime scores the private-firm model from book values.
func altmanZPrime(y yearSnapshot) calc.Value {
	for _, v := range []calc.Value{
		y.currentAssets, y.currentLiabilities, y.retainedEarnings, y.operatingIncome,
		y.totalEquity, y.revenue, y.totalAssets, y.totalLiabilities,
	} {
		if !v.Valid {
			return calc.Invalid()
		}
	}
	wc := y.currentAssets.V - y.currentLiabilities.V
	return calc.AltmanZPrimeScore(wc, y.retainedEarnings.V, y.operatingIncome.V,
		y.totalEquity.V, y.revenue.V, y.totalAssets.V, y.totalLiabilities.V)
}
