package analysis

import (
	"time"

	"dcf_valuation/pkg/core/calc"
)

// CompanyAnalysis is the historical ratio trend of one company, grouped by theme.
type CompanyAnalysis struct {
	Company       string    `json:"company"`
	Years         []string  `json:"years"`
	LastAnalyzed  time.Time `json:"last_analyzed"`
	Stability     []Metric  `json:"stability"`
	Profitability []Metric  `json:"profitability"`
	Activity      []Metric  `json:"activity"`
	Growth        []Metric  `json:"growth"`
	Risk          []Metric  `json:"risk"`
}

// Metric is one ratio tracked across the statement years.
type Metric struct {
	Name   string      `json:"name"`
	Unit   string      `json:"unit"`
	Values []YearValue `json:"values"`
}

// YearValue is one observation. Value is null in JSON when not computable.
type YearValue struct {
	Year  string     `json:"year"`
	Value calc.Value `json:"value"`
}

// Units
const (
	UnitPercent = "%"
	UnitTimes   = "x"
	UnitScore   = "score"
)

// Metric names
const (
	MetricDebtToEquity        = "debt_to_equity"
	MetricInterestCoverage    = "interest_coverage"
	MetricBorrowingDependency = "borrowing_dependency"
	MetricOperatingMargin     = "operating_margin"
	MetricROE                 = "roe"
	MetricROIC                = "roic"
	MetricReceivablesTurnover = "receivables_turnover"
	MetricInventoryTurnover   = "inventory_turnover"
	MetricAssetTurnover       = "total_asset_turnover"
	MetricAssetGrowth         = "total_asset_growth"
	MetricRevenueGrowth       = "revenue_growth"
	MetricNetIncomeGrowth     = "net_income_growth"
	MetricAltmanZPrime        = "altman_z_prime"
)

// Find returns the named metric from any group.
func (a *CompanyAnalysis) Find(name string) (Metric, bool) {
	for _, group := range [][]Metric{a.Stability, a.Profitability, a.Activity, a.Growth, a.Risk} {
		for _, m := range group {
			if m.Name == name {
				return m, true
			}
		}
	}
	return Metric{}, false
}

// At returns the metric value for year.
func (m Metric) At(year string) calc.Value {
	for _, v := range m.Values {
		if v.Year == year {
			return v.Value
		}
	}
	return calc.Invalid()
}
