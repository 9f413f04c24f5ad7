// Package valuation discounts the FCFF series to enterprise and equity value and
// revalues it across a sensitivity grid and hypothetical capital structures.
// Every function is pure; "cannot compute" results are explicit invalid values.
package valuation

import (
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/calc"
)

// WACCInput parameters for calculating Cost of Capital
type WACCInput struct {
	RiskFreeRate        float64
	Beta                float64
	EquityRiskPremium   float64
	CostOfDebt          float64 // Pre-tax
	TaxRate             float64
	MarketValueOfEquity float64
	TotalDebt           float64
}

// WACCResult holds the calculated rates
type WACCResult struct {
	CostOfEquity       float64 `json:"cost_of_equity"`
	AfterTaxCostOfDebt float64 `json:"after_tax_cost_of_debt"`
	EquityWeight       float64 `json:"equity_weight"`
	DebtWeight         float64 `json:"debt_weight"`
	WACC               float64 `json:"wacc"`
}

// WACCInputFrom maps assumptions onto the calculator input.
func WACCInputFrom(a assumption.Assumptions) WACCInput {
	return WACCInput{
		RiskFreeRate:        a.RiskFreeRate,
		Beta:                a.Beta,
		EquityRiskPremium:   a.EquityRiskPremium,
		CostOfDebt:          a.CostOfDebt,
		TaxRate:             a.TaxRate,
		MarketValueOfEquity: a.MarketValueOfEquity,
		TotalDebt:           a.TotalDebt,
	}
}

// CalculateWACC computes the Weighted Average Cost of Capital from market weights.
//
// FORMULA:
//
//	Ke   = Rf + β × ERP
//	Kd'  = Kd × (1 - t)
//	E/V  = E' / (E' + D),  E' = max(E, 1) when E <= 0
//	D/V  = 1 - E/V
//	WACC = E/V × Ke + D/V × Kd'
func CalculateWACC(input WACCInput) WACCResult {
	// 1. Cost of Equity (CAPM)
	ke := calc.CostOfEquityCAPM(input.RiskFreeRate, input.Beta, input.EquityRiskPremium)

	// 2. Cost of Debt (After-tax)
	kd := calc.AfterTaxCostOfDebt(input.CostOfDebt, input.TaxRate)

	// 3. Weights
	equity := input.MarketValueOfEquity
	if equity <= 0 {
		equity = 1
	}
	we := calc.SafeDiv(equity, equity+input.TotalDebt)
	wd := 1 - we

	// 4. WACC
	return WACCResult{
		CostOfEquity:       ke,
		AfterTaxCostOfDebt: kd,
		EquityWeight:       we,
		DebtWeight:         wd,
		WACC:               calc.WACC(ke, we, kd, wd),
	}
}
