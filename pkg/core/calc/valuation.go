// Package calc provides the deterministic numeric primitives shared by the valuation engine.
// This file implements the cost-of-capital and discounting formulas.
package calc

import (
	"math"
)

// =============================================================================
// COST OF CAPITAL
// =============================================================================

// CostOfEquityCAPM calculates required return on equity using CAPM.
//
// FORMULA: r_e = r_f + β × ERP
//
// Where:
//   - r_f = Risk-free rate
//   - β = Equity beta (market sensitivity)
//   - ERP = Equity risk premium
func CostOfEquityCAPM(riskFreeRate, beta, equityRiskPremium float64) float64 {
	return riskFreeRate + beta*equityRiskPremium
}

// AfterTaxCostOfDebt applies the interest tax shield.
//
// FORMULA: r_d × (1 - T)
func AfterTaxCostOfDebt(costOfDebt, taxRate float64) float64 {
	return costOfDebt * (1 - taxRate)
}

// WACC calculates Weighted Average Cost of Capital.
//
// FORMULA: WACC = r_e × (E/V) + r_d(1-T) × (D/V)
func WACC(costOfEquity, equityWeight, afterTaxCostOfDebt, debtWeight float64) float64 {
	return equityWeight*costOfEquity + debtWeight*afterTaxCostOfDebt
}

// ReleverBeta applies the Hamada equation.
//
// FORMULA: β_L = β_U × (1 + (1 - T) × D/E)
func ReleverBeta(unleveredBeta, taxRate, debtToEquity float64) float64 {
	return unleveredBeta * (1 + (1-taxRate)*debtToEquity)
}

// UnleverBeta inverts the Hamada equation.
//
// FORMULA: β_U = β_L / (1 + (1 - T) × D/E)
func UnleverBeta(leveredBeta, taxRate, debtToEquity float64) float64 {
	return SafeDiv(leveredBeta, 1+(1-taxRate)*debtToEquity)
}

// =============================================================================
// DISCOUNTING
// =============================================================================

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, period int) float64 {
	if period < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(period))
}

// PresentValues discounts each cash flow at end of period t = 1..n.
func PresentValues(cashFlows []float64, discountRate float64) []float64 {
	out := make([]float64, len(cashFlows))
	for i, cf := range cashFlows {
		out[i] = PresentValue(cf, discountRate, i+1)
	}
	return out
}

// PresentValueOfCashFlows calculates PV of a series of cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ]
//
// Cash flows are assumed to be at end of each period (ordinary annuity).
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += PresentValue(cf, discountRate, t+1)
	}
	return pv
}

// TerminalValueGordonGrowth capitalizes the final cash flow grown one period.
//
// FORMULA: TV = CF_N × (1 + g) / (r - g)
//
// Returns an invalid Value when r <= g.
func TerminalValueGordonGrowth(finalCashFlow, discountRate, growthRate float64) Value {
	if discountRate <= growthRate {
		return Invalid()
	}
	return Valid(finalCashFlow * (1 + growthRate) / (discountRate - growthRate))
}

// ProjectFromGrowth compounds a prior amount by one period.
//
// FORMULA: Amount_t = Amount_{t-1} × (1 + g)
func ProjectFromGrowth(priorAmount, growthRate float64) float64 {
	return priorAmount * (1 + growthRate)
}

// ProjectFromRatio scales revenue by a common-size ratio.
//
// FORMULA: Amount = Revenue × Ratio
func ProjectFromRatio(revenue, ratio float64) float64 {
	return revenue * ratio
}
