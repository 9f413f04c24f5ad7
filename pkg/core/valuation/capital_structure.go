package valuation

import (
	"encoding/json"
	"math"
	"sort"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/calc"
)

// =============================================================================
// CREDIT SPREAD TIERS
// =============================================================================

// PremiumTier adds Premium to the base cost of debt once D/E reaches Threshold.
type PremiumTier struct {
	Threshold float64
	Premium   float64
}

// PremiumTiers is ordered by ascending threshold.
var PremiumTiers = []PremiumTier{
	{0.0, 0.000},
	{0.2, 0.002},
	{0.4, 0.005},
	{0.6, 0.010},
	{1.0, 0.020},
	{1.5, 0.030},
	{2.0, 0.040},
	{3.0, 0.050},
	{5.0, 0.060},
}

const (
	// DebtSteps is the number of simulated D/V weights: 0%, 10%, ... 90%.
	DebtSteps = 10

	// BaseSpread is added to the risk-free rate for the unlevered cost of debt.
	BaseSpread = 0.01
	// MaxLeveredBeta caps relevered beta.
	MaxLeveredBeta = 2.0
	minEquityRatio = 0.001
)

// DebtPremium returns the premium of the highest tier whose threshold is <= de.
func DebtPremium(de float64) float64 {
	// First tier strictly above de; the one before it applies.
	idx := sort.Search(len(PremiumTiers), func(i int) bool {
		return PremiumTiers[i].Threshold > de
	})
	if idx == 0 {
		return 0
	}
	return PremiumTiers[idx-1].Premium
}

// =============================================================================
// OPTIMIZER
// =============================================================================

// CapitalStructureScenario is one simulated debt weight.
type CapitalStructureScenario struct {
	DebtRatio          float64    `json:"debt_ratio"`
	EquityRatio        float64    `json:"equity_ratio"`
	DERatio            float64    `json:"de_ratio"`
	Premium            float64    `json:"premium"`
	LeveredBeta        float64    `json:"levered_beta"`
	CostOfDebt         float64    `json:"cost_of_debt"`
	AfterTaxCostOfDebt float64    `json:"after_tax_cost_of_debt"`
	CostOfEquity       float64    `json:"cost_of_equity"`
	WACC               float64    `json:"wacc"`
	EnterpriseValue    calc.Value `json:"enterprise_value"`
	Optimal            bool       `json:"optimal"`
}

// CapitalStructureAnalysis holds all scenarios and the selected optimum.
type CapitalStructureAnalysis struct {
	UnleveredBeta  float64                    `json:"unlevered_beta"`
	BaseCostOfDebt float64                    `json:"base_cost_of_debt"`
	Scenarios      []CapitalStructureScenario `json:"scenarios"`
	OptimalIndex   int                        `json:"optimal_index"`

	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Optimal returns the flagged scenario, or nil when none qualifies.
func (c *CapitalStructureAnalysis) Optimal() *CapitalStructureScenario {
	if c == nil || c.OptimalIndex < 0 || c.OptimalIndex >= len(c.Scenarios) {
		return nil
	}
	return &c.Scenarios[c.OptimalIndex]
}

// MarshalJSON renders an infinite D/E as null.
func (s CapitalStructureScenario) MarshalJSON() ([]byte, error) {
	type alias CapitalStructureScenario
	return json.Marshal(struct {
		alias
		DERatio calc.Value `json:"de_ratio"`
	}{alias(s), calc.Valid(s.DERatio)})
}

// OptimizeCapitalStructure re-derives WACC and EV for each debt weight.
//
// FORMULA:
//
//	βu   = β / (1 + (1 - t) × D/E)         D/E = debt / market equity
//	Kd'  = Rf + 1% + premium(D/E')         D/E' = d / (1 - d)
//	βL   = min(2, βu × (1 + (1 - t) × D/E'))
//	Ke'  = Rf + βL × ERP
//	WACC' = e × Ke' + d × Kd' × (1 - t)
//	EV'  = Σ PV(FCFF, WACC') + PV(TV, WACC')   invalid when WACC' <= g
//
// The optimum is the lowest WACC' among scenarios with a valid EV'.
func OptimizeCapitalStructure(a assumption.Assumptions, cashFlows []float64) CapitalStructureAnalysis {
	n := a.Horizon()
	switch {
	case a.Beta == 0:
		return CapitalStructureAnalysis{OptimalIndex: -1, Reason: ReasonMissingBeta}
	case a.MarketValueOfEquity <= 0:
		return CapitalStructureAnalysis{OptimalIndex: -1, Reason: ReasonMissingMarketEquity}
	case len(cashFlows) < n:
		return CapitalStructureAnalysis{OptimalIndex: -1, Reason: ReasonInsufficientYears}
	}

	currentDE := 0.0
	if a.TotalDebt > 0 && a.MarketValueOfEquity > 0 {
		currentDE = a.TotalDebt / a.MarketValueOfEquity
	}
	bu := calc.UnleverBeta(a.Beta, a.TaxRate, currentDE)
	baseKd := a.RiskFreeRate + BaseSpread
	flows := cashFlows[:n]

	out := CapitalStructureAnalysis{
		UnleveredBeta:  bu,
		BaseCostOfDebt: baseKd,
		Scenarios:      make([]CapitalStructureScenario, 0, DebtSteps),
		OptimalIndex:   -1,
		Available:      true,
	}

	best := math.Inf(1)
	for i := 0; i < DebtSteps; i++ {
		s := simulateScenario(a, flows, bu, baseKd, i)
		out.Scenarios = append(out.Scenarios, s)
		if s.EnterpriseValue.Valid && s.WACC < best {
			best = s.WACC
			out.OptimalIndex = len(out.Scenarios) - 1
		}
	}
	if out.OptimalIndex >= 0 {
		out.Scenarios[out.OptimalIndex].Optimal = true
	}
	return out
}

// simulateScenario prices debt step i of DebtSteps. D/E is taken from the
// integer step so tier thresholds such as 1.5 at 60% are hit exactly.
func simulateScenario(a assumption.Assumptions, flows []float64, bu, baseKd float64, i int) CapitalStructureScenario {
	d := float64(i) / DebtSteps
	e := float64(DebtSteps-i) / DebtSteps
	de := math.Inf(1)
	if e > minEquityRatio {
		de = float64(i) / float64(DebtSteps-i)
	}

	premium := DebtPremium(de)
	kd := baseKd + premium
	kdAfterTax := calc.AfterTaxCostOfDebt(kd, a.TaxRate)
	bl := math.Min(MaxLeveredBeta, calc.ReleverBeta(bu, a.TaxRate, de))
	ke := calc.CostOfEquityCAPM(a.RiskFreeRate, bl, a.EquityRiskPremium)
	wacc := calc.WACC(ke, e, kdAfterTax, d)

	ev := calc.Invalid()
	if b, ok := enterpriseValue(flows, wacc, a.TerminalGrowthRate); ok {
		ev = calc.Valid(b.EnterpriseValue)
	}

	return CapitalStructureScenario{
		DebtRatio:          d,
		EquityRatio:        e,
		DERatio:            de,
		Premium:            premium,
		LeveredBeta:        bl,
		CostOfDebt:         kd,
		AfterTaxCostOfDebt: kdAfterTax,
		CostOfEquity:       ke,
		WACC:               wacc,
		EnterpriseValue:    ev,
	}
}
