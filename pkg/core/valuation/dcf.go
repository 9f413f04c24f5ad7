package valuation

import (
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/calc"
)

// Reasons a valuation is not computable.
const (
	ReasonWACCNotAboveGrowth  = "wacc_not_above_terminal_growth"
	ReasonInsufficientYears   = "insufficient_projection_years"
	ReasonNoCashFlows         = "no_cash_flows"
	ReasonNonFiniteCashFlow   = "non_finite_cash_flow"
	ReasonMissingBeta         = "beta_is_zero"
	ReasonMissingMarketEquity = "market_value_of_equity_not_positive"
)

// DCFInput encapsulates all inputs required for a Discounted Cash Flow valuation
type DCFInput struct {
	CashFlows      []float64 // FCFF_1..FCFF_N
	Years          int       // Required horizon N
	WACC           float64
	TerminalGrowth float64

	TotalDebt                float64
	CashAndEquivalents       float64
	AdditionalCashLikeAssets float64
	SharesOutstanding        float64
}

// DCFInputFrom assembles the input from assumptions, a cash-flow series and a discount rate.
func DCFInputFrom(a assumption.Assumptions, cashFlows []float64, wacc float64) DCFInput {
	return DCFInput{
		CashFlows:                cashFlows,
		Years:                    a.Horizon(),
		WACC:                     wacc,
		TerminalGrowth:           a.TerminalGrowthRate,
		TotalDebt:                a.TotalDebt,
		CashAndEquivalents:       a.CashAndEquivalents,
		AdditionalCashLikeAssets: a.AdditionalCashLikeAssets,
		SharesOutstanding:        a.SharesOutstanding,
	}
}

// DCFResult holds the valuation outputs. When Valid is false every
// WACC-dependent field is invalid and Reason says why.
type DCFResult struct {
	DiscountedFCFF         []calc.Value `json:"discounted_fcff"`
	SumOfPVFCFF            calc.Value   `json:"sum_of_pv_fcff"`
	LastFCFF               calc.Value   `json:"last_fcff"`
	TerminalValue          calc.Value   `json:"terminal_value"`
	PVTerminalValue        calc.Value   `json:"pv_terminal_value"`
	EnterpriseValue        calc.Value   `json:"enterprise_value"`
	NetDebt                float64      `json:"net_debt"`
	EquityValue            calc.Value   `json:"equity_value"`
	IntrinsicValuePerShare calc.Value   `json:"intrinsic_value_per_share"`

	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// NetDebt = debt - (cash + additional cash-like assets)
func (in DCFInput) NetDebt() float64 {
	return in.TotalDebt - (in.CashAndEquivalents + in.AdditionalCashLikeAssets)
}

// CalculateDCF performs a standard 2-stage DCF analysis
//
// FORMULA:
//
//	PV_t   = FCFF_t / (1 + WACC)^t
//	TV     = FCFF_N × (1 + g) / (WACC - g)
//	EV     = Σ PV_t + TV / (1 + WACC)^N
//	Equity = EV - NetDebt
//	Value/share = Equity / shares  (0 when shares <= 0)
func CalculateDCF(input DCFInput) DCFResult {
	n := input.Years
	if n <= 0 {
		n = len(input.CashFlows)
	}

	switch {
	case len(input.CashFlows) == 0:
		return invalidDCF(input, 0, ReasonNoCashFlows)
	case len(input.CashFlows) < n:
		return invalidDCF(input, len(input.CashFlows), ReasonInsufficientYears)
	case input.WACC <= input.TerminalGrowth:
		return invalidDCF(input, n, ReasonWACCNotAboveGrowth)
	}

	flows := input.CashFlows[:n]
	ev, ok := enterpriseValue(flows, input.WACC, input.TerminalGrowth)
	if !ok {
		return invalidDCF(input, n, ReasonNonFiniteCashFlow)
	}

	netDebt := input.NetDebt()
	equity := ev.EnterpriseValue - netDebt

	perShare := 0.0
	if input.SharesOutstanding > 0 {
		perShare = equity / input.SharesOutstanding
	}

	discounted := make([]calc.Value, n)
	for i, pv := range ev.PresentValues {
		discounted[i] = calc.Valid(pv)
	}

	result := DCFResult{
		DiscountedFCFF:         discounted,
		SumOfPVFCFF:            calc.Valid(ev.SumOfPV),
		LastFCFF:               calc.Valid(flows[n-1]),
		TerminalValue:          calc.Valid(ev.TerminalValue),
		PVTerminalValue:        calc.Valid(ev.PVTerminalValue),
		EnterpriseValue:        calc.Valid(ev.EnterpriseValue),
		NetDebt:                netDebt,
		EquityValue:            calc.Valid(equity),
		IntrinsicValuePerShare: calc.Valid(perShare),
		Valid:                  true,
	}
	if !result.EquityValue.Valid || !result.IntrinsicValuePerShare.Valid {
		return invalidDCF(input, n, ReasonNonFiniteCashFlow)
	}
	return result
}

func invalidDCF(input DCFInput, n int, reason string) DCFResult {
	return DCFResult{
		DiscountedFCFF:         make([]calc.Value, n),
		NetDebt:                input.NetDebt(),
		SumOfPVFCFF:            calc.Invalid(),
		LastFCFF:               calc.Invalid(),
		TerminalValue:          calc.Invalid(),
		PVTerminalValue:        calc.Invalid(),
		EnterpriseValue:        calc.Invalid(),
		EquityValue:            calc.Invalid(),
		IntrinsicValuePerShare: calc.Invalid(),
		Valid:                  false,
		Reason:                 reason,
	}
}

// evBreakdown is the shared discounting path of the engine, the sensitivity grid
// and the capital-structure optimizer.
type evBreakdown struct {
	PresentValues   []float64
	SumOfPV         float64
	TerminalValue   float64
	PVTerminalValue float64
	EnterpriseValue float64
}

// enterpriseValue discounts flows at wacc and caps the last flow at growth g.
// ok is false when wacc <= g or the result is non-finite.
func enterpriseValue(flows []float64, wacc, g float64) (b evBreakdown, ok bool) {
	n := len(flows)
	if n == 0 {
		return evBreakdown{}, false
	}

	tv := calc.TerminalValueGordonGrowth(flows[n-1], wacc, g)
	if !tv.Valid {
		return evBreakdown{}, false
	}

	pvs := calc.PresentValues(flows, wacc)
	sum := calc.PresentValueOfCashFlows(flows, wacc)
	pvTV := calc.PresentValue(tv.V, wacc, n)

	b = evBreakdown{
		PresentValues:   pvs,
		SumOfPV:         sum,
		TerminalValue:   tv.V,
		PVTerminalValue: pvTV,
		EnterpriseValue: sum + pvTV,
	}
	return b, calc.IsFinite(b.EnterpriseValue)
}
