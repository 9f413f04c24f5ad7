package projection

import (
	"math"

	"dcf_valuation/pkg/core/assumption"
)

// ProjectFCFF builds the free-cash-flow series the valuation discounts.
//
// FORMULA:
//
//	Revenue_t = BaseRevenue × (1 + g)^t
//	NOPAT_t   = Revenue_t × EBIT margin × (1 - t)
//	ΔNWC_t    = (Revenue_t - Revenue_{t-1}) × NWC rate
//	FCFF_t    = NOPAT_t + Dep_t - Capex_t - ΔNWC_t
func ProjectFCFF(a assumption.Assumptions) []FCFFYear {
	n := a.Horizon()
	out := make([]FCFFYear, 0, n)

	prevRevenue := a.BaseRevenue
	for t := 1; t <= n; t++ {
		revenue := a.BaseRevenue * math.Pow(1+a.RevenueGrowthRate, float64(t))
		ebit := revenue * a.EBITMargin
		nopat := ebit * (1 - a.TaxRate)
		dep := revenue * a.DepreciationRate
		capex := revenue * a.CapexRate
		nwcChange := (revenue - prevRevenue) * a.NWCRate

		out = append(out, FCFFYear{
			Year:         t,
			Revenue:      revenue,
			EBIT:         ebit,
			NOPAT:        nopat,
			Depreciation: dep,
			Capex:        capex,
			NWCChange:    nwcChange,
			FCFF:         nopat + dep - capex - nwcChange,
		})
		prevRevenue = revenue
	}
	return out
}

// CashFlows extracts the FCFF column.
func CashFlows(years []FCFFYear) []float64 {
	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = y.FCFF
	}
	return out
}
