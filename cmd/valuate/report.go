package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"dcf_valuation/pkg/core/calc"
	"dcf_valuation/pkg/core/pipeline"
	"dcf_valuation/pkg/core/ratio"
	"dcf_valuation/pkg/core/store"
)

const notAvailable = "n/a"

// formatAmount renders v rounded to whole units with thousands separators.
func formatAmount(v float64) string {
	s := decimal.NewFromFloat(v).Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// formatPercent renders a rate with two decimals, e.g. 0.1417 -> "14.17%".
func formatPercent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

func formatValue(v calc.Value) string {
	if !v.Valid {
		return notAvailable
	}
	return formatAmount(v.V)
}

func formatNull(v decimal.NullDecimal) string {
	if !v.Valid {
		return notAvailable
	}
	return formatAmount(v.Decimal.InexactFloat64())
}

// writeReport prints the human-readable valuation summary.
func writeReport(w io.Writer, res *pipeline.Result, runID string) {
	name := res.CompanyName
	if name == "" {
		name = "(assumptions only)"
	}
	fmt.Fprintf(w, "DCF Valuation: %s\n", name)
	if runID != "" {
		fmt.Fprintf(w, "Run: %s\n", runID)
	}

	// 1. Projected free cash flow
	fmt.Fprintln(w, "\nProjected FCFF")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tRevenue\tEBIT\tNOPAT\tD&A\tCapex\tΔNWC\tFCFF\t")
	for _, y := range res.FCFF {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", y.Year,
			formatAmount(y.Revenue), formatAmount(y.EBIT), formatAmount(y.NOPAT),
			formatAmount(y.Depreciation), formatAmount(y.Capex), formatAmount(y.NWCChange),
			formatAmount(y.FCFF))
	}
	tw.Flush()

	// 2. Discount rate
	fmt.Fprintln(w, "\nDiscount Rate")
	fmt.Fprintf(w, "  Cost of equity:         %s\n", formatPercent(res.WACC.CostOfEquity))
	fmt.Fprintf(w, "  After-tax cost of debt: %s\n", formatPercent(res.WACC.AfterTaxCostOfDebt))
	fmt.Fprintf(w, "  Weights (E/D):          %s / %s\n", formatPercent(res.WACC.EquityWeight), formatPercent(res.WACC.DebtWeight))
	fmt.Fprintf(w, "  WACC:                   %s\n", formatPercent(res.WACC.WACC))

	// 3. Valuation
	v := res.Valuation
	fmt.Fprintln(w, "\nValuation")
	if !v.Valid {
		fmt.Fprintf(w, "  Not available: %s\n", v.Reason)
	}
	fmt.Fprintf(w, "  Sum of PV(FCFF):      %s\n", formatValue(v.SumOfPVFCFF))
	fmt.Fprintf(w, "  Terminal value:       %s\n", formatValue(v.TerminalValue))
	fmt.Fprintf(w, "  PV of terminal value: %s\n", formatValue(v.PVTerminalValue))
	fmt.Fprintf(w, "  Enterprise value:     %s\n", formatValue(v.EnterpriseValue))
	fmt.Fprintf(w, "  Net debt:             %s\n", formatAmount(v.NetDebt))
	fmt.Fprintf(w, "  Equity value:         %s\n", formatValue(v.EquityValue))
	fmt.Fprintf(w, "  Value per share:      %s\n", formatValue(v.IntrinsicValuePerShare))

	// 4. Sensitivity
	g := res.Sensitivity
	fmt.Fprintln(w, "\nSensitivity (rows: WACC, columns: terminal growth)")
	if !g.Available {
		fmt.Fprintf(w, "  Not available: %s\n", g.Reason)
	} else {
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprint(tw, "\t")
		for _, rate := range g.GrowthRates {
			fmt.Fprintf(tw, "%s\t", formatPercent(rate))
		}
		fmt.Fprintln(tw)
		for i, wacc := range g.WACCs {
			fmt.Fprintf(tw, "%s\t", formatPercent(wacc))
			for j := range g.GrowthRates {
				fmt.Fprintf(tw, "%s\t", formatValue(g.At(i, j)))
			}
			fmt.Fprintln(tw)
		}
		tw.Flush()
	}

	// 5. Capital structure
	cs := res.CapitalStructure
	fmt.Fprintln(w, "\nCapital Structure")
	if !cs.Available {
		fmt.Fprintf(w, "  Not available: %s\n", cs.Reason)
		return
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "D/V\tβL\tKd\tKe\tWACC\tEV\t\t")
	for _, s := range cs.Scenarios {
		mark := ""
		if s.Optimal {
			mark = "<- optimal"
		}
		fmt.Fprintf(tw, "%s\t%.3f\t%s\t%s\t%s\t%s\t%s\t\n",
			formatPercent(s.DebtRatio), s.LeveredBeta, formatPercent(s.CostOfDebt),
			formatPercent(s.CostOfEquity), formatPercent(s.WACC), formatValue(s.EnterpriseValue), mark)
	}
	tw.Flush()
}

// writeRatios prints the trailing historical ratios.
func writeRatios(w io.Writer, company string, r *ratio.HistoricalRatios) {
	fmt.Fprintf(w, "Historical Ratios: %s\n", company)
	if r == nil {
		fmt.Fprintln(w, "  No historical years found")
		return
	}
	fmt.Fprintf(w, "  Years: %s (anchor %s)\n", strings.Join(r.Years, ", "), r.AnchorYear)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		label string
		avg   float64
	}{
		{"Revenue growth", r.AvgRevenueGrowthRate},
		{"Operating margin", r.AvgOperatingMargin},
		{"Net margin", r.AvgNetMargin},
		{"Depreciation / revenue", r.AvgDepreciationRate},
		{"Capex / revenue", r.AvgCapexRate},
		{"NWC / revenue", r.AvgNWCRate},
		{"Interest / debt", r.AvgInterestRate},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\t%s\n", row.label, formatPercent(row.avg))
	}
	tw.Flush()
}

// writeHistory prints stored runs, newest first.
func writeHistory(w io.Writer, runs []store.ValuationRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No valuation runs stored")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCreated\tCompany\tWACC\tEV\tPer share")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.CompanyName,
			formatPercent(r.WACC.InexactFloat64()), formatNull(r.EnterpriseValue), formatNull(r.IntrinsicValuePerShare))
	}
	tw.Flush()
}
