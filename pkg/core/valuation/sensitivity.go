package valuation

import (
	"math"

	"dcf_valuation/pkg/core/calc"
)

// SensitivityOffsets are applied to both the WACC and terminal-growth axes.
var SensitivityOffsets = []float64{-0.01, -0.005, 0, 0.005, 0.01}

// SensitivityGrid holds intrinsic value per share over a WACC × growth grid.
// Cells[i][j] is the value at WACCs[i] and GrowthRates[j].
type SensitivityGrid struct {
	WACCs       []float64      `json:"waccs"`
	GrowthRates []float64      `json:"growth_rates"`
	Cells       [][]calc.Value `json:"cells"`

	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// At returns the cell at WACC index i and growth index j.
func (g *SensitivityGrid) At(i, j int) calc.Value {
	if g == nil || i < 0 || i >= len(g.Cells) || j < 0 || j >= len(g.Cells[i]) {
		return calc.Invalid()
	}
	return g.Cells[i][j]
}

// Center returns the base-case cell.
func (g *SensitivityGrid) Center() calc.Value {
	mid := len(SensitivityOffsets) / 2
	return g.At(mid, mid)
}

// CalculateSensitivity revalues the base input at every offset pair.
// Each cell runs through CalculateDCF, so the center cell equals the base valuation.
func CalculateSensitivity(base DCFInput) SensitivityGrid {
	if len(base.CashFlows) == 0 {
		return SensitivityGrid{Reason: ReasonNoCashFlows}
	}
	if last := base.CashFlows[len(base.CashFlows)-1]; math.IsNaN(last) || math.IsInf(last, 0) {
		return SensitivityGrid{Reason: ReasonNonFiniteCashFlow}
	}

	grid := SensitivityGrid{
		WACCs:       make([]float64, len(SensitivityOffsets)),
		GrowthRates: make([]float64, len(SensitivityOffsets)),
		Cells:       make([][]calc.Value, len(SensitivityOffsets)),
		Available:   true,
	}
	for i, off := range SensitivityOffsets {
		grid.WACCs[i] = base.WACC + off
		grid.GrowthRates[i] = base.TerminalGrowth + off
	}

	for i, wacc := range grid.WACCs {
		row := make([]calc.Value, len(grid.GrowthRates))
		for j, g := range grid.GrowthRates {
			in := base
			in.WACC = wacc
			in.TerminalGrowth = g
			row[j] = CalculateDCF(in).IntrinsicValuePerShare
		}
		grid.Cells[i] = row
	}
	return grid
}
