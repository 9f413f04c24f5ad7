// Package assumption holds the flat parameter set that drives a valuation run.
// Every change to an Assumptions value is followed by a full recomputation.
package assumption

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"dcf_valuation/pkg/core/utils"
)

// DefaultProjectionYears is the explicit forecast horizon.
const DefaultProjectionYears = 5

// ErrInvalidAssumption marks a structurally invalid parameter set.
var ErrInvalidAssumption = errors.New("invalid assumption")

// =============================================================================
// ASSUMPTIONS
// =============================================================================

// Assumptions is the user-adjustable input of the valuation. Rates are decimals (0.13 = 13%).
// Monetary values share the unit of the statements they were seeded from.
type Assumptions struct {
	BaseRevenue       float64 `json:"base_revenue" yaml:"base_revenue"`
	RevenueGrowthRate float64 `json:"revenue_growth_rate" yaml:"revenue_growth_rate"`
	EBITMargin        float64 `json:"ebit_margin" yaml:"ebit_margin"`
	TaxRate           float64 `json:"tax_rate" yaml:"tax_rate"`
	DepreciationRate  float64 `json:"depreciation_rate" yaml:"depreciation_rate"`
	CapexRate         float64 `json:"capex_rate" yaml:"capex_rate"`
	NWCRate           float64 `json:"nwc_rate" yaml:"nwc_rate"`

	// Cost of capital
	RiskFreeRate      float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	Beta              float64 `json:"beta" yaml:"beta"`
	EquityRiskPremium float64 `json:"equity_risk_premium" yaml:"equity_risk_premium"`
	CostOfDebt        float64 `json:"cost_of_debt" yaml:"cost_of_debt"`

	TerminalGrowthRate float64 `json:"terminal_growth_rate" yaml:"terminal_growth_rate"`

	// Capital structure and bridge to equity
	MarketValueOfEquity      float64 `json:"market_value_of_equity" yaml:"market_value_of_equity"`
	TotalDebt                float64 `json:"total_debt" yaml:"total_debt"`
	CashAndEquivalents       float64 `json:"cash_and_equivalents" yaml:"cash_and_equivalents"`
	AdditionalCashLikeAssets float64 `json:"additional_cash_like_assets" yaml:"additional_cash_like_assets"`
	SharesOutstanding        float64 `json:"shares_outstanding" yaml:"shares_outstanding"`

	ProjectionYears int `json:"projection_years" yaml:"projection_years"`
}

// Defaults returns the reference parameter set used when nothing else is supplied.
func Defaults() Assumptions {
	return Assumptions{
		BaseRevenue:         30090000,
		RevenueGrowthRate:   0.13,
		EBITMargin:          0.15,
		TaxRate:             0.25,
		DepreciationRate:    0.13,
		CapexRate:           0.15,
		NWCRate:             0.22,
		RiskFreeRate:        0.03,
		Beta:                1.3,
		EquityRiskPremium:   0.09,
		CostOfDebt:          0.03,
		TerminalGrowthRate:  0.015,
		MarketValueOfEquity: 4430000,
		TotalDebt:           198000,
		CashAndEquivalents:  1148000,
		SharesOutstanding:   1,
		ProjectionYears:     DefaultProjectionYears,
	}
}

// Horizon returns ProjectionYears, falling back to the default when unset.
func (a Assumptions) Horizon() int {
	if a.ProjectionYears <= 0 {
		return DefaultProjectionYears
	}
	return a.ProjectionYears
}

// Validate rejects parameter sets no calculation can use.
// Business-rule conditions (WACC <= g, zero shares) are not errors.
func (a Assumptions) Validate() error {
	fields := map[string]float64{
		"base_revenue":                a.BaseRevenue,
		"revenue_growth_rate":         a.RevenueGrowthRate,
		"ebit_margin":                 a.EBITMargin,
		"tax_rate":                    a.TaxRate,
		"depreciation_rate":           a.DepreciationRate,
		"capex_rate":                  a.CapexRate,
		"nwc_rate":                    a.NWCRate,
		"risk_free_rate":              a.RiskFreeRate,
		"beta":                        a.Beta,
		"equity_risk_premium":         a.EquityRiskPremium,
		"cost_of_debt":                a.CostOfDebt,
		"terminal_growth_rate":        a.TerminalGrowthRate,
		"market_value_of_equity":      a.MarketValueOfEquity,
		"total_debt":                  a.TotalDebt,
		"cash_and_equivalents":        a.CashAndEquivalents,
		"additional_cash_like_assets": a.AdditionalCashLikeAssets,
		"shares_outstanding":          a.SharesOutstanding,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not a finite number: %w", name, ErrInvalidAssumption)
		}
	}

	if a.TaxRate < 0 || a.TaxRate >= 1 {
		return fmt.Errorf("tax_rate %.4f outside [0, 1): %w", a.TaxRate, ErrInvalidAssumption)
	}
	if a.TotalDebt < 0 {
		return fmt.Errorf("total_debt must not be negative: %w", ErrInvalidAssumption)
	}
	if a.CashAndEquivalents < 0 || a.AdditionalCashLikeAssets < 0 {
		return fmt.Errorf("cash balances must not be negative: %w", ErrInvalidAssumption)
	}
	// Zero means unset; Horizon substitutes the default.
	if a.ProjectionYears < 0 || a.ProjectionYears > 50 {
		return fmt.Errorf("projection_years %d outside 0..50: %w", a.ProjectionYears, ErrInvalidAssumption)
	}
	return nil
}

// =============================================================================
// I/O
// =============================================================================

// DecodeOnto overlays a YAML or JSON document on base. Keys absent from the
// document keep their base value, so partial overrides are allowed.
func DecodeOnto(base Assumptions, data []byte, isYAML bool) (Assumptions, error) {
	out := base
	if isYAML {
		if err := yaml.Unmarshal(data, &out); err != nil {
			return base, fmt.Errorf("parse assumptions yaml: %w", err)
		}
		return out, nil
	}
	if _, err := utils.SmartDecode(data, &out); err != nil {
		return base, fmt.Errorf("parse assumptions json: %w", err)
	}
	return out, nil
}

// LoadFile reads an assumptions file (.yaml/.yml or JSON) on top of Defaults and validates it.
func LoadFile(path string) (Assumptions, error) {
	return LoadFileOnto(Defaults(), path)
}

// LoadFileOnto reads an assumptions file on top of base and validates the result.
func LoadFileOnto(base Assumptions, path string) (Assumptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read assumptions %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	a, err := DecodeOnto(base, data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return base, err
	}
	if err := a.Validate(); err != nil {
		return base, err
	}
	return a, nil
}

// ToYAML renders the parameter set in the same shape LoadFile accepts.
func (a Assumptions) ToYAML() ([]byte, error) {
	return yaml.Marshal(a)
}
