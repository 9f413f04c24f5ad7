// Package pipeline runs a full valuation from statements and assumptions.
package pipeline

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"dcf_valuation/pkg/core/analysis"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/core/ratio"
	"dcf_valuation/pkg/core/statement"
	"dcf_valuation/pkg/core/valuation"
)

// Result is the full output of one valuation run.
// Ratios, Opening, Statements and FinancialRatios are nil without statements.
type Result struct {
	CompanyName      string                             `json:"company_name"`
	Assumptions      assumption.Assumptions             `json:"assumptions"`
	Ratios           *ratio.HistoricalRatios            `json:"ratios"`
	Opening          *projection.Opening                `json:"opening,omitempty"`
	Statements       []projection.ProjectionYear        `json:"statements,omitempty"`
	FCFF             []projection.FCFFYear              `json:"fcff"`
	WACC             valuation.WACCResult               `json:"wacc"`
	Valuation        valuation.DCFResult                `json:"valuation"`
	Sensitivity      valuation.SensitivityGrid          `json:"sensitivity"`
	CapitalStructure valuation.CapitalStructureAnalysis `json:"capital_structure"`
	FinancialRatios  *analysis.CompanyAnalysis          `json:"financial_ratios,omitempty"`
}

// Compute runs every stage for one parameter set. set may be nil, in which case only
// the FCFF valuation path runs. Only a structurally invalid parameter set is an error;
// business-rule conditions surface as invalid values inside the result.
func Compute(set *statement.Set, a assumption.Assumptions) (*Result, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Assumptions: a}

	// 1. History and the detailed statement model
	if set != nil {
		res.CompanyName = set.CompanyName
		res.Ratios = ratio.Extract(set)

		opening := projection.OpeningBalances(set, a, res.Ratios)
		res.Opening = &opening
		res.Statements = projection.ProjectStatements(opening, a, res.Ratios)

		fin, err := analysis.NewAnalysisEngine().Analyze(set)
		if err != nil {
			return nil, fmt.Errorf("financial ratios: %w", err)
		}
		res.FinancialRatios = fin
	}

	// 2. FCFF, discount rate and base valuation
	res.FCFF = projection.ProjectFCFF(a)
	cashFlows := projection.CashFlows(res.FCFF)
	res.WACC = valuation.CalculateWACC(valuation.WACCInputFrom(a))
	input := valuation.DCFInputFrom(a, cashFlows, res.WACC.WACC)
	res.Valuation = valuation.CalculateDCF(input)

	// 3. Grid and optimizer are independent of each other
	var g errgroup.Group
	g.Go(func() error {
		res.Sensitivity = valuation.CalculateSensitivity(input)
		return nil
	})
	g.Go(func() error {
		res.CapitalStructure = valuation.OptimizeCapitalStructure(a, cashFlows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}
