package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/calc"
	"dcf_valuation/pkg/core/statement"
	"dcf_valuation/pkg/core/store"
)

// Orchestrator runs Compute and optionally persists each run.
type Orchestrator struct {
	repo store.RunRepository
}

// NewOrchestrator creates an orchestrator. repo may be nil to skip persistence.
func NewOrchestrator(repo store.RunRepository) *Orchestrator {
	return &Orchestrator{repo: repo}
}

// SetRepository allows injecting a custom repository (e.g., for testing).
func (o *Orchestrator) SetRepository(repo store.RunRepository) {
	o.repo = repo
}

// Run computes a valuation and, when a repository is configured, saves it.
// The returned run is nil without a repository.
func (o *Orchestrator) Run(ctx context.Context, set *statement.Set, a assumption.Assumptions) (*Result, *store.ValuationRun, error) {
	start := time.Now()

	res, err := Compute(set, a)
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("[PIPELINE] Computed valuation for %q in %v (valid: %v)\n", res.CompanyName, time.Since(start), res.Valuation.Valid)

	if o.repo == nil {
		return res, nil, nil
	}

	run, err := NewValuationRun(res)
	if err != nil {
		return res, nil, err
	}
	if err := o.repo.SaveRun(ctx, run); err != nil {
		return res, nil, fmt.Errorf("storage failed: %w", err)
	}
	fmt.Printf("[PIPELINE] Saved run %s\n", run.ID)
	return res, run, nil
}

// NewValuationRun converts a result into its persisted form.
func NewValuationRun(res *Result) (*store.ValuationRun, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &store.ValuationRun{
		CompanyName:            res.CompanyName,
		Assumptions:            res.Assumptions,
		WACC:                   decimal.NewFromFloat(res.WACC.WACC),
		EnterpriseValue:        nullDecimal(res.Valuation.EnterpriseValue),
		EquityValue:            nullDecimal(res.Valuation.EquityValue),
		IntrinsicValuePerShare: nullDecimal(res.Valuation.IntrinsicValuePerShare),
		Result:                 payload,
	}, nil
}

func nullDecimal(v calc.Value) decimal.NullDecimal {
	if !v.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v.V))
}
