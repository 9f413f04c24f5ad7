package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"dcf_valuation/pkg/core/statement"
	"dcf_valuation/pkg/models"
)

func TestAnalysisEngine_Analyze(t *testing.T) {
	set, err := statement.LoadFile("../statement/testdata/sample.json")
	if err != nil {
		t.Fatalf("failed to load sample: %v", err)
	}

	result, err := NewAnalysisEngine().Analyze(set)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Company != "한빛정밀" {
		t.Errorf("Expected company 한빛정밀, got %s", result.Company)
	}
	if len(result.Years) != 4 {
		t.Fatalf("Expected 4 years, got %d", len(result.Years))
	}

	tests := []struct {
		metric string
		want   float64
	}{
		{MetricDebtToEquity, 500.0 / 700 * 100},
		{MetricInterestCoverage, 12.5},
		{MetricBorrowingDependency, 25},
		{MetricOperatingMargin, 15},
		{MetricROE, 160.875 / 700 * 100},
		{MetricROIC, 18.75},
		{MetricReceivablesTurnover, 10},
		{MetricInventoryTurnover, 7.5},
		{MetricAssetTurnover, 1.25},
		{MetricAssetGrowth, 80.0 / 1120 * 100},
		{MetricRevenueGrowth, 25},
		{MetricNetIncomeGrowth, (160.875 - 128.25) / 128.25 * 100},
		{MetricAltmanZPrime, 2.9062375},
	}

	for _, tt := range tests {
		m, ok := result.Find(tt.metric)
		if !ok {
			t.Errorf("Missing metric %s", tt.metric)
			continue
		}
		v := m.At("2023")
		if !v.Valid {
			t.Errorf("%s: expected a value for 2023", tt.metric)
			continue
		}
		if math.Abs(v.V-tt.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.metric, tt.want, v.V)
		}
	}

	growth, _ := result.Find(MetricRevenueGrowth)
	if growth.At("2020").Valid {
		t.Error("First year growth should not be computable")
	}
}

func TestAnalysisEngine_MissingInputs(t *testing.T) {
	set := statement.Resolve(models.StatementSet{
		IncomeStatement: []models.StatementRow{
			{Account: "매출액", Values: map[string]float64{"2022": 0, "2023": 100}},
			{Account: "영업이익", Values: map[string]float64{"2022": 5, "2023": 10}},
		},
		BalanceSheet: []models.StatementRow{},
	})

	result, err := NewAnalysisEngine().Analyze(set)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	margin, _ := result.Find(MetricOperatingMargin)
	if margin.At("2022").Valid {
		t.Error("Margin over zero revenue should not be computable")
	}
	if v := margin.At("2023"); !v.Valid || v.V != 10 {
		t.Errorf("Expected margin 10, got %+v", v)
	}

	roe, _ := result.Find(MetricROE)
	if roe.At("2023").Valid {
		t.Error("ROE without equity should not be computable")
	}

	revenueGrowth, _ := result.Find(MetricRevenueGrowth)
	if revenueGrowth.At("2023").Valid {
		t.Error("Growth from a zero base should not be computable")
	}

	out, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"value":null`) {
		t.Errorf("Expected null values in JSON, got %s", out)
	}
}

func TestAnalysisEngine_NilSet(t *testing.T) {
	if _, err := NewAnalysisEngine().Analyze(nil); err == nil {
		t.Error("Expected error for nil set")
	}
}
