package valuation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/store"
)

func newServer(t *testing.T, withStore bool) *echo.Echo {
	t.Helper()
	var repo store.RunRepository
	if withStore {
		repo = store.NewRunStore(nil, t.TempDir())
	}
	e := echo.New()
	NewHandler(repo, assumption.Defaults()).Register(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sampleStatements(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../core/statement/testdata/sample.json")
	if err != nil {
		t.Fatalf("Failed to read sample: %v", err)
	}
	return string(data)
}

func TestHealth(t *testing.T) {
	rec := do(newServer(t, false), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestCompute_DefaultsOnly(t *testing.T) {
	e := newServer(t, true)
	rec := do(e, http.MethodPost, "/api/valuation/compute", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID  string `json:"run_id"`
		Result struct {
			Valuation struct {
				Valid           bool     `json:"valid"`
				EnterpriseValue *float64 `json:"enterprise_value"`
			} `json:"valuation"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if _, err := uuid.Parse(resp.RunID); err != nil {
		t.Errorf("Expected a run id, got %q", resp.RunID)
	}
	if !resp.Result.Valuation.Valid || resp.Result.Valuation.EnterpriseValue == nil {
		t.Fatal("Expected a valid valuation")
	}
	if ev := *resp.Result.Valuation.EnterpriseValue; ev < 25191212.8 || ev > 25191212.82 {
		t.Errorf("Expected EV 25191212.81, got %f", ev)
	}

	// The run is retrievable and listed.
	got := do(e, http.MethodGet, "/api/valuation/runs/"+resp.RunID, "")
	if got.Code != http.StatusOK {
		t.Errorf("Expected stored run, got %d", got.Code)
	}
	list := do(e, http.MethodGet, "/api/valuation/runs?limit=5", "")
	var runs []store.ValuationRun
	if err := json.Unmarshal(list.Body.Bytes(), &runs); err != nil || len(runs) != 1 {
		t.Errorf("Expected one listed run, got %d (%v)", len(runs), err)
	}
}

func TestCompute_PartialOverride(t *testing.T) {
	rec := do(newServer(t, false), http.MethodPost, "/api/valuation/compute",
		`{"assumptions": {"terminal_growth_rate": 0.5}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"enterprise_value":null`) {
		t.Errorf("Expected a null enterprise value when WACC <= g: %s", body[:200])
	}
	if !strings.Contains(body, `"reason":"wacc_not_above_terminal_growth"`) {
		t.Error("Expected the invalid reason in the response")
	}
}

func TestCompute_WithStatements(t *testing.T) {
	body := `{"statements": ` + sampleStatements(t) + `, "assumptions": {"beta": 1.1}}`
	rec := do(newServer(t, false), http.MethodPost, "/api/valuation/compute", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ComputeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	a := resp.Result.Assumptions
	if a.BaseRevenue != 1500 || a.Beta != 1.1 {
		t.Errorf("Expected seeded revenue and overridden beta, got %+v", a)
	}
	if resp.RunID != "" {
		t.Error("Expected no run id without storage")
	}
	if len(resp.Result.Statements) != 5 {
		t.Errorf("Expected detailed projection, got %d years", len(resp.Result.Statements))
	}
}

func TestCompute_Errors(t *testing.T) {
	e := newServer(t, false)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid tax rate", `{"assumptions": {"tax_rate": 1.5}}`, http.StatusUnprocessableEntity},
		{"missing balance sheet", `{"statements": {"incomeStatement": []}}`, http.StatusBadRequest},
		{"bad assumptions type", `{"assumptions": {"beta": "high"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/valuation/compute", tt.body)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Error("Expected an error body")
			}
		})
	}
}

func TestRatios(t *testing.T) {
	rec := do(newServer(t, false), http.MethodPost, "/api/valuation/ratios", sampleStatements(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RatiosResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if resp.Ratios == nil || resp.Ratios.AvgOperatingMargin < 0.1499 || resp.Ratios.AvgOperatingMargin > 0.1501 {
		t.Errorf("Unexpected ratios %+v", resp.Ratios)
	}
	if resp.SeededAssumptions.TotalDebt != 300 {
		t.Errorf("Expected seeded debt 300, got %f", resp.SeededAssumptions.TotalDebt)
	}
}

func TestRuns_Errors(t *testing.T) {
	withStore := newServer(t, true)
	if rec := do(withStore, http.MethodGet, "/api/valuation/runs/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if rec := do(withStore, http.MethodGet, "/api/valuation/runs?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	noStore := newServer(t, false)
	if rec := do(noStore, http.MethodGet, "/api/valuation/runs", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}
