package assumption

import (
	"errors"
	"testing"
)

func TestScenarioSet_Add(t *testing.T) {
	ss := NewScenarioSet("case-123")

	sc, err := ss.Add("base", Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.ID == "" {
		t.Error("ID should be assigned")
	}
	if sc.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if len(ss.Scenarios) != 1 {
		t.Errorf("expected 1 scenario, got %d", len(ss.Scenarios))
	}
}

func TestScenarioSet_AddDuplicate(t *testing.T) {
	ss := NewScenarioSet("case-123")
	_, _ = ss.Add("base", Defaults())

	if _, err := ss.Add("base", Defaults()); err == nil {
		t.Fatal("expected error for duplicate name, got nil")
	}
	if _, err := ss.Add("", Defaults()); err == nil {
		t.Fatal("expected error for empty name, got nil")
	}
}

func TestScenarioSet_AddInvalid(t *testing.T) {
	ss := NewScenarioSet("case-123")
	bad := Defaults()
	bad.TaxRate = 2

	_, err := ss.Add("bear", bad)
	if !errors.Is(err, ErrInvalidAssumption) {
		t.Errorf("expected ErrInvalidAssumption, got %v", err)
	}
}

func TestScenarioSet_UpdateDelete(t *testing.T) {
	ss := NewScenarioSet("case-123")
	sc, _ := ss.Add("bull", Defaults())

	next := Defaults()
	next.RevenueGrowthRate = 0.2
	if err := ss.Update(sc.ID, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ss.Get(sc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Assumptions.RevenueGrowthRate != 0.2 {
		t.Errorf("expected growth 0.2, got %f", got.Assumptions.RevenueGrowthRate)
	}

	if err := ss.Update("missing", next); err == nil {
		t.Error("expected error for missing scenario")
	}
	if err := ss.Delete(sc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ss.Get(sc.ID); err == nil {
		t.Error("expected error after delete")
	}
}

func TestScenarioSet_JSONRoundTrip(t *testing.T) {
	ss := NewScenarioSet("case-123")
	_, _ = ss.Add("bear", Defaults())
	_, _ = ss.Add("base", Defaults())

	data, err := ss.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	back, err := ScenarioSetFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	list := back.List()
	if len(list) != 2 || list[0].Name != "base" || list[1].Name != "bear" {
		t.Errorf("unexpected scenarios after round trip: %+v", list)
	}
}
