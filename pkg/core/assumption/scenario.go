package assumption

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SCENARIOS (named parameter sets for one company)
// =============================================================================

// Scenario is a named, versionable Assumptions value.
type Scenario struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Assumptions Assumptions `json:"assumptions"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ScenarioSet holds the scenarios of one case (e.g. base / bull / bear).
type ScenarioSet struct {
	CaseID    string               `json:"case_id"`
	Scenarios map[string]*Scenario `json:"scenarios"` // scenario_id -> Scenario

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewScenarioSet creates an empty set.
func NewScenarioSet(caseID string) *ScenarioSet {
	now := time.Now()
	return &ScenarioSet{
		CaseID:    caseID,
		Scenarios: make(map[string]*Scenario),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add validates and stores a new scenario under a fresh ID.
func (ss *ScenarioSet) Add(name string, a Assumptions) (*Scenario, error) {
	if name == "" {
		return nil, fmt.Errorf("scenario name cannot be empty")
	}
	if _, exists := ss.FindByName(name); exists {
		return nil, fmt.Errorf("scenario '%s' already exists", name)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("scenario '%s': %w", name, err)
	}

	now := time.Now()
	sc := &Scenario{
		ID:          uuid.NewString(),
		Name:        name,
		Assumptions: a,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ss.Scenarios[sc.ID] = sc
	ss.UpdatedAt = now
	return sc, nil
}

// Get retrieves a scenario by ID.
func (ss *ScenarioSet) Get(id string) (*Scenario, error) {
	sc, ok := ss.Scenarios[id]
	if !ok {
		return nil, fmt.Errorf("scenario '%s' not found", id)
	}
	return sc, nil
}

// FindByName returns the scenario with the given name.
func (ss *ScenarioSet) FindByName(name string) (*Scenario, bool) {
	for _, sc := range ss.Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return nil, false
}

// Update replaces the assumptions of an existing scenario.
func (ss *ScenarioSet) Update(id string, a Assumptions) error {
	sc, ok := ss.Scenarios[id]
	if !ok {
		return fmt.Errorf("scenario '%s' not found", id)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("scenario '%s': %w", sc.Name, err)
	}

	sc.Assumptions = a
	sc.UpdatedAt = time.Now()
	ss.UpdatedAt = sc.UpdatedAt
	return nil
}

// Delete removes a scenario.
func (ss *ScenarioSet) Delete(id string) error {
	if _, exists := ss.Scenarios[id]; !exists {
		return fmt.Errorf("scenario '%s' not found", id)
	}
	delete(ss.Scenarios, id)
	ss.UpdatedAt = time.Now()
	return nil
}

// List returns scenarios ordered by name.
func (ss *ScenarioSet) List() []*Scenario {
	out := make([]*Scenario, 0, len(ss.Scenarios))
	for _, sc := range ss.Scenarios {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ToJSON serializes the set.
func (ss *ScenarioSet) ToJSON() ([]byte, error) {
	return json.Marshal(ss)
}

// ScenarioSetFromJSON deserializes a set.
func ScenarioSetFromJSON(data []byte) (*ScenarioSet, error) {
	var ss ScenarioSet
	if err := json.Unmarshal(data, &ss); err != nil {
		return nil, err
	}
	if ss.Scenarios == nil {
		ss.Scenarios = make(map[string]*Scenario)
	}
	return &ss, nil
}
