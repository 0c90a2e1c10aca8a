package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zBotta/crop-planner/internal/domain"
)

// Planning is the complete parameterization of one planning instance: the
// scenario table plus the scenario-independent constants. It is passed
// explicitly into the model builder and the objective selector; nothing in
// the planning pipeline reads package-level state.
type Planning struct {
	TotalAcres float64                 `yaml:"total_acres"`
	MinProfit  float64                 `yaml:"min_profit"`
	FixedCost  map[domain.Crop]float64 `yaml:"fixed_cost"`
	Scenarios  []domain.Scenario       `yaml:"scenarios"`
}

// Scenario returns the scenario with the given name.
func (p Planning) Scenario(name domain.ScenarioName) (domain.Scenario, bool) {
	for _, s := range p.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return domain.Scenario{}, false
}

// MaxYield returns the highest per-acre yield of crop c across all
// scenarios. Used for production and pre-sale variable bounds.
func (p Planning) MaxYield(c domain.Crop) float64 {
	var max float64
	for _, s := range p.Scenarios {
		if params, ok := s.Params(c); ok && params.Yield > max {
			max = params.Yield
		}
	}
	return max
}

// Validate checks the planning instance for structural completeness.
// A malformed scenario table is a configuration error surfaced before any
// model is built.
func (p Planning) Validate() error {
	if p.TotalAcres <= 0 {
		return fmt.Errorf("total_acres must be positive, got %v", p.TotalAcres)
	}
	if len(p.Scenarios) == 0 {
		return fmt.Errorf("no scenarios defined")
	}
	seen := make(map[domain.ScenarioName]bool, len(p.Scenarios))
	for _, s := range p.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenario with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
		for _, c := range domain.Crops() {
			if _, ok := s.Params(c); !ok {
				return fmt.Errorf("scenario %q: missing parameters for crop %s", s.Name, c)
			}
		}
	}
	for _, c := range domain.Crops() {
		if _, ok := p.FixedCost[c]; !ok {
			return fmt.Errorf("missing fixed cost for crop %s", c)
		}
	}
	return nil
}

// LoadPlanningFile reads a planning instance from a YAML file.
func LoadPlanningFile(path string) (Planning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Planning{}, err
	}
	var p Planning
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Planning{}, fmt.Errorf("parsing planning file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Planning{}, err
	}
	return p, nil
}
