package domain

// Crop identifies one of the two plantable crops.
type Crop string

const (
	CropA Crop = "A"
	CropB Crop = "B"
)

// Crops returns all crops in display order.
func Crops() []Crop {
	return []Crop{CropA, CropB}
}

// ScenarioName identifies a weather outcome.
type ScenarioName string

const (
	Wet ScenarioName = "wet"
	Dry ScenarioName = "dry"
)

// CropParams holds the scenario-specific economics of a single crop.
// Prices are per unit, costs per acre, yields in units per acre.
type CropParams struct {
	PreSoldPrice float64 `yaml:"pre_sold_price"`
	SpotPrice    float64 `yaml:"spot_price"`
	Penalty      float64 `yaml:"penalty"`
	VarCost      float64 `yaml:"var_cost"`
	Yield        float64 `yaml:"yield"`
}

// Scenario is a named weather outcome carrying per-crop parameters.
// The instance at hand has exactly two (wet, dry); nothing below assumes
// more than a finite ordered set.
type Scenario struct {
	Name  ScenarioName        `yaml:"name"`
	Crops map[Crop]CropParams `yaml:"crops"`
}

// Params returns the parameters for crop c and whether they are present.
func (s Scenario) Params(c Crop) (CropParams, bool) {
	p, ok := s.Crops[c]
	return p, ok
}
