package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zBotta/crop-planner/internal/config"
	"github.com/zBotta/crop-planner/internal/domain"
)

func TestBuildPlanningStructure(t *testing.T) {
	cfg := config.DefaultPlanning()
	m, err := BuildPlanning(cfg)
	require.NoError(t, err)

	// 2 acres + 2 presold + (2 produced + 2 shortfall) per scenario.
	assert.Equal(t, 12, m.NumVars())

	// land use + (2 production + 2 shortfall + 1 profit floor) per scenario.
	assert.Len(t, m.Constraints(), 11)

	assert.Equal(t, []domain.ScenarioName{domain.Wet, domain.Dry}, m.ScenarioOrder)
	assert.Nil(t, m.WorstCase)
	assert.Nil(t, m.Regret)
	assert.Nil(t, m.Imbalance)
}

func TestBuildPlanningBounds(t *testing.T) {
	cfg := config.DefaultPlanning()
	m, err := BuildPlanning(cfg)
	require.NoError(t, err)

	acresA := m.Vars()[m.Acres[domain.CropA]]
	assert.Equal(t, 0.0, acresA.Lower)
	assert.Equal(t, 100.0, acresA.Upper)

	// Pre-sale ceilings use the best yield across scenarios: 800 for A
	// (wet), 600 for B (dry), times total acreage.
	presoldA := m.Vars()[m.PreSold[domain.CropA]]
	assert.Equal(t, 80000.0, presoldA.Upper)
	presoldB := m.Vars()[m.PreSold[domain.CropB]]
	assert.Equal(t, 60000.0, presoldB.Upper)

	producedAWet := m.Vars()[m.Produced[domain.Wet][domain.CropA]]
	assert.Equal(t, 80000.0, producedAWet.Upper)
}

// assignment builds a variable vector for the all-A plan with no pre-sales:
// 100 acres of crop A, production per the scenario yields, zero shortfall.
func allCropAAssignment(m *Model) []float64 {
	values := make([]float64, m.NumVars())
	values[m.Acres[domain.CropA]] = 100
	values[m.Produced[domain.Wet][domain.CropA]] = 80000
	values[m.Produced[domain.Dry][domain.CropA]] = 30000
	return values
}

func TestProfitExpressions(t *testing.T) {
	cfg := config.DefaultPlanning()
	m, err := BuildPlanning(cfg)
	require.NoError(t, err)

	values := allCropAAssignment(m)

	// Wet: spot 2.5*80000 minus (50+150)*100 in costs.
	assert.InDelta(t, 180000.0, m.Profit[domain.Wet].Value(values), 1e-9)
	// Dry: spot 4.5*30000 minus (200+150)*100.
	assert.InDelta(t, 100000.0, m.Profit[domain.Dry].Value(values), 1e-9)
}

func TestProfitChargesShortfallTwice(t *testing.T) {
	// Committing beyond realized production reduces profit both through the
	// negative spot term and through the shortfall penalty. This mirrors
	// the source problem and is deliberately not corrected here.
	cfg := config.DefaultPlanning()
	m, err := BuildPlanning(cfg)
	require.NoError(t, err)

	values := allCropAAssignment(m)
	values[m.PreSold[domain.CropA]] = 40000
	values[m.Shortfall[domain.Dry][domain.CropA]] = 10000 // 40000 committed, 30000 produced

	// Dry profit: 100000 base + 3.9*40000 presold - 4.5*40000 spot claw-back
	// - 1.5*10000 penalty.
	want := 100000.0 + 3.9*40000 - 4.5*40000 - 1.5*10000
	assert.InDelta(t, want, m.Profit[domain.Dry].Value(values), 1e-9)
}

func TestBuildPlanningRejectsMalformedTable(t *testing.T) {
	cfg := config.DefaultPlanning()
	delete(cfg.Scenarios[0].Crops, domain.CropB)

	_, err := BuildPlanning(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing parameters for crop B")
}

func TestBuildPlanningRejectsEmptyScenarios(t *testing.T) {
	cfg := config.DefaultPlanning()
	cfg.Scenarios = nil

	_, err := BuildPlanning(cfg)
	require.Error(t, err)
}
