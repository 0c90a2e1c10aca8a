package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zBotta/crop-planner/internal/config"
	"github.com/zBotta/crop-planner/internal/domain"
	"github.com/zBotta/crop-planner/internal/model"
	"github.com/zBotta/crop-planner/internal/solver"
	"github.com/zBotta/crop-planner/pkg/logger"
)

func solvedModel(t *testing.T) (*model.Model, *solver.Result) {
	t.Helper()
	cfg := config.DefaultPlanning()
	m, err := model.BuildPlanning(cfg)
	require.NoError(t, err)

	log := logger.New(logger.Config{Level: "error", Pretty: false})
	engine := solver.NewSimplex(log)

	// Maximize the wet profit.
	obj := model.NewExpr().AddExpr(m.Profit[domain.Wet], -1)
	res, err := engine.Solve(context.Background(), m, obj, solver.Options{})
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, res.Status)
	return m, res
}

func TestSummarizeScenarioIndependentColumns(t *testing.T) {
	m, res := solvedModel(t)
	s := Summarize(m, res)

	require.Equal(t, []domain.ScenarioName{domain.Wet, domain.Dry}, s.Scenarios)

	for _, row := range s.Rows {
		if !strings.HasPrefix(row.Label, "Acres") && !strings.HasPrefix(row.Label, "Pre-sold") {
			continue
		}
		wet := row.Cells[domain.Wet]
		dry := row.Cells[domain.Dry]
		require.NotNil(t, wet.Value, "%s wet cell", row.Label)
		require.NotNil(t, dry.Value, "%s dry cell", row.Label)
		assert.Equal(t, *wet.Value, *dry.Value,
			"%s is decided before the outcome and must match across columns", row.Label)
	}
}

func TestSummarizeProfitRowsStayInOwnColumn(t *testing.T) {
	m, res := solvedModel(t)
	s := Summarize(m, res)

	var profitRows int
	for _, row := range s.Rows {
		if !strings.HasPrefix(row.Label, "Profit") {
			continue
		}
		profitRows++
		var filled int
		for _, name := range s.Scenarios {
			if row.Cells[name].Value != nil {
				filled++
			}
		}
		assert.Equal(t, 1, filled, "%s should appear in exactly one column", row.Label)
	}
	assert.Equal(t, 2, profitRows)
}

func TestSummarizeEmptyResultValues(t *testing.T) {
	cfg := config.DefaultPlanning()
	m, err := model.BuildPlanning(cfg)
	require.NoError(t, err)

	// Infeasible/unbounded terminations may leave nothing populated.
	s := Summarize(m, &solver.Result{Status: solver.StatusInfeasible})
	for _, row := range s.Rows {
		for _, cell := range row.Cells {
			if cell.Value != nil {
				assert.Zero(t, *cell.Value)
			}
		}
	}
}

func TestRender(t *testing.T) {
	m, res := solvedModel(t)

	var sb strings.Builder
	require.NoError(t, Render(&sb, Summarize(m, res)))
	out := sb.String()

	assert.Contains(t, out, "Model Summary")
	assert.Contains(t, out, "Wet Scenario")
	assert.Contains(t, out, "Dry Scenario")
	assert.Contains(t, out, "Acres of Crop A")
	assert.Contains(t, out, "Shortfall B")
	assert.Contains(t, out, "Profit in Wet scenario")
	assert.Contains(t, out, "Profit in Dry scenario")
}
