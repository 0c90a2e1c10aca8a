package solver

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zBotta/crop-planner/internal/config"
	"github.com/zBotta/crop-planner/internal/domain"
	"github.com/zBotta/crop-planner/internal/model"
	"github.com/zBotta/crop-planner/pkg/logger"
)

func testLog() zerolog.Logger {
	return logger.New(logger.Config{Level: "error", Pretty: false})
}

func TestSimplexOptimal(t *testing.T) {
	m := &model.Model{}
	x := m.NewVar("x", 0, 10)
	y := m.NewVar("y", 0, 5)
	m.AddLe("cap", model.NewExpr().AddTerm(x, 1).AddTerm(y, 2), 14)

	// Maximize x + y, expressed as minimization.
	obj := model.NewExpr().AddTerm(x, -1).AddTerm(y, -1)

	eng := NewSimplex(testLog())
	res, err := eng.Solve(context.Background(), m, obj, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)

	assert.InDelta(t, 10.0, res.Values[x], 1e-6)
	assert.InDelta(t, 2.0, res.Values[y], 1e-6)
	assert.InDelta(t, -12.0, res.Objective, 1e-6)
}

func TestSimplexEqualityAndFreeVariable(t *testing.T) {
	m := &model.Model{}
	x := m.NewVar("x", math.Inf(-1), math.Inf(1))
	y := m.NewVar("y", 0, math.Inf(1))
	m.AddEq("link", model.NewExpr().AddTerm(x, 1).AddTerm(y, 1), 4)
	m.AddGe("floor", model.NewExpr().AddTerm(x, 1), -3)

	// Minimize x: pushed to its constraint floor, y picks up the rest.
	obj := model.NewExpr().AddTerm(x, 1)

	eng := NewSimplex(testLog())
	res, err := eng.Solve(context.Background(), m, obj, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)

	assert.InDelta(t, -3.0, res.Values[x], 1e-6)
	assert.InDelta(t, 7.0, res.Values[y], 1e-6)
}

func TestSimplexInfeasible(t *testing.T) {
	m := &model.Model{}
	x := m.NewVar("x", 0, 1)
	m.AddGe("impossible", model.NewExpr().AddTerm(x, 1), 5)

	eng := NewSimplex(testLog())
	res, err := eng.Solve(context.Background(), m, model.NewExpr().AddTerm(x, 1), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
}

func TestSimplexUnbounded(t *testing.T) {
	m := &model.Model{}
	x := m.NewVar("x", 0, math.Inf(1))
	y := m.NewVar("y", 0, math.Inf(1))
	m.AddLe("gap", model.NewExpr().AddTerm(x, 1).AddTerm(y, -1), 1)

	// Maximize x with x - y <= 1: x can grow without limit alongside y.
	obj := model.NewExpr().AddTerm(x, -1)

	eng := NewSimplex(testLog())
	res, err := eng.Solve(context.Background(), m, obj, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusUnbounded, res.Status)
}

func TestSimplexHonorsObjectiveOffset(t *testing.T) {
	m := &model.Model{}
	x := m.NewVar("x", 0, 4)

	obj := model.NewExpr().AddTerm(x, -1).AddConst(100)

	eng := NewSimplex(testLog())
	res, err := eng.Solve(context.Background(), m, obj, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 96.0, res.Objective, 1e-6)
}

func TestSimplexSolvesPlanningInstance(t *testing.T) {
	cfg := config.DefaultPlanning()
	m, err := model.BuildPlanning(cfg)
	require.NoError(t, err)

	// Maximize wet-scenario profit on the full built-in instance. The
	// production identities make the raw lowering too degenerate for the
	// dense simplex; the presolve has to carry this one.
	obj := model.NewExpr().AddExpr(m.Profit[domain.Wet], -1)

	res, err := NewSimplex(testLog()).Solve(context.Background(), m, obj, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)

	assert.InDelta(t, -243333.3333, res.Objective, 1.0)
	assert.InDelta(t, 100.0, res.Values[m.Acres[domain.CropA]], 1e-4)

	// Eliminated variables are reconstructed from their identities.
	for _, sc := range cfg.Scenarios {
		for _, c := range domain.Crops() {
			params, ok := sc.Params(c)
			require.True(t, ok)
			assert.InDelta(t, params.Yield*res.Values[m.Acres[c]],
				res.Values[m.Produced[sc.Name][c]], 1e-4,
				"produced %s in %s", c, sc.Name)
		}
	}
}

func TestSimplexSolvesWorstCaseInstance(t *testing.T) {
	cfg := config.DefaultPlanning()
	m, err := model.BuildPlanning(cfg)
	require.NoError(t, err)

	z := m.NewVar("worst_case", math.Inf(-1), math.Inf(1))
	for _, sc := range cfg.Scenarios {
		m.AddGe("worst_case_"+string(sc.Name),
			model.NewExpr().AddExpr(m.Profit[sc.Name], 1).AddTerm(z, -1), 0)
	}
	m.AddGe("worst_case_floor", model.NewExpr().AddTerm(z, 1), cfg.MinProfit)

	res, err := NewSimplex(testLog()).Solve(
		context.Background(), m, model.NewExpr().AddTerm(z, -1), Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.GreaterOrEqual(t, res.Values[z], cfg.MinProfit-1e-4)
}

func TestEliminatePinnedVariables(t *testing.T) {
	m := &model.Model{}
	x := m.NewVar("x", 0, 10)
	y := m.NewVar("y", 0, 100)
	m.AddEq("pin", model.NewExpr().AddTerm(y, 1).AddTerm(x, -5), 0)
	m.AddLe("cap", model.NewExpr().AddTerm(x, 1).AddTerm(y, 1), 30)

	e := eliminate(m)
	require.Len(t, e.defs, 1)
	def, ok := e.defs[x]
	require.True(t, ok, "the first pinned variable is solved out")
	assert.InDelta(t, 0.2, def.Coeff(y), 1e-12)

	// The surviving constraint no longer references x, and x's bounds are
	// not implied by y's, so they survive as a row on its definition.
	require.Len(t, e.constraints, 2)
	assert.Zero(t, e.constraints[0].Expr.Coeff(x))
	assert.InDelta(t, 1.2, e.constraints[0].Expr.Coeff(y), 1e-12)
	assert.Equal(t, "x_bounds", e.constraints[1].Name)

	// End to end: maximize y under y = 5x, x+y <= 30, x <= 10.
	res, err := NewSimplex(testLog()).Solve(
		context.Background(), m, model.NewExpr().AddTerm(y, -1), Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 25.0, res.Values[y], 1e-6)
	assert.InDelta(t, 5.0, res.Values[x], 1e-6)
}

func TestSimplexCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &model.Model{}
	x := m.NewVar("x", 0, 1)

	eng := NewSimplex(testLog())
	_, err := eng.Solve(ctx, m, model.NewExpr().AddTerm(x, 1), Options{})
	require.Error(t, err)
}
