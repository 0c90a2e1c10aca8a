package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/zBotta/crop-planner/internal/config"
	"github.com/zBotta/crop-planner/internal/domain"
	"github.com/zBotta/crop-planner/internal/model"
	"github.com/zBotta/crop-planner/internal/solver"
)

// Selector turns a built model plus a strategy into a single
// minimization-sense objective expression, appending any strategy-specific
// auxiliary variables and constraints to the model in place.
//
// The minimax-regret strategy additionally needs the solver collaborator:
// it solves one throwaway reference model per scenario to obtain the
// best-achievable profit constants before the regret objective exists.
type Selector struct {
	cfg    config.Planning
	engine solver.Engine
	log    zerolog.Logger
}

// NewSelector creates a selector over one planning instance.
func NewSelector(cfg config.Planning, engine solver.Engine, log zerolog.Logger) *Selector {
	return &Selector{
		cfg:    cfg,
		engine: engine,
		log:    log.With().Str("component", "strategy_selector").Logger(),
	}
}

// Apply mutates m with the strategy's auxiliary structure and returns the
// objective to minimize. Auxiliary variables are created at most once per
// model: re-applying a strategy that defines one reuses the existing
// variable and adds no duplicate constraints.
func (s *Selector) Apply(ctx context.Context, m *model.Model, strat Strategy) (*model.LinExpr, error) {
	switch strat.Kind() {
	case KindSingleScenario:
		profit, ok := m.Profit[strat.Scenario()]
		if !ok {
			return nil, fmt.Errorf("model has no scenario %q", strat.Scenario())
		}
		return model.NewExpr().AddExpr(profit, -1), nil

	case KindSumAll:
		obj := model.NewExpr()
		for _, name := range m.ScenarioOrder {
			obj.AddExpr(m.Profit[name], -1)
		}
		return obj, nil

	case KindMaximin:
		z := s.ensureWorstCase(m)
		return model.NewExpr().AddTerm(z, -1), nil

	case KindMinimaxRegret:
		return s.regretObjective(ctx, m)

	case KindWeighted:
		obj := model.NewExpr()
		for _, name := range m.ScenarioOrder {
			obj.AddExpr(m.Profit[name], -strat.Weight(name))
		}
		if strat.Lambda() > 0 {
			d := s.ensureImbalance(m)
			obj.AddTerm(d, strat.Lambda())
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("unhandled strategy kind %d", strat.Kind())
	}
}

// ensureWorstCase introduces the free-sign worst-case profit variable z with
// z <= profit[s] for every scenario and z >= MinProfit. Maximizing z (the
// returned objective negates it) yields the maximin criterion.
func (s *Selector) ensureWorstCase(m *model.Model) model.VarID {
	if m.WorstCase != nil {
		return *m.WorstCase
	}
	z := m.NewVar("worst_case", math.Inf(-1), math.Inf(1))
	m.WorstCase = &z
	for _, name := range m.ScenarioOrder {
		m.AddGe(fmt.Sprintf("worst_case_%s", name),
			model.NewExpr().AddExpr(m.Profit[name], 1).AddTerm(z, -1), 0)
	}
	m.AddGe("worst_case_floor", model.NewExpr().AddTerm(z, 1), s.cfg.MinProfit)
	return z
}

// regretObjective solves one reference model per scenario for its best
// achievable profit, then adds R >= best[s] - profit[s] for every scenario
// and returns R itself (already minimization sense). A failed reference
// solve aborts before the main model is touched.
func (s *Selector) regretObjective(ctx context.Context, m *model.Model) (*model.LinExpr, error) {
	best := make(map[domain.ScenarioName]float64, len(s.cfg.Scenarios))
	for _, sc := range s.cfg.Scenarios {
		value, err := s.referenceBest(ctx, sc.Name)
		if err != nil {
			return nil, err
		}
		s.log.Info().
			Str("scenario", string(sc.Name)).
			Float64("best_profit", value).
			Msg("Reference optimum for regret computation")
		best[sc.Name] = value
	}

	if m.Regret == nil {
		r := m.NewVar("regret", 0, math.Inf(1))
		m.Regret = &r
		for _, name := range m.ScenarioOrder {
			// R >= best - profit, written as R + profit >= best.
			m.AddGe(fmt.Sprintf("regret_%s", name),
				model.NewExpr().AddTerm(r, 1).AddExpr(m.Profit[name], 1), best[name])
		}
	}
	return model.NewExpr().AddTerm(*m.Regret, 1), nil
}

// referenceBest builds a throwaway copy of the feasible region and
// maximizes the named scenario's profit alone.
func (s *Selector) referenceBest(ctx context.Context, name domain.ScenarioName) (float64, error) {
	ref, err := model.BuildPlanning(s.cfg)
	if err != nil {
		return 0, err
	}
	obj := model.NewExpr().AddExpr(ref.Profit[name], -1)
	res, err := s.engine.Solve(ctx, ref, obj, solver.Options{})
	if err != nil {
		return 0, fmt.Errorf("reference solve for scenario %q: %w", name, err)
	}
	if res.Status != solver.StatusOptimal {
		return 0, fmt.Errorf("reference solve for scenario %q terminated %s", name, res.Status)
	}
	return ref.Profit[name].Value(res.Values), nil
}

// ensureImbalance introduces the non-negative imbalance variable D bounded
// below by the profit gap of every scenario pair, so minimizing lambda*D
// drives D to the absolute gap at optimum.
func (s *Selector) ensureImbalance(m *model.Model) model.VarID {
	if m.Imbalance != nil {
		return *m.Imbalance
	}
	d := m.NewVar("imbalance", 0, math.Inf(1))
	m.Imbalance = &d
	for i, a := range m.ScenarioOrder {
		for _, b := range m.ScenarioOrder[i+1:] {
			m.AddGe(fmt.Sprintf("imbalance_%s_%s", a, b),
				model.NewExpr().AddTerm(d, 1).AddExpr(m.Profit[a], -1).AddExpr(m.Profit[b], 1), 0)
			m.AddGe(fmt.Sprintf("imbalance_%s_%s", b, a),
				model.NewExpr().AddTerm(d, 1).AddExpr(m.Profit[b], -1).AddExpr(m.Profit[a], 1), 0)
		}
	}
	return d
}
