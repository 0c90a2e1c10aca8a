package model

import (
	"fmt"
	"math"

	"github.com/zBotta/crop-planner/internal/config"
	"github.com/zBotta/crop-planner/internal/domain"
)

// BuildPlanning constructs the scenario-parameterized planning model from a
// planning instance: all decision variables, the per-scenario profit
// expressions, and the strategy-independent feasible region.
//
// Per scenario s the profit expression is Benefit + Cost + Penalty:
//
//	Cost    = -sum_c (varCost[c,s] + fixedCost[c]) * acres[c]
//	Benefit =  sum_c presoldPrice[c,s]*presold[c] + spotPrice[c,s]*(produced[c,s] - presold[c])
//	Penalty = -sum_c penalty[c,s] * shortfall[c,s]
//
// The spot term deliberately values (produced - presold) even when negative,
// matching the source problem; unmet commitments are then charged both as
// negative spot revenue and as the explicit shortfall penalty.
//
// No objective is attached and no solver is invoked. The same builder serves
// the regret strategy's reference sub-models, which differ only in the
// objective they are later solved under.
func BuildPlanning(cfg config.Planning) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planning instance: %w", err)
	}

	m := newModel()

	for _, c := range domain.Crops() {
		m.Acres[c] = m.NewVar(fmt.Sprintf("acres_%s", c), 0, cfg.TotalAcres)
		// Pre-sales are committed before the outcome is known, so the
		// variable is scenario-independent; its ceiling is the best
		// possible harvest of the crop.
		m.PreSold[c] = m.NewVar(fmt.Sprintf("presold_%s", c), 0, cfg.MaxYield(c)*cfg.TotalAcres)
	}

	// Full land use, always.
	landUse := NewExpr()
	for _, c := range domain.Crops() {
		landUse.AddTerm(m.Acres[c], 1)
	}
	m.AddEq("land_use", landUse, cfg.TotalAcres)

	for _, s := range cfg.Scenarios {
		m.ScenarioOrder = append(m.ScenarioOrder, s.Name)
		m.Produced[s.Name] = make(map[domain.Crop]VarID)
		m.Shortfall[s.Name] = make(map[domain.Crop]VarID)

		profit := NewExpr()
		for _, c := range domain.Crops() {
			params, _ := s.Params(c)

			produced := m.NewVar(fmt.Sprintf("produced_%s_%s", c, s.Name), 0, cfg.MaxYield(c)*cfg.TotalAcres)
			shortfall := m.NewVar(fmt.Sprintf("shortfall_%s_%s", c, s.Name), 0, math.Inf(1))
			m.Produced[s.Name][c] = produced
			m.Shortfall[s.Name][c] = shortfall

			// Deterministic yield: produced == yield * acres.
			m.AddEq(fmt.Sprintf("production_%s_%s", c, s.Name),
				NewExpr().AddTerm(produced, 1).AddTerm(m.Acres[c], -params.Yield), 0)

			// Shortfall covers commitments beyond realized production:
			// shortfall >= presold - produced. The zero floor comes from
			// the variable bound; the objective's penalty term keeps it
			// there when no shortfall occurs.
			m.AddGe(fmt.Sprintf("shortfall_%s_%s", c, s.Name),
				NewExpr().AddTerm(shortfall, 1).AddTerm(m.PreSold[c], -1).AddTerm(produced, 1), 0)

			profit.AddTerm(m.Acres[c], -(params.VarCost + cfg.FixedCost[c]))
			profit.AddTerm(m.PreSold[c], params.PreSoldPrice-params.SpotPrice)
			profit.AddTerm(produced, params.SpotPrice)
			profit.AddTerm(shortfall, -params.Penalty)
		}
		m.Profit[s.Name] = profit

		// Minimum-acceptable-profit floor, hard in every strategy.
		m.AddGe(fmt.Sprintf("min_profit_%s", s.Name), profit.Clone(), cfg.MinProfit)
	}

	return m, nil
}
