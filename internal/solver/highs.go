package solver

import (
	"context"
	"fmt"

	"github.com/bartolsthoorn/gohighs/highs"
	"github.com/rs/zerolog"

	"github.com/zBotta/crop-planner/internal/model"
)

// Highs solves through the HiGHS bindings. Column bounds map directly onto
// the HiGHS column arrays and every constraint becomes a bounded row, so no
// bound rewriting is needed.
type Highs struct {
	log       zerolog.Logger
	available bool
}

// NewHighs creates the HiGHS engine. The binding gets one trivial trial
// solve at construction so a broken backend surfaces as unavailability and
// the fallback policy applies, instead of an error halfway through a run.
func NewHighs(log zerolog.Logger) *Highs {
	h := &Highs{log: log.With().Str("component", "solver_highs").Logger()}
	h.available = h.checkBackend()
	return h
}

func (h *Highs) checkBackend() bool {
	tm := highs.Model{
		ColCosts: []float64{1},
		ColLower: []float64{0},
		ColUpper: []float64{1},
	}
	sol, err := tm.Solve(highs.WithOutput(false))
	if err != nil {
		h.log.Warn().Err(err).Msg("HiGHS binding failed its trial solve")
		return false
	}
	return sol.IsOptimal()
}

// Name implements Engine.
func (h *Highs) Name() string { return "highs" }

// Available implements Engine.
func (h *Highs) Available() bool { return h.available }

// Solve implements Engine.
func (h *Highs) Solve(ctx context.Context, m *model.Model, objective *model.LinExpr, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !h.available {
		return nil, fmt.Errorf("highs backend not available")
	}

	n := m.NumVars()
	hm := highs.Model{
		ColCosts: objective.Dense(n),
		ColLower: make([]float64, n),
		ColUpper: make([]float64, n),
		Offset:   objective.Offset(),
	}
	for i, v := range m.Vars() {
		hm.ColLower[i] = v.Lower
		hm.ColUpper[i] = v.Upper
	}
	for _, con := range m.Constraints() {
		off := con.Expr.Offset()
		hm.AddDenseRow(con.Lower-off, con.Expr.Dense(n), con.Upper-off)
	}

	h.log.Debug().Int("vars", n).Int("rows", hm.NumConstraints()).Msg("Running HiGHS")

	sol, err := hm.Solve(highs.WithOutput(opts.Verbose))
	if err != nil {
		return nil, fmt.Errorf("highs solve: %w", err)
	}

	res := &Result{Objective: sol.Objective}
	switch {
	case sol.IsOptimal():
		res.Status = StatusOptimal
		res.Values = make([]float64, n)
		for i := range res.Values {
			res.Values[i] = sol.Value(i)
		}
	case sol.IsInfeasible():
		res.Status = StatusInfeasible
	case sol.IsUnbounded():
		res.Status = StatusUnbounded
	default:
		res.Status = StatusFailed
	}
	return res, nil
}
