package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/zBotta/crop-planner/internal/model"
)

// simplexTol is the pivot tolerance handed to gonum. The dense simplex gets
// no default tolerance from lp.Simplex; at exactly zero it misclassifies
// degenerate optima from the free-variable split as unbounded.
const simplexTol = 1e-10

// Simplex is the in-process engine backed by gonum's dense simplex method.
// It is pure Go and always available, which makes it the fallback engine.
type Simplex struct {
	log zerolog.Logger
}

// NewSimplex creates the gonum simplex engine.
func NewSimplex(log zerolog.Logger) *Simplex {
	return &Simplex{log: log.With().Str("component", "solver_simplex").Logger()}
}

// Name implements Engine.
func (s *Simplex) Name() string { return "simplex" }

// Available implements Engine. The simplex engine needs no external binary
// or library.
func (s *Simplex) Available() bool { return true }

// Solve first substitutes out variables that are pinned by a single
// equality (the production identities), then lowers the reduced model to
// gonum's general LP form (inequalities G*x <= h plus equalities A*x == b
// over free variables), converts it to standard form, and runs the simplex
// method. Variable bounds become inequality rows since the conversion
// treats every variable as free. Without the substitution the lowered
// system carries one equality plus redundant bound rows per pinned
// variable, a degenerate basis the dense simplex cannot factorize.
func (s *Simplex) Solve(ctx context.Context, m *model.Model, objective *model.LinExpr, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elim := eliminate(m)
	obj := elim.apply(objective)

	// Compact columns over the surviving variables.
	cols := make(map[model.VarID]int, m.NumVars())
	var kept []model.Var
	for _, v := range m.Vars() {
		if _, gone := elim.defs[v.ID]; gone {
			continue
		}
		cols[v.ID] = len(kept)
		kept = append(kept, v)
	}
	n := len(kept)
	if n == 0 {
		return elim.constantResult(m, objective)
	}

	dense := func(e *model.LinExpr) []float64 {
		row := make([]float64, n)
		for _, v := range kept {
			if c := e.Coeff(v.ID); c != 0 {
				row[cols[v.ID]] = c
			}
		}
		return row
	}

	var ineq, eq []float64 // row-major
	var h, b []float64

	addLe := func(row []float64, rhs float64) {
		ineq = append(ineq, row...)
		h = append(h, rhs)
	}

	for _, con := range elim.constraints {
		row := dense(con.Expr)
		lo := con.Lower - con.Expr.Offset()
		hi := con.Upper - con.Expr.Offset()
		if lo == hi {
			eq = append(eq, row...)
			b = append(b, lo)
			continue
		}
		if !math.IsInf(hi, 1) {
			addLe(row, hi)
		}
		if !math.IsInf(lo, -1) {
			addLe(negated(row), -lo)
		}
	}

	for _, v := range kept {
		if !math.IsInf(v.Upper, 1) {
			addLe(unit(n, cols[v.ID], 1), v.Upper)
		}
		if !math.IsInf(v.Lower, -1) {
			addLe(unit(n, cols[v.ID], -1), -v.Lower)
		}
	}

	var g mat.Matrix
	if len(h) > 0 {
		g = mat.NewDense(len(h), n, ineq)
	}
	var a mat.Matrix
	if len(b) > 0 {
		a = mat.NewDense(len(b), n, eq)
	}

	cStd, aStd, bStd := lp.Convert(dense(obj), g, h, a, b)

	s.log.Debug().
		Int("vars", n).
		Int("eliminated", len(elim.defs)).
		Int("inequalities", len(h)).
		Int("equalities", len(b)).
		Msg("Running simplex")

	_, xStd, err := lp.Simplex(cStd, aStd, bStd, simplexTol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return &Result{Status: StatusInfeasible}, nil
		case errors.Is(err, lp.ErrUnbounded):
			return &Result{Status: StatusUnbounded}, nil
		default:
			return nil, fmt.Errorf("simplex solve: %w", err)
		}
	}

	// Convert splits each free variable into positive and negative parts:
	// columns [0,n) and [n,2n) of the standard-form solution.
	values := make([]float64, m.NumVars())
	for _, v := range kept {
		i := cols[v.ID]
		values[v.ID] = xStd[i] - xStd[n+i]
	}
	for id, def := range elim.defs {
		values[id] = def.Value(values)
	}

	return &Result{
		Status:    StatusOptimal,
		Objective: objective.Value(values),
		Values:    values,
	}, nil
}

// elimination holds the presolve state: variables removed from the system
// along with the expressions defining them, and the surviving constraints
// with those definitions substituted in.
type elimination struct {
	defs        map[model.VarID]*model.LinExpr
	constraints []model.Constraint
}

// eliminate removes every variable that appears in exactly one equality,
// solving that equality for it. Such a variable's defining expression can
// only reference surviving variables, so substitution is a single pass.
func eliminate(m *model.Model) *elimination {
	counts := make(map[model.VarID]int)
	for _, con := range m.Constraints() {
		if con.Lower != con.Upper {
			continue
		}
		for _, v := range m.Vars() {
			if con.Expr.Coeff(v.ID) != 0 {
				counts[v.ID]++
			}
		}
	}

	e := &elimination{defs: make(map[model.VarID]*model.LinExpr)}
	for _, con := range m.Constraints() {
		pivot, ok := pivotVar(m, con, counts)
		if !ok {
			e.constraints = append(e.constraints, con)
			continue
		}
		c := con.Expr.Coeff(pivot)
		// pivot = (rhs - offset - rest)/c; the AddTerm cancels the pivot's
		// own contribution from the scaled row.
		e.defs[pivot] = model.NewExpr().
			AddConst(con.Lower / c).
			AddExpr(con.Expr, -1/c).
			AddTerm(pivot, 1)
	}

	for i, con := range e.constraints {
		e.constraints[i].Expr = e.apply(con.Expr)
	}

	// Bounds of an eliminated variable survive as a row on its defining
	// expression unless the surviving bounds already imply them.
	for _, v := range m.Vars() {
		def, ok := e.defs[v.ID]
		if !ok {
			continue
		}
		lo, hi := exprRange(m, def)
		if lo >= v.Lower && hi <= v.Upper {
			continue
		}
		e.constraints = append(e.constraints, model.Constraint{
			Name:  v.Name + "_bounds",
			Expr:  def,
			Lower: v.Lower,
			Upper: v.Upper,
		})
	}
	return e
}

func pivotVar(m *model.Model, con model.Constraint, counts map[model.VarID]int) (model.VarID, bool) {
	if con.Lower != con.Upper {
		return 0, false
	}
	for _, v := range m.Vars() {
		if counts[v.ID] == 1 && con.Expr.Coeff(v.ID) != 0 {
			return v.ID, true
		}
	}
	return 0, false
}

// apply returns ex with every eliminated variable replaced by its
// defining expression.
func (e *elimination) apply(ex *model.LinExpr) *model.LinExpr {
	out := ex.Clone()
	for id, def := range e.defs {
		c := out.Coeff(id)
		if c == 0 {
			continue
		}
		out.AddTerm(id, -c)
		out.AddExpr(def, c)
	}
	return out
}

// constantResult covers the degenerate case where elimination leaves no
// variables: the solution is fully determined and only the surviving
// constant constraints can rule it out.
func (e *elimination) constantResult(m *model.Model, objective *model.LinExpr) (*Result, error) {
	values := make([]float64, m.NumVars())
	for id, def := range e.defs {
		values[id] = def.Value(values)
	}
	for _, con := range e.constraints {
		v := con.Expr.Value(values)
		if v < con.Lower-simplexTol || v > con.Upper+simplexTol {
			return &Result{Status: StatusInfeasible}, nil
		}
	}
	return &Result{
		Status:    StatusOptimal,
		Objective: objective.Value(values),
		Values:    values,
	}, nil
}

// exprRange computes the interval ex can take over the variables' boxes.
func exprRange(m *model.Model, ex *model.LinExpr) (float64, float64) {
	lo, hi := ex.Offset(), ex.Offset()
	for _, v := range m.Vars() {
		c := ex.Coeff(v.ID)
		switch {
		case c > 0:
			lo += c * v.Lower
			hi += c * v.Upper
		case c < 0:
			lo += c * v.Upper
			hi += c * v.Lower
		}
	}
	return lo, hi
}

func negated(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = -v
	}
	return out
}

func unit(n, col int, coeff float64) []float64 {
	row := make([]float64, n)
	row[col] = coeff
	return row
}
