package model

import (
	"math"

	"github.com/zBotta/crop-planner/internal/domain"
)

// VarID indexes a variable within its model.
type VarID int

// Var is a continuous decision variable with box bounds.
type Var struct {
	ID    VarID
	Name  string
	Lower float64
	Upper float64
}

// Free reports whether the variable has no finite bounds.
func (v Var) Free() bool {
	return math.IsInf(v.Lower, -1) && math.IsInf(v.Upper, 1)
}

// Constraint restricts an expression to Lower <= Expr <= Upper.
// Equalities have Lower == Upper.
type Constraint struct {
	Name  string
	Expr  *LinExpr
	Lower float64
	Upper float64
}

// Model is a mutable feasible-region description: variables, linear
// constraints, and the per-scenario profit expressions. It carries no
// objective; objective construction belongs to the strategy selector,
// which may also append auxiliary variables and constraints in place.
type Model struct {
	vars        []Var
	constraints []Constraint

	// Named handles into the variable set.
	Acres     map[domain.Crop]VarID
	PreSold   map[domain.Crop]VarID
	Produced  map[domain.ScenarioName]map[domain.Crop]VarID
	Shortfall map[domain.ScenarioName]map[domain.Crop]VarID

	// Profit holds the per-scenario affine profit expression.
	Profit map[domain.ScenarioName]*LinExpr

	// ScenarioOrder preserves the configured scenario ordering for
	// deterministic constraint layout and reporting.
	ScenarioOrder []domain.ScenarioName

	// Strategy-owned auxiliary variables. Nil until the corresponding
	// strategy is applied; set at most once.
	WorstCase *VarID // z: guaranteed worst-case profit (free sign)
	Regret    *VarID // R: worst-case regret (non-negative)
	Imbalance *VarID // D: cross-scenario profit imbalance (non-negative)
}

func newModel() *Model {
	return &Model{
		Acres:     make(map[domain.Crop]VarID),
		PreSold:   make(map[domain.Crop]VarID),
		Produced:  make(map[domain.ScenarioName]map[domain.Crop]VarID),
		Shortfall: make(map[domain.ScenarioName]map[domain.Crop]VarID),
		Profit:    make(map[domain.ScenarioName]*LinExpr),
	}
}

// NewVar appends a variable with the given bounds and returns its ID.
func (m *Model) NewVar(name string, lower, upper float64) VarID {
	id := VarID(len(m.vars))
	m.vars = append(m.vars, Var{ID: id, Name: name, Lower: lower, Upper: upper})
	return id
}

// AddEq appends the equality constraint expr == rhs.
func (m *Model) AddEq(name string, expr *LinExpr, rhs float64) {
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: expr, Lower: rhs, Upper: rhs})
}

// AddGe appends the constraint expr >= lower.
func (m *Model) AddGe(name string, expr *LinExpr, lower float64) {
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: expr, Lower: lower, Upper: math.Inf(1)})
}

// AddLe appends the constraint expr <= upper.
func (m *Model) AddLe(name string, expr *LinExpr, upper float64) {
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: expr, Lower: math.Inf(-1), Upper: upper})
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// Vars returns the variable set. The slice is shared; callers must not
// modify it.
func (m *Model) Vars() []Var {
	return m.vars
}

// Constraints returns the constraint set. The slice is shared; callers must
// not modify it.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}
