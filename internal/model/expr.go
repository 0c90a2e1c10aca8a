package model

// LinExpr is an affine expression over model variables:
// sum(coeff_i * x_i) + offset. Derived quantities such as per-scenario
// profit are kept as expressions, never as stored variables, so they carry
// no degrees of freedom of their own.
type LinExpr struct {
	coeffs map[VarID]float64
	offset float64
}

// NewExpr returns an empty expression.
func NewExpr() *LinExpr {
	return &LinExpr{coeffs: make(map[VarID]float64)}
}

// AddTerm accumulates coeff*x onto the expression and returns it for
// chaining. Terms that cancel to zero are kept; Dense filters them.
func (e *LinExpr) AddTerm(v VarID, coeff float64) *LinExpr {
	e.coeffs[v] += coeff
	return e
}

// AddConst accumulates a constant onto the expression.
func (e *LinExpr) AddConst(c float64) *LinExpr {
	e.offset += c
	return e
}

// AddExpr accumulates scale*other onto the expression.
func (e *LinExpr) AddExpr(other *LinExpr, scale float64) *LinExpr {
	for v, c := range other.coeffs {
		e.coeffs[v] += scale * c
	}
	e.offset += scale * other.offset
	return e
}

// Clone returns an independent copy.
func (e *LinExpr) Clone() *LinExpr {
	out := &LinExpr{coeffs: make(map[VarID]float64, len(e.coeffs)), offset: e.offset}
	for v, c := range e.coeffs {
		out.coeffs[v] = c
	}
	return out
}

// Coeff returns the coefficient of variable v (zero when absent).
func (e *LinExpr) Coeff(v VarID) float64 {
	return e.coeffs[v]
}

// Offset returns the constant part of the expression.
func (e *LinExpr) Offset() float64 {
	return e.offset
}

// Dense returns the coefficients as a dense vector of length n.
func (e *LinExpr) Dense(n int) []float64 {
	out := make([]float64, n)
	for v, c := range e.coeffs {
		if int(v) < n {
			out[v] = c
		}
	}
	return out
}

// Value evaluates the expression at the given variable assignment.
// Variables beyond the assignment's length count as zero, so partially
// populated solver results still evaluate.
func (e *LinExpr) Value(values []float64) float64 {
	total := e.offset
	for v, c := range e.coeffs {
		if int(v) < len(values) {
			total += c * values[v]
		}
	}
	return total
}
