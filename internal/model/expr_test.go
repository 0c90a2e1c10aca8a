package model

import (
	"math"
	"testing"
)

func TestLinExprAccumulation(t *testing.T) {
	e := NewExpr().AddTerm(0, 2.5).AddTerm(1, -1).AddTerm(0, 0.5).AddConst(10)

	if got := e.Coeff(0); got != 3.0 {
		t.Errorf("Coeff(0) = %v, want 3.0", got)
	}
	if got := e.Coeff(1); got != -1.0 {
		t.Errorf("Coeff(1) = %v, want -1.0", got)
	}
	if got := e.Coeff(7); got != 0 {
		t.Errorf("Coeff(7) = %v, want 0 for absent variable", got)
	}
	if got := e.Offset(); got != 10.0 {
		t.Errorf("Offset() = %v, want 10.0", got)
	}
}

func TestLinExprValue(t *testing.T) {
	e := NewExpr().AddTerm(0, 3).AddTerm(2, -2).AddConst(1)

	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"full assignment", []float64{2, 99, 4}, 3*2 - 2*4 + 1},
		{"short assignment reads missing vars as zero", []float64{2}, 3*2 + 1},
		{"empty assignment", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Value(tt.values); got != tt.want {
				t.Errorf("Value(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestLinExprAddExprAndClone(t *testing.T) {
	base := NewExpr().AddTerm(0, 1).AddTerm(1, 2).AddConst(5)
	clone := base.Clone()

	sum := NewExpr().AddExpr(base, -2)
	if got := sum.Coeff(1); got != -4 {
		t.Errorf("AddExpr coeff = %v, want -4", got)
	}
	if got := sum.Offset(); got != -10 {
		t.Errorf("AddExpr offset = %v, want -10", got)
	}

	// Mutating the clone must not touch the original.
	clone.AddTerm(0, 100)
	if got := base.Coeff(0); got != 1 {
		t.Errorf("clone mutation leaked into original: coeff = %v, want 1", got)
	}
}

func TestLinExprDense(t *testing.T) {
	e := NewExpr().AddTerm(1, 4).AddTerm(3, -0.5)
	dense := e.Dense(4)
	want := []float64{0, 4, 0, -0.5}
	for i := range want {
		if dense[i] != want[i] {
			t.Errorf("Dense()[%d] = %v, want %v", i, dense[i], want[i])
		}
	}
	if math.IsNaN(e.Value(dense)) {
		t.Error("Value on dense vector produced NaN")
	}
}
