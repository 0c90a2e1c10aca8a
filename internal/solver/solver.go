package solver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zBotta/crop-planner/internal/model"
)

// Status is the termination status of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "failed"
	}
}

// Result carries the outcome of one solve. Values is indexed by model.VarID
// and is only meaningful when Status is optimal; other statuses leave
// whatever the engine populated, which may be nothing.
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Options tunes a single solve.
type Options struct {
	// Verbose forwards the engine's own output to stderr.
	Verbose bool
}

// Engine solves one model under one minimization-sense objective.
// A non-optimal termination is reported through Result.Status, not through
// the error; errors mean the engine itself failed to run.
type Engine interface {
	Name() string
	Available() bool
	Solve(ctx context.Context, m *model.Model, objective *model.LinExpr, opts Options) (*Result, error)
}

// FallbackEngine is attempted when the requested engine is unavailable.
const FallbackEngine = "simplex"

// Engines lists the supported engine identifiers.
func Engines() []string {
	return []string{"simplex", "highs", "cbc"}
}

func newEngine(name string, log zerolog.Logger) (Engine, error) {
	switch name {
	case "simplex":
		return NewSimplex(log), nil
	case "highs":
		return NewHighs(log), nil
	case "cbc":
		return NewCBC(log), nil
	default:
		return nil, fmt.Errorf("unknown solver %q (supported: %v)", name, Engines())
	}
}

// Open returns the engine with the given name, falling back to
// FallbackEngine when the requested one cannot be located. When neither can
// be located the error names both attempts.
func Open(name string, log zerolog.Logger) (Engine, error) {
	eng, err := newEngine(name, log)
	if err != nil {
		return nil, err
	}
	if eng.Available() {
		return eng, nil
	}
	if name == FallbackEngine {
		return nil, fmt.Errorf("solver %q is not available", name)
	}

	log.Warn().
		Str("solver", name).
		Str("fallback", FallbackEngine).
		Msg("Requested solver not found, falling back")

	fallback, err := newEngine(FallbackEngine, log)
	if err != nil {
		return nil, err
	}
	if !fallback.Available() {
		return nil, fmt.Errorf("neither solver %q nor fallback %q is available", name, FallbackEngine)
	}
	return fallback, nil
}
