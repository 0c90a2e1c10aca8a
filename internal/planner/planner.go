package planner

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/zBotta/crop-planner/internal/config"
	"github.com/zBotta/crop-planner/internal/model"
	"github.com/zBotta/crop-planner/internal/report"
	"github.com/zBotta/crop-planner/internal/solver"
	"github.com/zBotta/crop-planner/internal/strategy"
)

// Planner runs the single-shot planning pipeline:
// build model, apply strategy, solve, report.
type Planner struct {
	cfg config.Planning
	log zerolog.Logger
}

// New creates a planner over one planning instance.
func New(cfg config.Planning, log zerolog.Logger) *Planner {
	return &Planner{
		cfg: cfg,
		log: log.With().Str("component", "planner").Logger(),
	}
}

// RunOptions selects the strategy and solver for one run.
type RunOptions struct {
	Strategy strategy.Strategy
	Solver   string
	Verbose  bool
	Out      io.Writer
}

// Run executes the pipeline once and returns the solve result. An
// infeasible or unbounded model is not an error: the termination status is
// logged and the report still renders whatever values the engine populated.
// No retry or relaxation is attempted.
func (p *Planner) Run(ctx context.Context, opts RunOptions) (*solver.Result, error) {
	engine, err := solver.Open(opts.Solver, p.log)
	if err != nil {
		return nil, err
	}
	p.log.Info().
		Str("strategy", opts.Strategy.Name()).
		Str("solver", engine.Name()).
		Msg("Planning run starting")

	m, err := model.BuildPlanning(p.cfg)
	if err != nil {
		return nil, err
	}

	selector := strategy.NewSelector(p.cfg, engine, p.log)
	objective, err := selector.Apply(ctx, m, opts.Strategy)
	if err != nil {
		return nil, fmt.Errorf("applying strategy %s: %w", opts.Strategy.Name(), err)
	}

	res, err := engine.Solve(ctx, m, objective, solver.Options{Verbose: opts.Verbose})
	if err != nil {
		return nil, fmt.Errorf("solving: %w", err)
	}

	if res.Status != solver.StatusOptimal {
		p.log.Warn().
			Stringer("status", res.Status).
			Msg("Solve did not reach optimality, reporting values as left by the solver")
	} else {
		p.log.Info().Float64("objective", res.Objective).Msg("Solve complete")
	}

	return res, report.Render(opts.Out, report.Summarize(m, res))
}
