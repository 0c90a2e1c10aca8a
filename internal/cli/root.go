package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zBotta/crop-planner/internal/config"
	"github.com/zBotta/crop-planner/internal/planner"
	"github.com/zBotta/crop-planner/internal/solver"
	"github.com/zBotta/crop-planner/internal/strategy"
	"github.com/zBotta/crop-planner/pkg/logger"
)

// NewRootCmd builds the cropplanner command. Flags override environment
// configuration; both are thin glue around the planning pipeline.
func NewRootCmd() *cobra.Command {
	var (
		strategyName string
		solverName   string
		tee          bool
		wWet         float64
		wDry         float64
		riskLambda   float64
		scenarioFile string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "cropplanner",
		Short: "Two-crop production planning under weather uncertainty",
		Long: "cropplanner formulates the two-crop wet/dry planning problem and solves it\n" +
			"under a chosen robust or multi-objective criterion.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("solver") {
				cfg.Solver = solverName
			}
			if cmd.Flags().Changed("scenarios") {
				planning, err := config.LoadPlanningFile(scenarioFile)
				if err != nil {
					return err
				}
				cfg.Planning = planning
			}

			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

			strat, err := strategy.Parse(strategyName, wWet, wDry, riskLambda)
			if err != nil {
				return err
			}

			p := planner.New(cfg.Planning, log)
			_, err = p.Run(cmd.Context(), planner.RunOptions{
				Strategy: strat,
				Solver:   cfg.Solver,
				Verbose:  tee,
				Out:      cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&strategyName, "strategy", "both",
		fmt.Sprintf("objective strategy (%s)", strings.Join(strategy.Names(), ", ")))
	cmd.Flags().StringVar(&solverName, "solver", solver.FallbackEngine,
		fmt.Sprintf("solver engine (%s)", strings.Join(solver.Engines(), ", ")))
	cmd.Flags().BoolVar(&tee, "tee", false, "display solver output")
	cmd.Flags().Float64Var(&wWet, "w-wet", 0.5, "weight on wet-scenario profit (multi_weighted)")
	cmd.Flags().Float64Var(&wDry, "w-dry", 0.5, "weight on dry-scenario profit (multi_weighted)")
	cmd.Flags().Float64Var(&riskLambda, "risk-lambda", 0.0,
		"penalty on profit imbalance |wet - dry|, >= 0 (multi_weighted)")
	cmd.Flags().StringVar(&scenarioFile, "scenarios", "", "YAML scenario table overriding the built-in instance")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}
