package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/zBotta/crop-planner/internal/domain"
)

// Kind discriminates the closed set of objective-construction strategies.
type Kind int

const (
	// KindSingleScenario maximizes one scenario's profit in isolation.
	KindSingleScenario Kind = iota
	// KindSumAll maximizes the uniform sum of all scenario profits.
	KindSumAll
	// KindMaximin maximizes the guaranteed worst-case profit.
	KindMaximin
	// KindMinimaxRegret minimizes the worst-case opportunity loss versus
	// each scenario's best achievable profit.
	KindMinimaxRegret
	// KindWeighted maximizes a weighted profit sum, optionally penalized
	// by the cross-scenario profit imbalance.
	KindWeighted
)

// Strategy is a closed description of how the scalar objective is formed.
// Unknown strategies cannot be represented: Parse rejects them at
// construction time.
type Strategy struct {
	kind     Kind
	scenario domain.ScenarioName
	weights  map[domain.ScenarioName]float64
	lambda   float64
}

// Kind returns the strategy discriminator.
func (s Strategy) Kind() Kind { return s.kind }

// Scenario returns the target scenario of a single-scenario strategy.
func (s Strategy) Scenario() domain.ScenarioName { return s.scenario }

// Weight returns the configured weight for a scenario (zero when unset).
func (s Strategy) Weight(name domain.ScenarioName) float64 { return s.weights[name] }

// Lambda returns the non-negative risk coefficient of a weighted strategy.
func (s Strategy) Lambda() float64 { return s.lambda }

// Name returns the command-surface identifier of the strategy.
func (s Strategy) Name() string {
	switch s.kind {
	case KindSingleScenario:
		return string(s.scenario)
	case KindSumAll:
		return "both"
	case KindMaximin:
		return "maxmin"
	case KindMinimaxRegret:
		return "minmax_regret"
	default:
		return "multi_weighted"
	}
}

// Names lists the recognized strategy identifiers.
func Names() []string {
	return []string{"wet", "dry", "both", "maxmin", "minmax_regret", "multi_weighted"}
}

// Parse maps a strategy identifier to its tagged variant. The weight and
// risk arguments only apply to multi_weighted; a negative risk coefficient
// is clamped to zero, weights are used as given without normalization.
func Parse(name string, wWet, wDry, riskLambda float64) (Strategy, error) {
	switch name {
	case "wet":
		return Strategy{kind: KindSingleScenario, scenario: domain.Wet}, nil
	case "dry":
		return Strategy{kind: KindSingleScenario, scenario: domain.Dry}, nil
	case "both":
		return Strategy{kind: KindSumAll}, nil
	case "maxmin":
		return Strategy{kind: KindMaximin}, nil
	case "minmax_regret":
		return Strategy{kind: KindMinimaxRegret}, nil
	case "multi_weighted":
		return Strategy{
			kind: KindWeighted,
			weights: map[domain.ScenarioName]float64{
				domain.Wet: wWet,
				domain.Dry: wDry,
			},
			lambda: math.Max(0, riskLambda),
		}, nil
	default:
		return Strategy{}, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
}
