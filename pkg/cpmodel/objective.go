package cpmodel

import "github.com/paiban/scheduler/pkg/model"

// Objective term weights (spec §4.3): the relative priority of
// coverage over preference over fairness. WeightStrategy is not
// caller-tunable — it only encodes the Strategy tiebreak direction.
const WeightStrategy = 5

// Weights holds the caller-tunable objective coefficients (spec §9
// ambient stack: operators may reweight fairness vs. overtime vs.
// preference without recompiling). DefaultWeights matches the
// documented weight table.
type Weights struct {
	Coverage    float64
	Preference  float64
	Consecutive float64
	Fairness    float64
	Overtime    float64
}

// DefaultWeights returns the spec's documented objective weights.
func DefaultWeights() Weights {
	return Weights{
		Coverage:    1000,
		Preference:  10,
		Consecutive: 5,
		Fairness:    10,
		Overtime:    20,
	}
}

// strategyCoefficient returns the per-filled-hour bonus/penalty the
// scheduling strategy contributes: minimize pulls toward fewer
// scheduled hours, maximize toward more, balanced is neutral (spec
// §4.3).
func strategyCoefficient(s model.Strategy) float64 {
	switch s {
	case model.StrategyMinimize:
		return -WeightStrategy
	case model.StrategyMaximize:
		return WeightStrategy
	default:
		return 0
	}
}
