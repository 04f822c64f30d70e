package model

// Strategy tilts the objective toward fewer, neutral, or more staffed
// hours (spec §4.3).
type Strategy string

const (
	StrategyMinimize Strategy = "minimize"
	StrategyBalanced Strategy = "balanced"
	StrategyMaximize Strategy = "maximize"
)

// MaxDaysMode controls how a per-classification max-days-per-week cap
// is enforced: not at all, as a soft penalty ladder, or as a hard cap
// (spec §4.3).
type MaxDaysMode string

const (
	MaxDaysOff       MaxDaysMode = "off"
	MaxDaysPreferred MaxDaysMode = "preferred"
	MaxDaysRequired  MaxDaysMode = "required"
)

// SchedulingPolicy is the caller-supplied set of knobs the model
// builder consumes (spec §4.3). Objective weights are not part of it:
// they are passed separately as a cpmodel.Weights value (defaults from
// cpmodel.DefaultWeights in objective.go); policy only carries the
// structural knobs.
type SchedulingPolicy struct {
	MinShiftHours         int
	MaxHoursPerDay         int
	MaxSplitsPerDay        int
	MaxSplitShiftsPerWeek  int
	SchedulingStrategy     Strategy

	MaxDaysFT     int
	MaxDaysFTMode MaxDaysMode
	MaxDaysPT     int
	MaxDaysPTMode MaxDaysMode

	// RelaxCoverageToSoft toggles the Open Question in spec §9: when
	// true, coverage minimums are dropped from the hard constraint set
	// and rely solely on the Weights.Coverage objective term to drive
	// priority. Default false (coverage minimums stay hard, matching
	// the redundant-but-safe behavior the original source exhibits).
	RelaxCoverageToSoft bool
}

// DefaultPolicy returns the policy's documented defaults, matching the
// values the original source used (spec §4.3, §9).
func DefaultPolicy() SchedulingPolicy {
	return SchedulingPolicy{
		MinShiftHours:         2,
		MaxHoursPerDay:        8,
		MaxSplitsPerDay:       2,
		MaxSplitShiftsPerWeek: 2,
		SchedulingStrategy:    StrategyBalanced,
		MaxDaysFT:             5,
		MaxDaysFTMode:         MaxDaysRequired,
		MaxDaysPT:             3,
		MaxDaysPTMode:         MaxDaysRequired,
	}
}

// MaxDaysFor returns the (cap, mode) pair applicable to the given
// classification.
func (p SchedulingPolicy) MaxDaysFor(c Classification) (int, MaxDaysMode) {
	if c == FullTime {
		return p.MaxDaysFT, p.MaxDaysFTMode
	}
	return p.MaxDaysPT, p.MaxDaysPTMode
}
