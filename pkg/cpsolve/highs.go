package cpsolve

import (
	"time"

	"github.com/nextmv-io/sdk/mip"

	apperrors "github.com/paiban/scheduler/pkg/errors"
)

// bigM bounds the reified linear encoding (spec §4.4). Every
// coefficient and bound the model builder produces is small (hour
// counts, headcounts, weight constants in the low thousands), so this
// comfortably dominates without inviting numerical instability.
const bigM = 100000.0

// HighsBackend implements Backend on top of HiGHS via the nextmv MIP
// SDK, encoding the CP-SAT-shaped primitives as linear constraints
// (spec §4.4 Design Notes).
type HighsBackend struct {
	model mip.Model
	vars  []mip.Bool
}

// NewHighsBackend constructs an empty backend ready for variable and
// constraint registration.
func NewHighsBackend() *HighsBackend {
	return &HighsBackend{model: mip.NewModel()}
}

func (b *HighsBackend) NewBool() Var {
	v := b.model.NewBool()
	b.vars = append(b.vars, v)
	return Var(len(b.vars) - 1)
}

func (b *HighsBackend) mipVar(v Var) mip.Bool {
	return b.vars[v]
}

func senseOf(s Sense) mip.Sense {
	switch s {
	case LessOrEqual:
		return mip.LessThanOrEqual
	case GreaterOrEqual:
		return mip.GreaterThanOrEqual
	default:
		return mip.Equal
	}
}

func (b *HighsBackend) AddLinear(terms []Term, sense Sense, rhs float64) {
	c := b.model.NewConstraint(senseOf(sense), rhs)
	for _, t := range terms {
		c.NewTerm(t.Coef, b.mipVar(t.Var))
	}
}

// AddBoolOr encodes OR(lits) as sum(lits) >= 1.
func (b *HighsBackend) AddBoolOr(lits []Var) {
	c := b.model.NewConstraint(mip.GreaterThanOrEqual, 1.0)
	for _, v := range lits {
		c.NewTerm(1.0, b.mipVar(v))
	}
}

// AddMaxEquality encodes target = max(inputs) for boolean inputs as
// two families of linear constraints: target must be at least every
// input (target >= max is automatic once it's also an upper bound on
// the sum), and target must not exceed the sum of the inputs (so it
// can't be 1 when every input is 0).
func (b *HighsBackend) AddMaxEquality(target Var, inputs []Var) {
	for _, in := range inputs {
		c := b.model.NewConstraint(mip.LessThanOrEqual, 0.0)
		c.NewTerm(1.0, b.mipVar(in))
		c.NewTerm(-1.0, b.mipVar(target))
	}
	upper := b.model.NewConstraint(mip.GreaterThanOrEqual, 0.0)
	upper.NewTerm(-1.0, b.mipVar(target))
	for _, in := range inputs {
		upper.NewTerm(1.0, b.mipVar(in))
	}
}

// AddImplication encodes a => b as a - b <= 0.
func (b *HighsBackend) AddImplication(a, bb Var) {
	c := b.model.NewConstraint(mip.LessThanOrEqual, 0.0)
	c.NewTerm(1.0, b.mipVar(a))
	c.NewTerm(-1.0, b.mipVar(bb))
}

// AddReifiedLinear encodes "lit=1 implies sum(terms) <sense> rhs" with
// a one-directional big-M relaxation: when lit=0, the added slack of
// +/- bigM makes the constraint vacuous regardless of terms' value.
func (b *HighsBackend) AddReifiedLinear(lit Var, terms []Term, sense Sense, rhs float64) {
	switch sense {
	case LessOrEqual:
		c := b.model.NewConstraint(mip.LessThanOrEqual, rhs+bigM)
		for _, t := range terms {
			c.NewTerm(t.Coef, b.mipVar(t.Var))
		}
		c.NewTerm(bigM, b.mipVar(lit))
	case GreaterOrEqual:
		c := b.model.NewConstraint(mip.GreaterThanOrEqual, rhs-bigM)
		for _, t := range terms {
			c.NewTerm(t.Coef, b.mipVar(t.Var))
		}
		c.NewTerm(-bigM, b.mipVar(lit))
	case Equal:
		b.AddReifiedLinear(lit, terms, GreaterOrEqual, rhs)
		b.AddReifiedLinear(lit, terms, LessOrEqual, rhs)
	}
}

func (b *HighsBackend) Maximize(terms []Term) {
	b.model.Objective().SetMaximize()
	for _, t := range terms {
		b.model.Objective().NewTerm(t.Coef, b.mipVar(t.Var))
	}
}

func (b *HighsBackend) Solve(timeLimit time.Duration) (Solution, error) {
	solver, err := mip.NewSolver(mip.Highs, b.model)
	if err != nil {
		return Solution{}, apperrors.BackendUnavailable(err)
	}

	opts := mip.NewSolveOptions()
	if err := opts.SetMaximumDuration(timeLimit); err != nil {
		return Solution{}, apperrors.BackendUnavailable(err)
	}

	start := time.Now()
	solution, err := solver.Solve(opts)
	if err != nil {
		return Solution{}, apperrors.BackendUnavailable(err)
	}
	elapsed := time.Since(start).Milliseconds()

	status := StatusInfeasible
	switch {
	case solution.IsOptimal():
		status = StatusOptimal
	case solution.IsSubOptimal():
		status = StatusFeasible
	case timeLimit > 0 && time.Duration(elapsed)*time.Millisecond >= timeLimit:
		status = StatusTimeLimit
	}

	values := make([]float64, len(b.vars))
	if status == StatusOptimal || status == StatusFeasible {
		for i, v := range b.vars {
			values[i] = solution.Value(v)
		}
	}

	return Solution{
		Status:         status,
		Values:         values,
		ObjectiveValue: solution.ObjectiveValue(),
		ElapsedMs:      elapsed,
	}, nil
}
