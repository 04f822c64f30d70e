// Package bruteforce is a reference cpsolve.Backend for small models:
// it enumerates every assignment of its boolean variables and keeps
// the best feasible one. Exponential in variable count, so it is only
// fit for the handful-of-variables scenarios exercised in tests and
// documentation — never a production backend (see cpsolve.HighsBackend
// for that).
package bruteforce

import (
	"time"

	apperrors "github.com/paiban/scheduler/pkg/errors"

	"github.com/paiban/scheduler/pkg/cpsolve"
)

const maxVars = 22

type linearConstraint struct {
	terms []cpsolve.Term
	sense cpsolve.Sense
	rhs   float64
}

type reifiedConstraint struct {
	lit   cpsolve.Var
	terms []cpsolve.Term
	sense cpsolve.Sense
	rhs   float64
}

// Backend brute-forces a boolean decision model. Zero value is ready
// to use.
type Backend struct {
	numVars     int
	linear      []linearConstraint
	boolOr      [][]cpsolve.Var
	maxEquality []struct {
		target cpsolve.Var
		inputs []cpsolve.Var
	}
	implications [][2]cpsolve.Var
	reified      []reifiedConstraint
	objective    []cpsolve.Term
}

// New creates an empty brute-force backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) NewBool() cpsolve.Var {
	v := cpsolve.Var(b.numVars)
	b.numVars++
	return v
}

func (b *Backend) AddLinear(terms []cpsolve.Term, sense cpsolve.Sense, rhs float64) {
	b.linear = append(b.linear, linearConstraint{terms: terms, sense: sense, rhs: rhs})
}

func (b *Backend) AddBoolOr(lits []cpsolve.Var) {
	b.boolOr = append(b.boolOr, lits)
}

func (b *Backend) AddMaxEquality(target cpsolve.Var, inputs []cpsolve.Var) {
	b.maxEquality = append(b.maxEquality, struct {
		target cpsolve.Var
		inputs []cpsolve.Var
	}{target: target, inputs: inputs})
}

func (b *Backend) AddImplication(a, bb cpsolve.Var) {
	b.implications = append(b.implications, [2]cpsolve.Var{a, bb})
}

func (b *Backend) AddReifiedLinear(lit cpsolve.Var, terms []cpsolve.Term, sense cpsolve.Sense, rhs float64) {
	b.reified = append(b.reified, reifiedConstraint{lit: lit, terms: terms, sense: sense, rhs: rhs})
}

func (b *Backend) Maximize(terms []cpsolve.Term) {
	b.objective = terms
}

// Solve enumerates every assignment of the backend's variables and
// returns the feasible one with the greatest objective value.
func (b *Backend) Solve(timeLimit time.Duration) (cpsolve.Solution, error) {
	if b.numVars > maxVars {
		return cpsolve.Solution{}, apperrors.New(apperrors.CodeBackendUnavailable, "brute-force backend cannot handle this many variables").
			WithField("num_vars", b.numVars)
	}

	start := time.Now()
	best := cpsolve.Solution{Status: cpsolve.StatusInfeasible}
	found := false

	total := 1 << uint(b.numVars)
	for mask := 0; mask < total; mask++ {
		values := maskToValues(mask, b.numVars)
		if !b.satisfies(values) {
			continue
		}
		obj := objectiveValue(b.objective, values)
		if !found || obj > best.ObjectiveValue {
			found = true
			best = cpsolve.Solution{
				Status:         cpsolve.StatusOptimal,
				Values:         values,
				ObjectiveValue: obj,
			}
		}
	}

	best.ElapsedMs = time.Since(start).Milliseconds()
	if !found {
		// No assignment satisfies every constraint: report it through
		// Status, not an error. Matches cpsolve.HighsBackend, where
		// error is reserved for the backend itself failing.
		return best, nil
	}
	return best, nil
}

func maskToValues(mask, numVars int) []float64 {
	values := make([]float64, numVars)
	for i := 0; i < numVars; i++ {
		if mask&(1<<uint(i)) != 0 {
			values[i] = 1
		}
	}
	return values
}

func objectiveValue(terms []cpsolve.Term, values []float64) float64 {
	var total float64
	for _, t := range terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

func (b *Backend) satisfies(values []float64) bool {
	for _, c := range b.linear {
		if !linearHolds(c.terms, c.sense, c.rhs, values) {
			return false
		}
	}
	for _, lits := range b.boolOr {
		any := false
		for _, v := range lits {
			if values[v] >= 0.5 {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	for _, m := range b.maxEquality {
		want := 0.0
		for _, in := range m.inputs {
			if values[in] >= 0.5 {
				want = 1
				break
			}
		}
		got := values[m.target]
		if (got >= 0.5) != (want >= 0.5) {
			return false
		}
	}
	for _, impl := range b.implications {
		if values[impl[0]] >= 0.5 && values[impl[1]] < 0.5 {
			return false
		}
	}
	for _, r := range b.reified {
		if values[r.lit] < 0.5 {
			continue
		}
		if !linearHolds(r.terms, r.sense, r.rhs, values) {
			return false
		}
	}
	return true
}

func linearHolds(terms []cpsolve.Term, sense cpsolve.Sense, rhs float64, values []float64) bool {
	var sum float64
	for _, t := range terms {
		sum += t.Coef * values[t.Var]
	}
	switch sense {
	case cpsolve.LessOrEqual:
		return sum <= rhs+1e-9
	case cpsolve.GreaterOrEqual:
		return sum >= rhs-1e-9
	case cpsolve.Equal:
		return sum > rhs-1e-9 && sum < rhs+1e-9
	default:
		return false
	}
}
