package scheduler

import (
	"sync"
	"time"

	"github.com/paiban/scheduler/pkg/coverage"
	"github.com/paiban/scheduler/pkg/cpmodel"
	"github.com/paiban/scheduler/pkg/cpsolve"
	apperrors "github.com/paiban/scheduler/pkg/errors"
	"github.com/paiban/scheduler/pkg/logger"
	"github.com/paiban/scheduler/pkg/model"
)

// BackendFactory builds a fresh cpsolve.Backend for one solve. A
// Backend is single-use (spec §4.4: variables and constraints are
// only ever added, never removed), so the Engine asks for a new one
// per Solve/SolveAlternative call.
type BackendFactory func() cpsolve.Backend

// Engine owns one scenario's solve lifecycle: the compiled coverage
// requirements, and the history of prior solutions an alternative
// solve must differ from (spec §4.3 constraint 12, §5, §6).
//
// Engine is not safe for concurrent use — spec §5 makes the caller
// responsible for serializing calls to one Engine. Solve and
// SolveAlternative detect concurrent entry and fail fast rather than
// silently corrupting the exclusion history.
type Engine struct {
	mu      sync.Mutex
	inUse   bool
	log     *logger.SolveLogger
	factory BackendFactory

	scenario *model.BusinessScenario
	coverage []model.CoverageRequirement
	weights  cpmodel.Weights

	excluded [][]cpmodel.ShiftKey
	lastOn   []cpmodel.ShiftKey
}

// NewEngine validates scenario and compiles its coverage requirements
// once, up front, so every subsequent Solve call reuses the same
// compiled demand (spec §4.2, §5). Objective weights default to
// cpmodel.DefaultWeights; use NewEngineWithWeights to apply operator
// overrides (spec §9 ambient stack, internal/config.SolverConfig).
func NewEngine(scenario *model.BusinessScenario, factory BackendFactory) (*Engine, error) {
	return NewEngineWithWeights(scenario, factory, cpmodel.DefaultWeights())
}

// NewEngineWithWeights is NewEngine with caller-supplied objective
// weights.
func NewEngineWithWeights(scenario *model.BusinessScenario, factory BackendFactory, weights cpmodel.Weights) (*Engine, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	compiled, err := coverage.Compile(scenario)
	if err != nil {
		return nil, err
	}
	return &Engine{
		scenario: scenario,
		coverage: compiled,
		weights:  weights,
		factory:  factory,
		log:      logger.NewSolveLogger(),
	}, nil
}

func (e *Engine) enter() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inUse {
		return apperrors.New(apperrors.CodeInternal, "Engine.Solve called while a prior solve is in progress; Engine is not safe for concurrent use").
			WithField("component", "scheduler.Engine")
	}
	e.inUse = true
	return nil
}

func (e *Engine) leave() {
	e.mu.Lock()
	e.inUse = false
	e.mu.Unlock()
}

// Solve runs one solve from a clean slate: no prior solutions are
// excluded (spec §4.5, §6).
func (e *Engine) Solve(policy model.SchedulingPolicy, timeLimit time.Duration) (*model.Schedule, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.leave()

	e.excluded = nil
	return e.solveLocked(policy, timeLimit, 0)
}

// SolveAlternative re-solves the same scenario and policy, excluding
// every solution returned by a prior Solve/SolveAlternative call on
// this Engine (spec §4.3 constraint 12). Call Reset first to start a
// fresh exclusion history.
func (e *Engine) SolveAlternative(policy model.SchedulingPolicy, timeLimit time.Duration) (*model.Schedule, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.leave()

	if e.lastOn == nil {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "SolveAlternative called before any Solve produced a solution to exclude")
	}
	e.excluded = append(e.excluded, e.lastOn)
	return e.solveLocked(policy, timeLimit, len(e.excluded))
}

// Reset clears the alternative-solution exclusion history so the next
// Solve call starts over (spec §5).
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.excluded = nil
	e.lastOn = nil
}

func (e *Engine) solveLocked(policy model.SchedulingPolicy, timeLimit time.Duration, solutionIndex int) (*model.Schedule, error) {
	e.log.SolveStart(len(e.scenario.Employees), len(e.coverage), timeLimit)
	if policy.RelaxCoverageToSoft {
		e.log.ConstraintDropped("coverage_minimum", "RelaxCoverageToSoft policy flag set")
	}

	seed := cpmodel.GreedySeed(e.scenario, e.coverage, policy)
	backend := e.factory()
	built, err := cpmodel.Build(backend, e.scenario, e.coverage, policy, e.excluded, seed, e.weights)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sol, err := built.Solve(timeLimit)
	if err != nil {
		// The backend itself failed (setup, timeout plumbing, native
		// solver unavailable) — not the same thing as an infeasible
		// model, which Assemble below turns into IsFeasible=false.
		e.log.Infeasible(err.Error())
		return nil, err
	}
	elapsed := time.Since(start)

	schedule := Assemble(built, sol)
	schedule.SolutionIndex = solutionIndex

	if !schedule.IsFeasible {
		// spec §7 kind 2: surfaced as a Schedule, not an error.
		e.log.Infeasible("solver found no assignment satisfying every hard constraint")
		return schedule, nil
	}

	e.lastOn = OnSet(built, sol)

	if solutionIndex > 0 {
		e.log.AlternativeGenerated(solutionIndex, len(e.excluded))
	}
	e.log.SolveComplete(elapsed, schedule.ObjectiveValue, schedule.Metrics.TotalSlotsFilled, schedule.Metrics.TotalSlotsRequired)

	return schedule, nil
}
