package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paiban/scheduler/pkg/cpsolve"
	"github.com/paiban/scheduler/pkg/cpsolve/bruteforce"
	"github.com/paiban/scheduler/pkg/model"
	"github.com/paiban/scheduler/pkg/scheduler"
)

func bruteForceFactory() scheduler.BackendFactory {
	return func() cpsolve.Backend { return bruteforce.New() }
}

// TestEngine_EmptyBusiness_OneUnfilledSlot covers the boundary scenario
// of a scenario with zero employees but at least one required slot: with
// RelaxCoverageToSoft set, the coverage minimum is not a hard
// constraint, so the solve still returns a (trivially feasible)
// schedule with every slot reported unfilled.
func TestEngine_EmptyBusiness_OneUnfilledSlot(t *testing.T) {
	scenario := model.NewBusinessScenario(9, 10, []model.Day{model.Monday}, model.CoverageShifts)
	scenario.AddRole(model.Role{ID: "cashier", Name: "Cashier"})
	scenario.AddShiftTemplate(model.ShiftTemplate{
		ID: "T1", StartHour: 9, EndHour: 10,
		Days:  map[model.Day]struct{}{model.Monday: {}},
		Roles: []model.ShiftRoleRequirement{{RoleID: "cashier", Count: 1}},
	})

	engine, err := scheduler.NewEngine(scenario, bruteForceFactory())
	require.NoError(t, err)

	policy := model.DefaultPolicy()
	policy.RelaxCoverageToSoft = true // no employees exist, so the hard minimum would be unsatisfiable otherwise

	schedule, err := engine.Solve(policy, time.Second)
	require.NoError(t, err)
	require.True(t, schedule.IsFeasible)
	require.Equal(t, 1, schedule.Metrics.TotalSlotsRequired)
	require.Equal(t, 0, schedule.Metrics.TotalSlotsFilled)
	require.Len(t, schedule.Metrics.UnfilledSlots, 1)
}

// TestEngine_EmptyBusiness_HardCoverageIsInfeasible covers the same
// scenario with the default (hard) coverage minimum: zero employees can
// never satisfy a minimum of one. Per spec §7 kind 2 this surfaces as a
// Schedule with IsFeasible=false and the requirement reported unfilled,
// not as an error.
func TestEngine_EmptyBusiness_HardCoverageIsInfeasible(t *testing.T) {
	scenario := model.NewBusinessScenario(9, 10, []model.Day{model.Monday}, model.CoverageShifts)
	scenario.AddRole(model.Role{ID: "cashier", Name: "Cashier"})
	scenario.AddShiftTemplate(model.ShiftTemplate{
		ID: "T1", StartHour: 9, EndHour: 10,
		Days:  map[model.Day]struct{}{model.Monday: {}},
		Roles: []model.ShiftRoleRequirement{{RoleID: "cashier", Count: 1}},
	})

	engine, err := scheduler.NewEngine(scenario, bruteForceFactory())
	require.NoError(t, err)

	schedule, err := engine.Solve(model.DefaultPolicy(), time.Second)
	require.NoError(t, err)
	require.False(t, schedule.IsFeasible)
	require.Len(t, schedule.Metrics.UnfilledSlots, 1)
}

// TestEngine_ExactFit_HoursExactlyMatchCoverage covers the exact-fit
// boundary scenario: one employee whose min/max hours exactly match a
// single contiguous shift requirement, leaving no slack and no
// overtime. (Kept small deliberately — bruteForceFactory is exponential
// in variable count, so this stands in for the spec's 40-hour/week
// case rather than reproducing it hour for hour.)
func TestEngine_ExactFit_HoursExactlyMatchCoverage(t *testing.T) {
	scenario := model.NewBusinessScenario(9, 12, []model.Day{model.Monday}, model.CoverageShifts)
	scenario.AddRole(model.Role{ID: "cashier", Name: "Cashier"})

	emp := model.NewEmployee("alice", model.FullTime)
	emp.AddRole("cashier")
	emp.MinHours, emp.MaxHours = 3, 3
	for h := 9; h < 12; h++ {
		emp.Availability.Add(model.Slot{Day: model.Monday, Hour: h})
	}
	scenario.AddEmployee(emp)

	scenario.AddShiftTemplate(model.ShiftTemplate{
		ID: "T1", StartHour: 9, EndHour: 12,
		Days:  map[model.Day]struct{}{model.Monday: {}},
		Roles: []model.ShiftRoleRequirement{{RoleID: "cashier", Count: 1}},
	})

	engine, err := scheduler.NewEngine(scenario, bruteForceFactory())
	require.NoError(t, err)

	policy := model.DefaultPolicy()
	policy.MinShiftHours = 3

	schedule, err := engine.Solve(policy, time.Second)
	require.NoError(t, err)
	require.True(t, schedule.IsFeasible)
	require.Equal(t, 3, schedule.EmployeeHours["alice"])
	require.Equal(t, 0, schedule.Metrics.TotalOvertimeHours)
}

// TestEngine_SolveAlternative_DiffersFromPriorSolution covers the
// alternative-diversity boundary scenario: a second solve on the same
// Engine must differ in at least one shift variable from the first.
func TestEngine_SolveAlternative_DiffersFromPriorSolution(t *testing.T) {
	scenario := model.NewBusinessScenario(9, 11, []model.Day{model.Monday}, model.CoverageShifts)
	scenario.AddRole(model.Role{ID: "cashier", Name: "Cashier"})
	for _, id := range []model.EmployeeID{"alice", "bob"} {
		e := model.NewEmployee(id, model.FullTime)
		e.AddRole("cashier")
		e.MaxHours = 40
		e.Availability.Add(model.Slot{Day: model.Monday, Hour: 9})
		e.Availability.Add(model.Slot{Day: model.Monday, Hour: 10})
		scenario.AddEmployee(e)
	}
	scenario.AddShiftTemplate(model.ShiftTemplate{
		ID: "T1", StartHour: 9, EndHour: 11,
		Days:  map[model.Day]struct{}{model.Monday: {}},
		Roles: []model.ShiftRoleRequirement{{RoleID: "cashier", Count: 1, MaxCount: 1}},
	})

	engine, err := scheduler.NewEngine(scenario, bruteForceFactory())
	require.NoError(t, err)

	policy := model.DefaultPolicy()
	policy.MinShiftHours = 1

	first, err := engine.Solve(policy, time.Second)
	require.NoError(t, err)
	require.True(t, first.IsFeasible)

	second, err := engine.SolveAlternative(policy, time.Second)
	require.NoError(t, err)
	require.True(t, second.IsFeasible)
	require.Equal(t, 1, second.SolutionIndex)

	require.NotEqual(t, first.CoverageMatrix, second.CoverageMatrix, "alternative solve must assign at least one slot differently")
}

func TestEngine_SolveAlternative_WithoutPriorSolveIsRejected(t *testing.T) {
	scenario := model.NewBusinessScenario(9, 10, []model.Day{model.Monday}, model.CoverageShifts)
	scenario.AddRole(model.Role{ID: "cashier", Name: "Cashier"})
	engine, err := scheduler.NewEngine(scenario, bruteForceFactory())
	require.NoError(t, err)

	_, err = engine.SolveAlternative(model.DefaultPolicy(), time.Second)
	require.Error(t, err)
}
