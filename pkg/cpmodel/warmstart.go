package cpmodel

import (
	"sort"

	"github.com/paiban/scheduler/pkg/model"
)

// warmStartEpsilon is the objective nudge a greedy seed assignment
// receives. It is far below Weights.Consecutive (5 by default), the
// smallest default weight, so it can only break ties the documented
// weights leave open — it never changes which solution the solver
// considers best (spec §9b).
const warmStartEpsilon = 0.01

// GreedySeed builds a fast, feasible-leaning starting assignment the
// same way the round-based greedy allocator fills shift requirements:
// repeated rounds each give every still-short requirement one more
// employee, picked in ascending order of hours already assigned, so
// workload spreads out even when the roster can't fully cover demand
// (adapted from the two-phase balanced greedy strategy). Build uses
// the result only as a warm-start nudge, never as a constraint — a
// seed that happens to be infeasible costs nothing.
func GreedySeed(scenario *model.BusinessScenario, coverage []model.CoverageRequirement, policy model.SchedulingPolicy) []ShiftKey {
	employees := scenario.SortedEmployees()
	hoursAssigned := make(map[model.EmployeeID]int, len(employees))
	assignedToday := make(map[model.Day]map[model.EmployeeID]struct{})
	for _, e := range employees {
		hoursAssigned[e.ID] = 0
	}

	reqs := make([]model.CoverageRequirement, len(coverage))
	copy(reqs, coverage)
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Day != reqs[j].Day {
			return reqs[i].Day < reqs[j].Day
		}
		return reqs[i].Hour < reqs[j].Hour
	})

	maxRounds := 0
	for _, r := range reqs {
		if r.MinStaff > maxRounds {
			maxRounds = r.MinStaff
		}
	}

	assignedCount := make(map[ShiftKey]int, len(reqs))
	var seed []ShiftKey

	dayOf := func(d model.Day) map[model.EmployeeID]struct{} {
		set, ok := assignedToday[d]
		if !ok {
			set = make(map[model.EmployeeID]struct{})
			assignedToday[d] = set
		}
		return set
	}

	for round := 1; round <= maxRounds; round++ {
		for _, r := range reqs {
			reqKey := ShiftKey{Day: r.Day, Hour: r.Hour, Role: r.RoleID}
			if assignedCount[reqKey] >= r.MinStaff || assignedCount[reqKey] >= round {
				continue
			}

			slot := model.Slot{Day: r.Day, Hour: r.Hour}
			today := dayOf(r.Day)

			candidates := make([]*model.Employee, 0, len(employees))
			for _, e := range employees {
				if !e.HasRole(r.RoleID) || !e.IsAvailable(slot) {
					continue
				}
				if _, busy := today[e.ID]; busy {
					continue
				}
				if hoursAssigned[e.ID] >= e.EffectiveMaxHours() {
					continue
				}
				candidates = append(candidates, e)
			}
			sort.Slice(candidates, func(i, j int) bool {
				return hoursAssigned[candidates[i].ID] < hoursAssigned[candidates[j].ID]
			})
			if len(candidates) == 0 {
				continue
			}

			chosen := candidates[0]
			seed = append(seed, ShiftKey{Employee: chosen.ID, Day: r.Day, Hour: r.Hour, Role: r.RoleID})
			assignedCount[reqKey]++
			hoursAssigned[chosen.ID]++
			today[chosen.ID] = struct{}{}
		}
	}

	return seed
}
