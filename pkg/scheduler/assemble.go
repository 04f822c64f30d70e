// Package scheduler assembles a solved cpmodel.Model into the
// portable model.Schedule output, computes its quality metrics, and
// exposes the Engine that owns one scenario's solve lifecycle
// (spec §4.5, §4.6, §5).
package scheduler

import (
	"sort"

	"github.com/paiban/scheduler/pkg/cpmodel"
	"github.com/paiban/scheduler/pkg/cpsolve"
	"github.com/paiban/scheduler/pkg/model"
)

// OnSet extracts the shift keys the solution assigned — the "on" set
// constraint 12 (solution exclusion) needs for the next alternative
// solve.
func OnSet(m *cpmodel.Model, sol cpsolve.Solution) []cpmodel.ShiftKey {
	var on []cpmodel.ShiftKey
	for key, v := range m.ShiftVars {
		if sol.Value(v) {
			on = append(on, key)
		}
	}
	sort.Slice(on, func(i, j int) bool {
		a, b := on[i], on[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		return a.Employee < b.Employee
	})
	return on
}

// Assemble turns a built model and its solved cpsolve.Solution into
// the caller-facing Schedule (spec §4.5): consolidated shift blocks,
// slot and coverage maps, per-employee rollups, and the metrics from
// pkg/scheduler/metrics.go.
func Assemble(m *cpmodel.Model, sol cpsolve.Solution) *model.Schedule {
	schedule := &model.Schedule{
		SlotAssignments:  make(map[model.Slot][]model.SlotEmployee),
		CoverageMatrix:   make(map[model.CoverageKey]model.EmployeeID),
		EmployeeHours:    make(map[model.EmployeeID]int),
		EmployeeOvertime: make(map[model.EmployeeID]int),
		ConsecutiveDays:  make(map[model.EmployeeID]int),
		IsFeasible:       sol.Status == cpsolve.StatusOptimal || sol.Status == cpsolve.StatusFeasible,
		ObjectiveValue:   int64(sol.ObjectiveValue),
		SolveTimeMs:      sol.ElapsedMs,
	}
	for _, req := range m.Coverage {
		schedule.TotalHoursNeeded += req.MinStaff
	}

	if !schedule.IsFeasible {
		// spec §7 kind 2: an infeasible solve still returns a Schedule,
		// with every compiled requirement reported unfilled.
		schedule.Metrics = computeMetrics(m, schedule)
		return schedule
	}

	on := OnSet(m, sol)

	// Raw per-hour assignment (slot map, coverage matrix, hour tally).
	type blockKey struct {
		Employee model.EmployeeID
		Day      model.Day
		Role     model.RoleID
	}
	hoursByBlock := make(map[blockKey][]int)

	for _, key := range on {
		slot := model.Slot{Day: key.Day, Hour: key.Hour}
		schedule.SlotAssignments[slot] = append(schedule.SlotAssignments[slot], model.SlotEmployee{
			EmployeeID: key.Employee, RoleID: key.Role,
		})

		ck := model.CoverageKey{Day: key.Day, Hour: key.Hour, RoleID: key.Role}
		if _, already := schedule.CoverageMatrix[ck]; !already {
			schedule.CoverageMatrix[ck] = key.Employee
		}

		schedule.EmployeeHours[key.Employee]++

		bk := blockKey{Employee: key.Employee, Day: key.Day, Role: key.Role}
		hoursByBlock[bk] = append(hoursByBlock[bk], key.Hour)
	}

	// Consolidate each (employee, day, role) run of hours into
	// contiguous ShiftAssignments.
	blocks := make([]blockKey, 0, len(hoursByBlock))
	for bk := range hoursByBlock {
		blocks = append(blocks, bk)
	}
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Employee != b.Employee {
			return a.Employee < b.Employee
		}
		return a.Role < b.Role
	})
	for _, bk := range blocks {
		hours := hoursByBlock[bk]
		sort.Ints(hours)
		start := hours[0]
		prev := hours[0]
		flush := func(end int) {
			schedule.Assignments = append(schedule.Assignments, model.ShiftAssignment{
				EmployeeID: bk.Employee, Day: bk.Day, StartHour: start, EndHour: end + 1, RoleID: bk.Role,
			})
		}
		for _, h := range hours[1:] {
			if h == prev+1 {
				prev = h
				continue
			}
			flush(prev)
			start = h
			prev = h
		}
		flush(prev)
	}

	// Per-employee worked-day set and longest consecutive run.
	worksDay := make(map[model.EmployeeID]map[model.Day]struct{})
	for key := range m.WorksDay {
		if sol.Value(m.WorksDay[key]) {
			set, ok := worksDay[key.Employee]
			if !ok {
				set = make(map[model.Day]struct{})
				worksDay[key.Employee] = set
			}
			set[key.Day] = struct{}{}
		}
	}
	for empID, days := range worksDay {
		schedule.ConsecutiveDays[empID] = longestConsecutiveRun(days)
	}

	for empID, e := range byID(m) {
		hours := schedule.EmployeeHours[empID]
		if e.OvertimeAllowed && hours > 40 {
			schedule.EmployeeOvertime[empID] = hours - 40
		}
		schedule.TotalHoursFilled += hours
	}

	schedule.Metrics = computeMetrics(m, schedule)

	return schedule
}

func byID(m *cpmodel.Model) map[model.EmployeeID]*model.Employee {
	out := make(map[model.EmployeeID]*model.Employee, len(m.Scenario.Employees))
	for id, e := range m.Scenario.Employees {
		out[id] = e
	}
	return out
}

// longestConsecutiveRun returns the length of the longest run of
// consecutive Day values present in days (Monday..Sunday, not
// wrapping across week boundaries).
func longestConsecutiveRun(days map[model.Day]struct{}) int {
	best, run := 0, 0
	for d := model.Monday; d <= model.Sunday; d++ {
		if _, ok := days[d]; ok {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}
