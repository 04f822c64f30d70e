package scheduler

import (
	"github.com/paiban/scheduler/pkg/cpmodel"
	"github.com/paiban/scheduler/pkg/model"
)

// overtimeMultiplier is the payroll premium applied to hours beyond
// 40/week when estimating labor cost (spec §4.6 notes this is an
// estimate, not a payroll computation).
const overtimeMultiplier = 1.5

// computeMetrics derives ScheduleMetrics from an assembled schedule
// (spec §4.6), grounded on the same coverage/fairness/preference
// breakdown the teacher's stats analyzers produce for its own domain.
func computeMetrics(m *cpmodel.Model, schedule *model.Schedule) model.ScheduleMetrics {
	metrics := model.ScheduleMetrics{
		UnfilledByRole:      make(map[model.RoleID]int),
		UnfilledByDay:       make(map[model.Day]int),
		WeekendDistribution: make(map[model.EmployeeID]int),
	}

	// CoverageMatrix only records one employee per slot/role, so tally
	// actual headcount from SlotAssignments instead.
	filledPerReq := make(map[cpmodel.ShiftKey]int, len(m.Coverage))
	for slot, employees := range schedule.SlotAssignments {
		for _, se := range employees {
			filledPerReq[cpmodel.ShiftKey{Day: slot.Day, Hour: slot.Hour, Role: se.RoleID}]++
		}
	}

	for _, req := range m.Coverage {
		metrics.TotalSlotsRequired += req.MinStaff
		filled := filledPerReq[cpmodel.ShiftKey{Day: req.Day, Hour: req.Hour, Role: req.RoleID}]
		capped := filled
		if capped > req.MinStaff {
			capped = req.MinStaff
		}
		metrics.TotalSlotsFilled += capped

		if filled < req.MinStaff {
			needed := req.MinStaff - filled
			metrics.UnfilledSlots = append(metrics.UnfilledSlots, model.UnfilledSlot{
				Day: req.Day, Hour: req.Hour, RoleID: req.RoleID,
				Required: req.MinStaff, Filled: filled, Needed: needed,
			})
			metrics.UnfilledByRole[req.RoleID] += needed
			metrics.UnfilledByDay[req.Day] += needed
		}
	}

	for empID, e := range m.Scenario.Employees {
		hours := schedule.EmployeeHours[empID]
		if hours == 0 {
			continue
		}
		overtime := schedule.EmployeeOvertime[empID]
		regular := hours - overtime
		metrics.TotalRegularHours += regular
		metrics.TotalOvertimeHours += overtime
		metrics.EstimatedLaborCost += float64(regular) * e.HourlyRate
		metrics.EstimatedLaborCost += float64(overtime) * e.HourlyRate * overtimeMultiplier

		violation := schedule.ConsecutiveDays[empID] - e.Classification.PreferredMaxConsecutiveDays()
		if violation > 0 {
			metrics.ConsecutiveDayViolations += violation
		}
	}

	for _, a := range schedule.Assignments {
		if a.Day.IsWeekend() {
			metrics.WeekendDistribution[a.EmployeeID] += a.Hours()
		}
		e, ok := m.Scenario.Employees[a.EmployeeID]
		if !ok {
			continue
		}
		for h := a.StartHour; h < a.EndHour; h++ {
			if e.Prefers(model.Slot{Day: a.Day, Hour: h}) {
				metrics.PreferenceMatches++
			}
		}
	}

	for _, e := range m.Scenario.Employees {
		for _, slot := range e.Preferences.Sorted() {
			assigned := false
			for _, se := range schedule.SlotAssignments[slot] {
				if se.EmployeeID == e.ID {
					assigned = true
					break
				}
			}
			if !assigned {
				metrics.PreferenceMisses++
			}
		}
	}

	return metrics
}
