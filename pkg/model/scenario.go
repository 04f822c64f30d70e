package model

import (
	"sort"

	apperrors "github.com/paiban/scheduler/pkg/errors"
)

// BusinessScenario aggregates everything the core needs for one solve:
// the operating window, the roster of roles and employees, and the
// raw coverage configuration (shift templates or detailed configs,
// per Mode).
type BusinessScenario struct {
	StartHour int
	EndHour   int
	DaysOpen  map[Day]struct{}
	Mode      CoverageMode

	Roles     map[RoleID]Role
	Employees map[EmployeeID]*Employee

	ShiftTemplates []ShiftTemplate
	RoleConfigs    []RoleCoverageConfig
	PeakPeriods    []PeakPeriod
}

// NewBusinessScenario builds an empty scenario for the given operating
// window. Use AddRole/AddEmployee/AddShiftTemplate/AddRoleConfig to
// populate it, then Validate before handing it to the engine.
func NewBusinessScenario(startHour, endHour int, daysOpen []Day, mode CoverageMode) *BusinessScenario {
	days := make(map[Day]struct{}, len(daysOpen))
	for _, d := range daysOpen {
		days[d] = struct{}{}
	}
	return &BusinessScenario{
		StartHour: startHour,
		EndHour:   endHour,
		DaysOpen:  days,
		Mode:      mode,
		Roles:     make(map[RoleID]Role),
		Employees: make(map[EmployeeID]*Employee),
	}
}

// AddRole registers a role with the scenario.
func (b *BusinessScenario) AddRole(r Role) {
	b.Roles[r.ID] = r
}

// AddEmployee registers an employee with the scenario.
func (b *BusinessScenario) AddEmployee(e *Employee) {
	b.Employees[e.ID] = e
}

// AddShiftTemplate appends a shift template (shifts mode).
func (b *BusinessScenario) AddShiftTemplate(t ShiftTemplate) {
	b.ShiftTemplates = append(b.ShiftTemplates, t)
}

// AddRoleConfig appends a role coverage config (detailed mode).
func (b *BusinessScenario) AddRoleConfig(c RoleCoverageConfig) {
	b.RoleConfigs = append(b.RoleConfigs, c)
}

// IsOpen reports whether the business operates on the given day.
func (b *BusinessScenario) IsOpen(d Day) bool {
	_, ok := b.DaysOpen[d]
	return ok
}

// IsOperatingHour reports whether hour falls in [StartHour, EndHour).
func (b *BusinessScenario) IsOperatingHour(hour int) bool {
	return hour >= b.StartHour && hour < b.EndHour
}

// OperatingHours returns the operating hours in ascending order.
func (b *BusinessScenario) OperatingHours() []int {
	hours := make([]int, 0, b.EndHour-b.StartHour)
	for h := b.StartHour; h < b.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// OpenDays returns the open days in ascending (Monday..Sunday) order —
// the deterministic iteration order the model builder relies on
// (spec §5).
func (b *BusinessScenario) OpenDays() []Day {
	days := make([]Day, 0, len(b.DaysOpen))
	for d := range b.DaysOpen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// SortedEmployees returns employees ordered by id — the deterministic
// order required by spec §5 for byte-stable model construction.
func (b *BusinessScenario) SortedEmployees() []*Employee {
	out := make([]*Employee, 0, len(b.Employees))
	for _, e := range b.Employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsPeakHour reports whether (day, hour) falls inside any configured
// peak period.
func (b *BusinessScenario) IsPeakHour(day Day, hour int) bool {
	for _, p := range b.PeakPeriods {
		if p.Includes(day, hour) {
			return true
		}
	}
	return false
}

// Validate checks the invariants spec §7 classifies as InvalidInput:
// start_hour >= end_hour, an employee with min_hours > max_hours, a
// coverage/role reference to an unknown role id, and negative counts.
// It does not check feasibility — that is the solver's job.
func (b *BusinessScenario) Validate() error {
	if b.StartHour >= b.EndHour {
		return apperrors.InvalidInput("start_hour", "must be less than end_hour")
	}
	if len(b.DaysOpen) == 0 {
		return apperrors.InvalidInput("days_open", "must not be empty")
	}

	for id, e := range b.Employees {
		if e.ID != id {
			return apperrors.InvalidInput("employees", "map key must match employee id")
		}
		if e.MinHours < 0 || e.MaxHours < 0 {
			return apperrors.InvalidInput("employee.hours", "min_hours/max_hours must not be negative")
		}
		if e.MinHours > e.MaxHours {
			return apperrors.InvalidInput("employee.hours", "min_hours must not exceed max_hours")
		}
		for role := range e.Roles {
			if _, ok := b.Roles[role]; !ok {
				return apperrors.InvalidInput("employee.roles", "references unknown role id "+string(role))
			}
		}
	}

	switch b.Mode {
	case CoverageShifts:
		for _, t := range b.ShiftTemplates {
			for _, r := range t.Roles {
				if _, ok := b.Roles[r.RoleID]; !ok {
					return apperrors.InvalidInput("shift_template.roles", "references unknown role id "+string(r.RoleID))
				}
				if r.Count < 0 || r.MaxCount < 0 {
					return apperrors.InvalidInput("shift_template.roles", "count/max_count must not be negative")
				}
			}
		}
	case CoverageDetailed:
		for _, c := range b.RoleConfigs {
			if _, ok := b.Roles[c.RoleID]; !ok {
				return apperrors.InvalidInput("role_config", "references unknown role id "+string(c.RoleID))
			}
			if c.DefaultMin < 0 || c.DefaultMax < 0 {
				return apperrors.InvalidInput("role_config", "default_min/default_max must not be negative")
			}
		}
	default:
		return apperrors.InvalidInput("coverage_mode", "must be 'shifts' or 'detailed'")
	}

	return nil
}
