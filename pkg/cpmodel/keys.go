// Package cpmodel builds the CP/MIP decision model for one solve:
// variables, hard constraints 1-12, and the weighted objective (spec
// §4.3, §4.4), against the narrow pkg/cpsolve.Backend interface.
package cpmodel

import "github.com/paiban/scheduler/pkg/model"

// ShiftKey identifies one shift[e,d,h,r] decision variable.
type ShiftKey struct {
	Employee model.EmployeeID
	Day      model.Day
	Hour     int
	Role     model.RoleID
}

// DayKey identifies one per-employee-per-day derived variable, such
// as works_day[e,d].
type DayKey struct {
	Employee model.EmployeeID
	Day      model.Day
}

// HourKey identifies one per-employee-per-hour derived variable, such
// as the "this employee works this hour, in any role" indicator used
// to detect shift starts.
type HourKey struct {
	Employee model.EmployeeID
	Day      model.Day
	Hour     int
}

// SlotKey identifies one per-slot derived variable, such as the
// supervision-needed/supervisor-present indicators.
type SlotKey struct {
	Day  model.Day
	Hour int
}

// ReqKey identifies one compiled coverage requirement's derived
// coverage_met indicator (spec §4.3 objective term 1).
type ReqKey struct {
	Day  model.Day
	Hour int
	Role model.RoleID
}
