package model

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/paiban/scheduler/pkg/errors"
)

// ToRecord converts a Schedule into the portable, JSON-friendly shape
// spec §6 specifies: plain maps and slices of primitives, with
// composite keys ("day,hour" / "day,hour,role_id") spelled as strings
// rather than Go struct keys, so any caller-side language can consume
// it without this package's types (spec §6, §8 round-trip property).
func (s *Schedule) ToRecord() map[string]interface{} {
	assignments := make([]map[string]interface{}, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		assignments = append(assignments, map[string]interface{}{
			"employee_id": string(a.EmployeeID),
			"day":         int(a.Day),
			"start_hour":  a.StartHour,
			"end_hour":    a.EndHour,
			"role_id":     string(a.RoleID),
		})
	}

	slotAssignments := make(map[string]interface{}, len(s.SlotAssignments))
	for slot, employees := range s.SlotAssignments {
		list := make([]map[string]interface{}, 0, len(employees))
		for _, se := range employees {
			list = append(list, map[string]interface{}{
				"employee_id": string(se.EmployeeID),
				"role_id":     string(se.RoleID),
			})
		}
		slotAssignments[slotKey(slot)] = list
	}

	coverageMatrix := make(map[string]interface{}, len(s.CoverageMatrix))
	for key, empID := range s.CoverageMatrix {
		coverageMatrix[coverageKeyString(key)] = string(empID)
	}

	employeeHours := make(map[string]interface{}, len(s.EmployeeHours))
	for id, h := range s.EmployeeHours {
		employeeHours[string(id)] = h
	}
	employeeOvertime := make(map[string]interface{}, len(s.EmployeeOvertime))
	for id, h := range s.EmployeeOvertime {
		employeeOvertime[string(id)] = h
	}
	consecutiveDays := make(map[string]interface{}, len(s.ConsecutiveDays))
	for id, d := range s.ConsecutiveDays {
		consecutiveDays[string(id)] = d
	}

	return map[string]interface{}{
		"assignments":       assignments,
		"slot_assignments":  slotAssignments,
		"coverage_matrix":   coverageMatrix,
		"total_hours_needed": s.TotalHoursNeeded,
		"total_hours_filled": s.TotalHoursFilled,
		"employee_hours":     employeeHours,
		"employee_overtime":  employeeOvertime,
		"consecutive_days":   consecutiveDays,
		"metrics":            metricsToRecord(s.Metrics),
		"is_feasible":        s.IsFeasible,
		"solve_time_ms":      s.SolveTimeMs,
		"solution_index":     s.SolutionIndex,
		"objective_value":    s.ObjectiveValue,
	}
}

func metricsToRecord(m ScheduleMetrics) map[string]interface{} {
	unfilled := make([]map[string]interface{}, 0, len(m.UnfilledSlots))
	for _, u := range m.UnfilledSlots {
		unfilled = append(unfilled, map[string]interface{}{
			"day":      int(u.Day),
			"hour":     u.Hour,
			"role_id":  string(u.RoleID),
			"required": u.Required,
			"filled":   u.Filled,
			"needed":   u.Needed,
		})
	}
	byRole := make(map[string]interface{}, len(m.UnfilledByRole))
	for r, n := range m.UnfilledByRole {
		byRole[string(r)] = n
	}
	byDay := make(map[string]interface{}, len(m.UnfilledByDay))
	for d, n := range m.UnfilledByDay {
		byDay[strconv.Itoa(int(d))] = n
	}
	weekend := make(map[string]interface{}, len(m.WeekendDistribution))
	for id, n := range m.WeekendDistribution {
		weekend[string(id)] = n
	}
	return map[string]interface{}{
		"total_slots_required":       m.TotalSlotsRequired,
		"total_slots_filled":         m.TotalSlotsFilled,
		"unfilled_slots":             unfilled,
		"unfilled_by_role":           byRole,
		"unfilled_by_day":            byDay,
		"total_regular_hours":        m.TotalRegularHours,
		"total_overtime_hours":       m.TotalOvertimeHours,
		"estimated_labor_cost":       m.EstimatedLaborCost,
		"weekend_distribution":       weekend,
		"preference_matches":         m.PreferenceMatches,
		"preference_misses":          m.PreferenceMisses,
		"consecutive_day_violations": m.ConsecutiveDayViolations,
	}
}

// FromScheduleRecord reverses ToRecord. Malformed numbers or keys in
// the entries it parses strictly yield a CodeInvalidInput error (spec
// §7 kind 1); fields that are missing or of an unexpected type are
// left at their zero value rather than rejected.
func FromScheduleRecord(rec map[string]interface{}) (*Schedule, error) {
	s := &Schedule{
		SlotAssignments:  make(map[Slot][]SlotEmployee),
		CoverageMatrix:   make(map[CoverageKey]EmployeeID),
		EmployeeHours:    make(map[EmployeeID]int),
		EmployeeOvertime: make(map[EmployeeID]int),
		ConsecutiveDays:  make(map[EmployeeID]int),
	}

	rawAssignments := asMapSlice(rec["assignments"])
	for _, ra := range rawAssignments {
		day, err := asInt(ra["day"])
		if err != nil {
			return nil, apperrors.InvalidInput("assignments.day", err.Error())
		}
		startHour, err := asInt(ra["start_hour"])
		if err != nil {
			return nil, apperrors.InvalidInput("assignments.start_hour", err.Error())
		}
		endHour, err := asInt(ra["end_hour"])
		if err != nil {
			return nil, apperrors.InvalidInput("assignments.end_hour", err.Error())
		}
		empID, _ := ra["employee_id"].(string)
		roleID, _ := ra["role_id"].(string)
		s.Assignments = append(s.Assignments, ShiftAssignment{
			EmployeeID: EmployeeID(empID),
			Day:        Day(day),
			StartHour:  startHour,
			EndHour:    endHour,
			RoleID:     RoleID(roleID),
		})
	}

	rawSlots, _ := rec["slot_assignments"].(map[string]interface{})
	for key, v := range rawSlots {
		slot, err := parseSlotKey(key)
		if err != nil {
			return nil, err
		}
		list := asMapSlice(v)
		employees := make([]SlotEmployee, 0, len(list))
		for _, entry := range list {
			empID, _ := entry["employee_id"].(string)
			roleID, _ := entry["role_id"].(string)
			employees = append(employees, SlotEmployee{EmployeeID: EmployeeID(empID), RoleID: RoleID(roleID)})
		}
		s.SlotAssignments[slot] = employees
	}

	rawCoverage, _ := rec["coverage_matrix"].(map[string]interface{})
	for key, v := range rawCoverage {
		ck, err := parseCoverageKey(key)
		if err != nil {
			return nil, err
		}
		empID, _ := v.(string)
		s.CoverageMatrix[ck] = EmployeeID(empID)
	}

	s.EmployeeHours = stringKeyedIntMap[EmployeeID](rec["employee_hours"])
	s.EmployeeOvertime = stringKeyedIntMap[EmployeeID](rec["employee_overtime"])
	s.ConsecutiveDays = stringKeyedIntMap[EmployeeID](rec["consecutive_days"])

	if th, err := asInt(rec["total_hours_needed"]); err == nil {
		s.TotalHoursNeeded = th
	}
	if th, err := asInt(rec["total_hours_filled"]); err == nil {
		s.TotalHoursFilled = th
	}
	if feasible, ok := rec["is_feasible"].(bool); ok {
		s.IsFeasible = feasible
	}
	if ms, err := asInt64(rec["solve_time_ms"]); err == nil {
		s.SolveTimeMs = ms
	}
	if idx, err := asInt(rec["solution_index"]); err == nil {
		s.SolutionIndex = idx
	}
	if obj, err := asInt64(rec["objective_value"]); err == nil {
		s.ObjectiveValue = obj
	}

	if metricsRec, ok := rec["metrics"].(map[string]interface{}); ok {
		s.Metrics = metricsFromRecord(metricsRec)
	}

	return s, nil
}

func metricsFromRecord(rec map[string]interface{}) ScheduleMetrics {
	m := ScheduleMetrics{
		UnfilledByRole:      make(map[RoleID]int),
		UnfilledByDay:       make(map[Day]int),
		WeekendDistribution: make(map[EmployeeID]int),
	}
	if v, err := asInt(rec["total_slots_required"]); err == nil {
		m.TotalSlotsRequired = v
	}
	if v, err := asInt(rec["total_slots_filled"]); err == nil {
		m.TotalSlotsFilled = v
	}
	rawUnfilled := asMapSlice(rec["unfilled_slots"])
	for _, u := range rawUnfilled {
		day, _ := asInt(u["day"])
		hour, _ := asInt(u["hour"])
		required, _ := asInt(u["required"])
		filled, _ := asInt(u["filled"])
		needed, _ := asInt(u["needed"])
		roleID, _ := u["role_id"].(string)
		m.UnfilledSlots = append(m.UnfilledSlots, UnfilledSlot{
			Day: Day(day), Hour: hour, RoleID: RoleID(roleID),
			Required: required, Filled: filled, Needed: needed,
		})
	}
	if byRole, ok := rec["unfilled_by_role"].(map[string]interface{}); ok {
		for k, v := range byRole {
			if n, err := asInt(v); err == nil {
				m.UnfilledByRole[RoleID(k)] = n
			}
		}
	}
	if byDay, ok := rec["unfilled_by_day"].(map[string]interface{}); ok {
		for k, v := range byDay {
			d, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			if n, err := asInt(v); err == nil {
				m.UnfilledByDay[Day(d)] = n
			}
		}
	}
	if v, err := asInt(rec["total_regular_hours"]); err == nil {
		m.TotalRegularHours = v
	}
	if v, err := asInt(rec["total_overtime_hours"]); err == nil {
		m.TotalOvertimeHours = v
	}
	if v, ok := rec["estimated_labor_cost"].(float64); ok {
		m.EstimatedLaborCost = v
	}
	if weekend, ok := rec["weekend_distribution"].(map[string]interface{}); ok {
		for k, v := range weekend {
			if n, err := asInt(v); err == nil {
				m.WeekendDistribution[EmployeeID(k)] = n
			}
		}
	}
	if v, err := asInt(rec["preference_matches"]); err == nil {
		m.PreferenceMatches = v
	}
	if v, err := asInt(rec["preference_misses"]); err == nil {
		m.PreferenceMisses = v
	}
	if v, err := asInt(rec["consecutive_day_violations"]); err == nil {
		m.ConsecutiveDayViolations = v
	}
	return m
}

func slotKey(s Slot) string {
	return fmt.Sprintf("%d,%d", int(s.Day), s.Hour)
}

func parseSlotKey(key string) (Slot, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return Slot{}, apperrors.InvalidInput("slot_assignments", "malformed key "+key)
	}
	day, err1 := strconv.Atoi(parts[0])
	hour, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return Slot{}, apperrors.InvalidInput("slot_assignments", "malformed key "+key)
	}
	return Slot{Day: Day(day), Hour: hour}, nil
}

func coverageKeyString(k CoverageKey) string {
	return fmt.Sprintf("%d,%d,%s", int(k.Day), k.Hour, string(k.RoleID))
}

func parseCoverageKey(key string) (CoverageKey, error) {
	parts := strings.SplitN(key, ",", 3)
	if len(parts) != 3 {
		return CoverageKey{}, apperrors.InvalidInput("coverage_matrix", "malformed key "+key)
	}
	day, err1 := strconv.Atoi(parts[0])
	hour, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return CoverageKey{}, apperrors.InvalidInput("coverage_matrix", "malformed key "+key)
	}
	return CoverageKey{Day: Day(day), Hour: hour, RoleID: RoleID(parts[2])}, nil
}

// asMapSlice normalizes a decoded JSON array into []map[string]interface{}.
// A value built in-process (ToRecord's own output) is already typed
// []map[string]interface{}; the same value round-tripped through
// encoding/json comes back as []interface{} of map[string]interface{}
// (JSON arrays are untyped), so both shapes must be accepted.
func asMapSlice(v interface{}) []map[string]interface{} {
	switch vv := v.(type) {
	case []map[string]interface{}:
		return vv
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(vv))
		for _, entry := range vv {
			if m, ok := entry.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func stringKeyedIntMap[K ~string](v interface{}) map[K]int {
	out := make(map[K]int)
	raw, ok := v.(map[string]interface{})
	if !ok {
		return out
	}
	for k, val := range raw {
		if n, err := asInt(val); err == nil {
			out[K(k)] = n
		}
	}
	return out
}

func asInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
