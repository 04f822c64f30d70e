package model

// ShiftAssignment is one consolidated, contiguous run an employee works
// in a single role on a single day (spec §3, §4.5).
type ShiftAssignment struct {
	EmployeeID EmployeeID
	Day        Day
	StartHour  int
	EndHour    int // exclusive
	RoleID     RoleID
}

// Hours returns the length of the assignment in hours.
func (a ShiftAssignment) Hours() int {
	return a.EndHour - a.StartHour
}

// SlotEmployee is one (employee, role) pair working a slot, the unit
// the slot_assignments map holds (spec §6).
type SlotEmployee struct {
	EmployeeID EmployeeID
	RoleID     RoleID
}

// CoverageKey indexes the coverage_matrix output (spec §6): "any one
// employee for that slot/role".
type CoverageKey struct {
	Day    Day
	Hour   int
	RoleID RoleID
}

// UnfilledSlot reports a compiled requirement that was not met (spec
// §4.6, §7 kind 3).
type UnfilledSlot struct {
	Day      Day
	Hour     int
	RoleID   RoleID
	Required int // the requirement's min_staff
	Filled   int // employees actually assigned
	Needed   int // shortage: Required - Filled
}

// ScheduleMetrics is the quality-metrics record spec §4.6 describes.
type ScheduleMetrics struct {
	TotalSlotsRequired int
	TotalSlotsFilled   int

	UnfilledSlots  []UnfilledSlot
	UnfilledByRole map[RoleID]int
	UnfilledByDay  map[Day]int

	TotalRegularHours  int
	TotalOvertimeHours int
	EstimatedLaborCost float64

	WeekendDistribution map[EmployeeID]int

	PreferenceMatches int
	PreferenceMisses  int

	ConsecutiveDayViolations int
}

// Schedule is the core's output (spec §3, §6). It is immutable once
// returned.
type Schedule struct {
	Assignments     []ShiftAssignment
	SlotAssignments map[Slot][]SlotEmployee
	CoverageMatrix  map[CoverageKey]EmployeeID

	TotalHoursNeeded int
	TotalHoursFilled int

	EmployeeHours    map[EmployeeID]int
	EmployeeOvertime map[EmployeeID]int
	ConsecutiveDays  map[EmployeeID]int

	Metrics ScheduleMetrics

	IsFeasible    bool
	SolveTimeMs   int64
	SolutionIndex int
	ObjectiveValue int64
}
