package model

// CoverageMode selects how a BusinessScenario derives hourly coverage
// requirements: named shift templates, or a per-role detailed config.
type CoverageMode string

const (
	CoverageShifts   CoverageMode = "shifts"
	CoverageDetailed CoverageMode = "detailed"
)

// CoverageRequirement is a per-(slot, role) staffing demand with
// [min, max] bounds, as compiled by pkg/coverage (spec §3, §4.2).
type CoverageRequirement struct {
	Day      Day
	Hour     int
	RoleID   RoleID
	MinStaff int
	MaxStaff int
	IsPeak   bool
}

// InWindow reports whether the requirement's slot falls inside the
// scenario's open days and operating hours.
func (r CoverageRequirement) InWindow(scenario *BusinessScenario) bool {
	return scenario.IsOpen(r.Day) && scenario.IsOperatingHour(r.Hour)
}

// PeakPeriod is a named rectangle of elevated demand.
type PeakPeriod struct {
	Name      string
	StartHour int
	EndHour   int
	Days      map[Day]struct{}
}

// Includes reports whether (day, hour) falls inside the peak period.
func (p PeakPeriod) Includes(day Day, hour int) bool {
	if _, ok := p.Days[day]; !ok {
		return false
	}
	return hour >= p.StartHour && hour < p.EndHour
}

// ShiftRoleRequirement is one role's staffing line inside a
// ShiftTemplate: a minimum (count) and optional cap (MaxCount) that
// applies to every hour of the template.
type ShiftRoleRequirement struct {
	RoleID   RoleID
	Count    int
	MaxCount int // 0 means "use Count as the cap too"
}

// EffectiveMax returns MaxCount, defaulting to Count when MaxCount is
// unset (spec §3: "max_count ≥ count" caps it).
func (r ShiftRoleRequirement) EffectiveMax() int {
	if r.MaxCount > 0 {
		return r.MaxCount
	}
	return r.Count
}

// ShiftTemplate is a named rectangle over the week listing role
// staffing counts. Coverage compiler sums overlapping templates per
// (day, hour, role) (spec §3, §4.2).
type ShiftTemplate struct {
	ID        string
	Name      string
	StartHour int
	EndHour   int
	Days      map[Day]struct{}
	Roles     []ShiftRoleRequirement
}

// AppliesToDay reports whether the template runs on the given day.
func (t ShiftTemplate) AppliesToDay(d Day) bool {
	_, ok := t.Days[d]
	return ok
}

// RequiredHourRange is a sub-range of operating hours within a day
// during which a RoleCoverageConfig is required (detailed mode).
type RequiredHourRange struct {
	Start int
	End   int
}

// RoleCoverageConfig is the "detailed" alternative to shift templates:
// per-role default staffing plus an optional restriction to specific
// hours/days and a peak-hour boost (spec §3, §4.2).
type RoleCoverageConfig struct {
	RoleID       RoleID
	DefaultMin   int
	DefaultMax   int
	PeakBoost    int
	RequiredHours []RequiredHourRange // empty means "all operating hours"
	RequiredDays  map[Day]struct{}    // empty means "all open days"
}

// IsRequiredAt reports whether this role config applies at (day, hour).
// An empty RequiredHours/RequiredDays means "all hours"/"all days"
// respectively (spec §4.2).
func (c RoleCoverageConfig) IsRequiredAt(day Day, hour int) bool {
	if len(c.RequiredDays) > 0 {
		if _, ok := c.RequiredDays[day]; !ok {
			return false
		}
	}
	if len(c.RequiredHours) == 0 {
		return true
	}
	for _, hr := range c.RequiredHours {
		if hour >= hr.Start && hour < hr.End {
			return true
		}
	}
	return false
}
