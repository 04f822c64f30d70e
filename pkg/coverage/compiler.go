// Package coverage compiles a BusinessScenario's shift templates or
// detailed role configs into the flat, per-(day, hour, role) staffing
// requirements the model builder consumes (spec §4.2). Compilation is
// pure and deterministic: the same scenario always compiles to the
// same requirement list in the same order.
package coverage

import (
	"sort"

	apperrors "github.com/paiban/scheduler/pkg/errors"
	"github.com/paiban/scheduler/pkg/model"
)

// Compile derives the coverage requirement list for scenario,
// dispatching on its Mode (spec §3, §4.2). The result is sorted by
// (day, hour, role_id) so two compiles of the same scenario are
// byte-identical (spec §5, §8).
func Compile(scenario *model.BusinessScenario) ([]model.CoverageRequirement, error) {
	var reqs []model.CoverageRequirement
	var err error

	switch scenario.Mode {
	case model.CoverageShifts:
		reqs, err = compileShifts(scenario)
	case model.CoverageDetailed:
		reqs, err = compileDetailed(scenario)
	default:
		return nil, apperrors.InvalidInput("coverage_mode", "must be 'shifts' or 'detailed'")
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(reqs, func(i, j int) bool {
		a, b := reqs[i], reqs[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return a.RoleID < b.RoleID
	})
	return reqs, nil
}

// compileShifts sums overlapping shift templates per (day, hour,
// role): minimum staff is the sum of each applicable template's
// Count, maximum staff the sum of EffectiveMax. Slots where no
// template applies to a role are skipped rather than emitted with
// zero requirement (spec §4.2: "skip empty days/roles").
func compileShifts(scenario *model.BusinessScenario) ([]model.CoverageRequirement, error) {
	type acc struct {
		min, max int
	}
	totals := make(map[model.CoverageKey]*acc)

	for _, day := range scenario.OpenDays() {
		for _, tmpl := range scenario.ShiftTemplates {
			if !tmpl.AppliesToDay(day) {
				continue
			}
			start := tmpl.StartHour
			if start < scenario.StartHour {
				start = scenario.StartHour
			}
			end := tmpl.EndHour
			if end > scenario.EndHour {
				end = scenario.EndHour
			}
			for hour := start; hour < end; hour++ {
				for _, role := range tmpl.Roles {
					key := model.CoverageKey{Day: day, Hour: hour, RoleID: role.RoleID}
					a, ok := totals[key]
					if !ok {
						a = &acc{}
						totals[key] = a
					}
					a.min += role.Count
					a.max += role.EffectiveMax()
				}
			}
		}
	}

	reqs := make([]model.CoverageRequirement, 0, len(totals))
	for key, a := range totals {
		if a.min == 0 && a.max == 0 {
			continue
		}
		reqs = append(reqs, model.CoverageRequirement{
			Day:      key.Day,
			Hour:     key.Hour,
			RoleID:   key.RoleID,
			MinStaff: a.min,
			MaxStaff: a.max,
			IsPeak:   scenario.IsPeakHour(key.Day, key.Hour),
		})
	}
	return reqs, nil
}

// compileDetailed expands each RoleCoverageConfig across the days and
// hours it applies to, adding PeakBoost to both bounds during peak
// periods (spec §4.2).
func compileDetailed(scenario *model.BusinessScenario) ([]model.CoverageRequirement, error) {
	var reqs []model.CoverageRequirement

	for _, cfg := range scenario.RoleConfigs {
		for _, day := range scenario.OpenDays() {
			for _, hour := range scenario.OperatingHours() {
				if !cfg.IsRequiredAt(day, hour) {
					continue
				}
				min, max := cfg.DefaultMin, cfg.DefaultMax
				peak := scenario.IsPeakHour(day, hour)
				if peak {
					min += cfg.PeakBoost
					max += cfg.PeakBoost
				}
				if min == 0 && max == 0 {
					continue
				}
				reqs = append(reqs, model.CoverageRequirement{
					Day:      day,
					Hour:     hour,
					RoleID:   cfg.RoleID,
					MinStaff: min,
					MaxStaff: max,
					IsPeak:   peak,
				})
			}
		}
	}
	return reqs, nil
}
