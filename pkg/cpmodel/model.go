package cpmodel

import (
	"time"

	"github.com/paiban/scheduler/pkg/cpsolve"
	"github.com/paiban/scheduler/pkg/model"
)

// Model is a built decision model: the variable maps the decoder
// needs to translate a cpsolve.Solution back into a model.Schedule,
// plus the backend it was built against.
type Model struct {
	Backend cpsolve.Backend

	Scenario *model.BusinessScenario
	Coverage []model.CoverageRequirement
	Policy   model.SchedulingPolicy

	ShiftVars   map[ShiftKey]cpsolve.Var
	HourWorked  map[HourKey]cpsolve.Var
	StartsAt    map[HourKey]cpsolve.Var
	WorksDay    map[DayKey]cpsolve.Var
	SplitDay    map[DayKey]cpsolve.Var
	CoverageMet map[ReqKey]cpsolve.Var
}

// Solve runs the backend up to timeLimit. A solver-reported infeasible
// status is not an error: it is returned to the caller as an ordinary
// cpsolve.Solution with Status == StatusInfeasible (spec §7 kind 2),
// which pkg/scheduler.Assemble turns into a Schedule with
// IsFeasible = false rather than raising. An error return means the
// backend itself failed (setup, timeout plumbing, native solver
// unavailable), not that the model had no feasible assignment.
func (m *Model) Solve(timeLimit time.Duration) (cpsolve.Solution, error) {
	return m.Backend.Solve(timeLimit)
}

// Build constructs the full decision model for one solve: variables,
// hard constraints 1-12, and the weighted objective (spec §4.3,
// §4.4). excluded lists prior solutions' "on" variable sets that the
// new solve must differ from in at least one variable (constraint
// 12, alternative generation — spec §4.3, §6).
func Build(
	backend cpsolve.Backend,
	scenario *model.BusinessScenario,
	coverage []model.CoverageRequirement,
	policy model.SchedulingPolicy,
	excluded [][]ShiftKey,
	seed []ShiftKey,
	weights Weights,
) (*Model, error) {
	m := &Model{
		Backend:     backend,
		Scenario:    scenario,
		Coverage:    coverage,
		Policy:      policy,
		ShiftVars:   make(map[ShiftKey]cpsolve.Var),
		HourWorked:  make(map[HourKey]cpsolve.Var),
		StartsAt:    make(map[HourKey]cpsolve.Var),
		WorksDay:    make(map[DayKey]cpsolve.Var),
		SplitDay:    make(map[DayKey]cpsolve.Var),
		CoverageMet: make(map[ReqKey]cpsolve.Var),
	}

	slotRoles := make(map[SlotKey][]model.RoleID)
	for _, req := range coverage {
		sk := SlotKey{Day: req.Day, Hour: req.Hour}
		slotRoles[sk] = append(slotRoles[sk], req.RoleID)
	}

	employees := scenario.SortedEmployees()

	// 1, 11: shift[e,d,h,r] variables — created only for slots the
	// employee is available for and eligible (by role) to fill;
	// absence of a variable is itself the availability/eligibility
	// constraint, cheaper than creating then zeroing it.
	for _, req := range coverage {
		for _, e := range employees {
			if !e.Schedulable() || !e.HasRole(req.RoleID) {
				continue
			}
			slot := model.Slot{Day: req.Day, Hour: req.Hour}
			if !e.IsAvailable(slot) {
				continue
			}
			key := ShiftKey{Employee: e.ID, Day: req.Day, Hour: req.Hour, Role: req.RoleID}
			if _, ok := m.ShiftVars[key]; ok {
				continue
			}
			m.ShiftVars[key] = backend.NewBool()
		}
	}

	// 2: one role per hour.
	for _, e := range employees {
		for _, day := range scenario.OpenDays() {
			for _, hour := range scenario.OperatingHours() {
				var terms []cpsolve.Term
				for _, role := range slotRoles[SlotKey{Day: day, Hour: hour}] {
					if v, ok := m.ShiftVars[ShiftKey{Employee: e.ID, Day: day, Hour: hour, Role: role}]; ok {
						terms = append(terms, cpsolve.Term{Coef: 1, Var: v})
					}
				}
				if len(terms) > 1 {
					backend.AddLinear(terms, cpsolve.LessOrEqual, 1)
				}
			}
		}
	}

	// hourWorked[e,d,h] = OR over roles of shift[e,d,h,r].
	for _, e := range employees {
		for _, day := range scenario.OpenDays() {
			for _, hour := range scenario.OperatingHours() {
				var roleVars []cpsolve.Var
				for _, role := range slotRoles[SlotKey{Day: day, Hour: hour}] {
					if v, ok := m.ShiftVars[ShiftKey{Employee: e.ID, Day: day, Hour: hour, Role: role}]; ok {
						roleVars = append(roleVars, v)
					}
				}
				if len(roleVars) == 0 {
					continue
				}
				hk := HourKey{Employee: e.ID, Day: day, Hour: hour}
				if len(roleVars) == 1 {
					m.HourWorked[hk] = roleVars[0]
					continue
				}
				hv := backend.NewBool()
				backend.AddMaxEquality(hv, roleVars)
				m.HourWorked[hk] = hv
			}
		}
	}

	// 3: max hours per day.
	for _, e := range employees {
		for _, day := range scenario.OpenDays() {
			var terms []cpsolve.Term
			for _, hour := range scenario.OperatingHours() {
				if v, ok := m.HourWorked[HourKey{Employee: e.ID, Day: day, Hour: hour}]; ok {
					terms = append(terms, cpsolve.Term{Coef: 1, Var: v})
				}
			}
			if len(terms) > 0 {
				backend.AddLinear(terms, cpsolve.LessOrEqual, float64(policy.MaxHoursPerDay))
			}
		}
	}

	// 4: coverage min/max per (day, hour, role). RelaxCoverageToSoft
	// (spec §9 Open Question) drops the minimum from the hard set,
	// relying on the Weights.Coverage objective term to pull toward it.
	// A requirement with no eligible/available employee still gets its
	// minimum constraint added with zero terms, deliberately
	// unsatisfiable (sum of nothing is 0): that is what makes an
	// unfillable hard minimum surface as Infeasible rather than a
	// silently-dropped constraint (spec §7 kind 2, §8 empty-business
	// case).
	for _, req := range coverage {
		var terms []cpsolve.Term
		for _, e := range employees {
			if v, ok := m.ShiftVars[ShiftKey{Employee: e.ID, Day: req.Day, Hour: req.Hour, Role: req.RoleID}]; ok {
				terms = append(terms, cpsolve.Term{Coef: 1, Var: v})
			}
		}
		if req.MaxStaff > 0 && len(terms) > 0 {
			backend.AddLinear(terms, cpsolve.LessOrEqual, float64(req.MaxStaff))
		}
		if req.MinStaff > 0 && !policy.RelaxCoverageToSoft {
			backend.AddLinear(terms, cpsolve.GreaterOrEqual, float64(req.MinStaff))
		}

		// Objective term 1 (coverage met indicator): reified rather than
		// a flat per-shift-variable reward, so it reports whether *this*
		// requirement's minimum is actually met — the form that still
		// means something when RelaxCoverageToSoft drops the hard
		// minimum (spec §7 kind 3, §9 Open Question).
		if req.MinStaff > 0 {
			met := backend.NewBool()
			backend.AddReifiedLinear(met, terms, cpsolve.GreaterOrEqual, float64(req.MinStaff))
			m.CoverageMet[ReqKey{Day: req.Day, Hour: req.Hour, Role: req.RoleID}] = met
		}
	}

	// 5: supervision. For every slot a supervision-needing employee
	// could work, require a CanSupervise employee also be scheduled.
	slotKeys := make(map[SlotKey]struct{})
	for _, req := range coverage {
		slotKeys[SlotKey{Day: req.Day, Hour: req.Hour}] = struct{}{}
	}
	for sk := range slotKeys {
		var needers, supervisors []cpsolve.Var
		for _, e := range employees {
			hv, ok := m.HourWorked[HourKey{Employee: e.ID, Day: sk.Day, Hour: sk.Hour}]
			if !ok {
				continue
			}
			if e.NeedsSupervision {
				needers = append(needers, hv)
			}
			if e.CanSupervise {
				supervisors = append(supervisors, hv)
			}
		}
		if len(needers) == 0 {
			continue
		}
		needed := orVar(backend, needers)
		if len(supervisors) == 0 {
			// No one can ever supervise this slot: force every
			// supervision-needing employee's hour to zero instead of
			// building an unsatisfiable implication.
			for _, v := range needers {
				backend.AddLinear([]cpsolve.Term{{Coef: 1, Var: v}}, cpsolve.LessOrEqual, 0)
			}
			continue
		}
		present := orVar(backend, supervisors)
		backend.AddImplication(needed, present)
	}

	// 7, 8: shift-start indicators, minimum shift length, max splits
	// per day.
	for _, e := range employees {
		for _, day := range scenario.OpenDays() {
			var starts []cpsolve.Var
			hours := scenario.OperatingHours()
			for i, hour := range hours {
				hk := HourKey{Employee: e.ID, Day: day, Hour: hour}
				hv, ok := m.HourWorked[hk]
				if !ok {
					continue
				}
				var start cpsolve.Var
				if i == 0 {
					start = hv
				} else {
					prevHK := HourKey{Employee: e.ID, Day: day, Hour: hours[i-1]}
					prevHV, hasPrev := m.HourWorked[prevHK]
					if !hasPrev {
						start = hv
					} else {
						start = backend.NewBool()
						backend.AddLinear([]cpsolve.Term{{Coef: 1, Var: start}, {Coef: -1, Var: hv}}, cpsolve.LessOrEqual, 0)
						backend.AddLinear([]cpsolve.Term{{Coef: 1, Var: start}, {Coef: 1, Var: prevHV}}, cpsolve.LessOrEqual, 1)
						backend.AddLinear([]cpsolve.Term{{Coef: 1, Var: hv}, {Coef: -1, Var: prevHV}, {Coef: -1, Var: start}}, cpsolve.LessOrEqual, 0)
					}
				}
				// Minimum shift length: forbid a start that cannot
				// run for policy.MinShiftHours before closing, or
				// whose required follow-on hours have no variable
				// (the employee has no way to work them).
				canRun := hour+policy.MinShiftHours <= scenario.EndHour
				if canRun {
					for k := 1; k < policy.MinShiftHours; k++ {
						followHK := HourKey{Employee: e.ID, Day: day, Hour: hour + k}
						followHV, ok := m.HourWorked[followHK]
						if !ok {
							canRun = false
							break
						}
						backend.AddImplication(start, followHV)
					}
				}
				if !canRun {
					backend.AddLinear([]cpsolve.Term{{Coef: 1, Var: start}}, cpsolve.LessOrEqual, 0)
				}
				m.StartsAt[hk] = start
				starts = append(starts, start)
			}
			if len(starts) == 0 {
				continue
			}
			startTerms := make([]cpsolve.Term, len(starts))
			for i, s := range starts {
				startTerms[i] = cpsolve.Term{Coef: 1, Var: s}
			}
			backend.AddLinear(startTerms, cpsolve.LessOrEqual, float64(policy.MaxSplitsPerDay))

			// 9: split-day indicator, counted per week below.
			if policy.MaxSplitShiftsPerWeek >= 0 {
				splitDay := backend.NewBool()
				localM := float64(len(hours))
				terms := append(append([]cpsolve.Term{}, startTerms...), cpsolve.Term{Coef: -localM, Var: splitDay})
				backend.AddLinear(terms, cpsolve.LessOrEqual, 1)
				m.SplitDay[DayKey{Employee: e.ID, Day: day}] = splitDay
			}
		}
	}

	// 9: max split-days per week.
	for _, e := range employees {
		var terms []cpsolve.Term
		for _, day := range scenario.OpenDays() {
			if v, ok := m.SplitDay[DayKey{Employee: e.ID, Day: day}]; ok {
				terms = append(terms, cpsolve.Term{Coef: 1, Var: v})
			}
		}
		if len(terms) > 0 {
			backend.AddLinear(terms, cpsolve.LessOrEqual, float64(policy.MaxSplitShiftsPerWeek))
		}
	}

	// works_day[e,d] and 10: max days per week.
	var overflowUnits []cpsolve.Var
	for _, e := range employees {
		dayCap, mode := policy.MaxDaysFor(e.Classification)
		var dayVars []cpsolve.Var
		for _, day := range scenario.OpenDays() {
			var hourVars []cpsolve.Var
			for _, hour := range scenario.OperatingHours() {
				if v, ok := m.HourWorked[HourKey{Employee: e.ID, Day: day, Hour: hour}]; ok {
					hourVars = append(hourVars, v)
				}
			}
			if len(hourVars) == 0 {
				continue
			}
			wd := backend.NewBool()
			backend.AddMaxEquality(wd, hourVars)
			m.WorksDay[DayKey{Employee: e.ID, Day: day}] = wd
			dayVars = append(dayVars, wd)
		}
		if len(dayVars) == 0 || mode == model.MaxDaysOff {
			continue
		}
		terms := make([]cpsolve.Term, len(dayVars))
		for i, v := range dayVars {
			terms[i] = cpsolve.Term{Coef: 1, Var: v}
		}
		if mode == model.MaxDaysRequired {
			backend.AddLinear(terms, cpsolve.LessOrEqual, float64(dayCap))
			continue
		}
		// Preferred: soft cap via unary overflow units penalized in
		// the objective instead of excluded outright.
		overflow := len(dayVars) - dayCap
		if overflow <= 0 {
			backend.AddLinear(terms, cpsolve.LessOrEqual, float64(dayCap))
			continue
		}
		units := make([]cpsolve.Var, overflow)
		for i := range units {
			units[i] = backend.NewBool()
		}
		capped := append([]cpsolve.Term{}, terms...)
		for _, u := range units {
			capped = append(capped, cpsolve.Term{Coef: -1, Var: u})
		}
		backend.AddLinear(capped, cpsolve.LessOrEqual, float64(dayCap))
		overflowUnits = append(overflowUnits, units...)
	}

	// 6: weekly hours, with an overtime unary counter for employees
	// who may work beyond 40.
	var overtimeUnits []cpsolve.Var
	for _, e := range employees {
		var terms []cpsolve.Term
		for key, v := range m.ShiftVars {
			if key.Employee == e.ID {
				terms = append(terms, cpsolve.Term{Coef: 1, Var: v})
			}
		}
		if len(terms) == 0 {
			continue
		}
		if e.MinHours > 0 {
			backend.AddLinear(terms, cpsolve.GreaterOrEqual, float64(e.MinHours))
		}
		effectiveMax := e.EffectiveMaxHours()
		if e.OvertimeAllowed && e.MaxHours > 40 {
			units := make([]cpsolve.Var, e.MaxHours-40)
			for i := range units {
				units[i] = backend.NewBool()
			}
			capped := append([]cpsolve.Term{}, terms...)
			for _, u := range units {
				capped = append(capped, cpsolve.Term{Coef: -1, Var: u})
			}
			backend.AddLinear(capped, cpsolve.LessOrEqual, 40)
			backend.AddLinear(terms, cpsolve.LessOrEqual, float64(e.MaxHours))
			overtimeUnits = append(overtimeUnits, units...)
		} else {
			backend.AddLinear(terms, cpsolve.LessOrEqual, float64(effectiveMax))
		}
	}

	// 12: exclude every prior solution.
	for _, solution := range excluded {
		on := make(map[ShiftKey]struct{}, len(solution))
		var terms []cpsolve.Term
		for _, key := range solution {
			if v, ok := m.ShiftVars[key]; ok {
				on[key] = struct{}{}
				terms = append(terms, cpsolve.Term{Coef: -1, Var: v})
			}
		}
		for key, v := range m.ShiftVars {
			if _, isOn := on[key]; !isOn {
				terms = append(terms, cpsolve.Term{Coef: 1, Var: v})
			}
		}
		if len(terms) > 0 {
			backend.AddLinear(terms, cpsolve.GreaterOrEqual, float64(1-len(on)))
		}
	}

	buildObjective(backend, m, employees, overtimeUnits, overflowUnits, seed, weights)

	return m, nil
}

// orVar returns a single variable equal to OR(vars): vars[0] directly
// when there is nothing to combine, otherwise a fresh max-equality
// variable.
func orVar(backend cpsolve.Backend, vars []cpsolve.Var) cpsolve.Var {
	if len(vars) == 1 {
		return vars[0]
	}
	v := backend.NewBool()
	backend.AddMaxEquality(v, vars)
	return v
}

func buildObjective(backend cpsolve.Backend, m *Model, employees []*model.Employee, overtimeUnits, overflowUnits []cpsolve.Var, seed []ShiftKey, weights Weights) {
	byID := make(map[model.EmployeeID]*model.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}
	inSeed := make(map[ShiftKey]struct{}, len(seed))
	for _, key := range seed {
		inSeed[key] = struct{}{}
	}

	strategyCoef := strategyCoefficient(m.Policy.SchedulingStrategy)

	var terms []cpsolve.Term
	for key, v := range m.ShiftVars {
		coef := strategyCoef
		if e, ok := byID[key.Employee]; ok && e.Prefers(model.Slot{Day: key.Day, Hour: key.Hour}) {
			coef += weights.Preference
		}
		// Warm-start nudge (spec §9b): break ties toward the greedy
		// seed without disturbing the weight hierarchy above it.
		if _, ok := inSeed[key]; ok {
			coef += warmStartEpsilon
		}
		terms = append(terms, cpsolve.Term{Coef: coef, Var: v})
	}
	// Objective term 1: reward the reified coverage-met indicator per
	// compiled requirement, not a flat bonus on every shift variable.
	for _, v := range m.CoverageMet {
		terms = append(terms, cpsolve.Term{Coef: weights.Coverage, Var: v})
	}
	for _, v := range overtimeUnits {
		terms = append(terms, cpsolve.Term{Coef: -weights.Overtime, Var: v})
	}
	// Days-worked over cap in Preferred mode (spec §4.3 term 3).
	for _, v := range overflowUnits {
		terms = append(terms, cpsolve.Term{Coef: -weights.Consecutive, Var: v})
	}

	// Weekend assignment to high-history employees (spec §4.3 term 4;
	// solver.py:484-494): penalize works_day on a weekend for any
	// employee whose WeekendShiftsWorked sits above the mean, scaled
	// by how far above the mean they are.
	if len(employees) > 0 {
		var totalWeekend int
		for _, e := range employees {
			totalWeekend += e.WeekendShiftsWorked
		}
		avgWeekend := float64(totalWeekend) / float64(len(employees))
		for _, e := range employees {
			excess := float64(e.WeekendShiftsWorked) - avgWeekend
			if excess <= 0 {
				continue
			}
			for day := model.Saturday; day <= model.Sunday; day++ {
				v, ok := m.WorksDay[DayKey{Employee: e.ID, Day: day}]
				if !ok {
					continue
				}
				terms = append(terms, cpsolve.Term{Coef: -weights.Fairness * excess, Var: v})
			}
		}
	}

	backend.Maximize(terms)
}
