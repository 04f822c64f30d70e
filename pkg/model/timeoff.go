package model

// TimeOffRequest is an approved time-off window supplied by the
// caller's own approval workflow; the core never evaluates approval
// status itself (spec §1 Non-goals, §6).
type TimeOffRequest struct {
	EmployeeID EmployeeID
	Day        Day
	StartHour  int
	EndHour    int // exclusive
}

// AddTimeOff marks every hour in [startHour, endHour) on day as
// unavailable for the employee, independent of Availability (time-off
// always wins, see Employee.IsAvailable).
func (e *Employee) AddTimeOff(day Day, startHour, endHour int) {
	for h := startHour; h < endHour; h++ {
		e.TimeOff.Add(Slot{Day: day, Hour: h})
	}
}

// ApplyApprovedTimeOff layers a batch of already-approved time-off
// requests onto a scenario's roster. Requests for an employee id not
// present in the scenario are skipped rather than erroring, since the
// caller's time-off system and its roster can legitimately drift
// (spec §6: time-off is an inbound collaborator, not a validated
// input).
func ApplyApprovedTimeOff(scenario *BusinessScenario, requests []TimeOffRequest) {
	for _, r := range requests {
		e, ok := scenario.Employees[r.EmployeeID]
		if !ok {
			continue
		}
		e.AddTimeOff(r.Day, r.StartHour, r.EndHour)
	}
}
