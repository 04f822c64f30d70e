package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/scheduler/pkg/model"
)

func sampleSchedule() *model.Schedule {
	return &model.Schedule{
		Assignments: []model.ShiftAssignment{
			{EmployeeID: "alice", Day: model.Monday, StartHour: 9, EndHour: 13, RoleID: "cashier"},
		},
		SlotAssignments: map[model.Slot][]model.SlotEmployee{
			{Day: model.Monday, Hour: 9}: {{EmployeeID: "alice", RoleID: "cashier"}},
		},
		CoverageMatrix: map[model.CoverageKey]model.EmployeeID{
			{Day: model.Monday, Hour: 9, RoleID: "cashier"}: "alice",
		},
		TotalHoursNeeded: 4,
		TotalHoursFilled: 4,
		EmployeeHours:    map[model.EmployeeID]int{"alice": 4},
		EmployeeOvertime: map[model.EmployeeID]int{},
		ConsecutiveDays:  map[model.EmployeeID]int{"alice": 1},
		Metrics: model.ScheduleMetrics{
			TotalSlotsRequired: 4,
			TotalSlotsFilled:   4,
			UnfilledSlots: []model.UnfilledSlot{
				{Day: model.Tuesday, Hour: 9, RoleID: "cashier", Required: 1, Filled: 0, Needed: 1},
			},
			UnfilledByRole:      map[model.RoleID]int{"cashier": 1},
			UnfilledByDay:       map[model.Day]int{model.Tuesday: 1},
			WeekendDistribution: map[model.EmployeeID]int{},
			EstimatedLaborCost:  60,
		},
		IsFeasible:     true,
		SolveTimeMs:    42,
		SolutionIndex:  0,
		ObjectiveValue: 1000,
	}
}

func TestScheduleRecord_RoundTripInProcess(t *testing.T) {
	original := sampleSchedule()
	rec := original.ToRecord()

	back, err := model.FromScheduleRecord(rec)
	require.NoError(t, err)

	require.Equal(t, original.Assignments, back.Assignments)
	require.Equal(t, original.SlotAssignments, back.SlotAssignments)
	require.Equal(t, original.CoverageMatrix, back.CoverageMatrix)
	require.Equal(t, original.EmployeeHours, back.EmployeeHours)
	require.Equal(t, original.IsFeasible, back.IsFeasible)
	require.Equal(t, original.ObjectiveValue, back.ObjectiveValue)
	require.Equal(t, original.Metrics.UnfilledSlots, back.Metrics.UnfilledSlots)
	require.Equal(t, original.Metrics.UnfilledByRole, back.Metrics.UnfilledByRole)
}

// TestScheduleRecord_RoundTripThroughJSON exercises the path
// internal/repository/store.go actually uses: a record marshaled to
// JSON and decoded back into a bare map[string]interface{} loses Go's
// static typing, so nested arrays come back as []interface{} rather
// than []map[string]interface{}.
func TestScheduleRecord_RoundTripThroughJSON(t *testing.T) {
	original := sampleSchedule()
	rec := original.ToRecord()

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	back, err := model.FromScheduleRecord(decoded)
	require.NoError(t, err)

	require.Equal(t, original.Assignments, back.Assignments)
	require.Equal(t, original.SlotAssignments, back.SlotAssignments)
	require.Equal(t, original.CoverageMatrix, back.CoverageMatrix)
	require.Equal(t, original.IsFeasible, back.IsFeasible)
	require.Equal(t, original.ObjectiveValue, back.ObjectiveValue)
	require.Len(t, back.Metrics.UnfilledSlots, 1)
	require.Equal(t, original.Metrics.UnfilledSlots[0], back.Metrics.UnfilledSlots[0])
}

func TestFromScheduleRecord_MalformedSlotKeyIsInvalidInput(t *testing.T) {
	rec := map[string]interface{}{
		"slot_assignments": map[string]interface{}{
			"not-a-slot-key": []interface{}{},
		},
	}
	_, err := model.FromScheduleRecord(rec)
	require.Error(t, err)
}
