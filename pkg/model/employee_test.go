package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paiban/scheduler/pkg/model"
)

func TestEmployee_IsAvailable_TimeOffWinsOverAvailability(t *testing.T) {
	e := model.NewEmployee("alice", model.FullTime)
	slot := model.Slot{Day: model.Monday, Hour: 9}
	e.Availability.Add(slot)
	e.TimeOff.Add(slot)

	require.False(t, e.IsAvailable(slot))
}

func TestEmployee_IsAvailable_RequiresAvailabilityEntry(t *testing.T) {
	e := model.NewEmployee("alice", model.FullTime)
	require.False(t, e.IsAvailable(model.Slot{Day: model.Monday, Hour: 9}))

	e.Availability.Add(model.Slot{Day: model.Monday, Hour: 9})
	require.True(t, e.IsAvailable(model.Slot{Day: model.Monday, Hour: 9}))
}

func TestEmployee_Schedulable_RequiresAtLeastOneRole(t *testing.T) {
	e := model.NewEmployee("alice", model.FullTime)
	require.False(t, e.Schedulable())

	e.AddRole("cashier")
	require.True(t, e.Schedulable())
	require.True(t, e.HasRole("cashier"))
	require.False(t, e.HasRole("cook"))
}

func TestEmployee_EffectiveMaxHours(t *testing.T) {
	cases := []struct {
		name            string
		maxHours        int
		overtimeAllowed bool
		want            int
	}{
		{"max_hours_below_40_kept", 25, false, 25},
		{"full_time_no_overtime_capped_at_40", 50, false, 40},
		{"full_time_overtime_allowed_uncapped", 50, true, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := model.NewEmployee("alice", model.FullTime)
			e.MaxHours = tc.maxHours
			e.OvertimeAllowed = tc.overtimeAllowed
			require.Equal(t, tc.want, e.EffectiveMaxHours())
		})
	}
}

func TestClassification_PreferredMaxConsecutiveDays(t *testing.T) {
	require.Equal(t, 5, model.FullTime.PreferredMaxConsecutiveDays())
	require.Equal(t, 3, model.PartTime.PreferredMaxConsecutiveDays())
}

func TestQuantizeRanges_OnlyFullyCoveredHoursAreAvailable(t *testing.T) {
	ranges := []model.TimeRange{
		{Day: model.Monday, StartMinute: 9*60 + 15, EndMinuteExcl: 11 * 60},
	}
	slots := model.QuantizeRanges(ranges)

	// 09:15-10:00 does not cover hour 9 in full; 10:00-11:00 does.
	require.False(t, slots.Has(model.Slot{Day: model.Monday, Hour: 9}))
	require.True(t, slots.Has(model.Slot{Day: model.Monday, Hour: 10}))
}
